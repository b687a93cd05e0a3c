package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/vizgate/internal/access"
)

// handleOpenView checks a view link and stores it in the view cookie so
// later requests resolve to the view.
func (s *Server) handleOpenView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	token := r.URL.Query().Get("token")

	grant, err := s.access.ResolveView(r.Context(), name, token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	value := name
	if token != "" {
		value += "|" + token
	}
	s.setCookie(w, s.cfg.Cookies.View, value)
	writeOK(w, "", grant)
}

// handleContext returns what the renderer should show for this request.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	res, err := s.access.Resolve(r.Context(), access.Credentials{
		Session: s.sessionToken(r),
		View:    s.viewCredential(r),
	}, s.fallback)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, res.Notice, res)
}
