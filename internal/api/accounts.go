package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/nerrad567/vizgate/internal/auth"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"` //nolint:gosec // G117: request field
}

type resetRequest struct {
	Login string `json:"login"`
}

type passwordRequest struct {
	Password string `json:"password"` //nolint:gosec // G117: request field
}

// handleRegister creates an account. The origin address is taken from the
// connection, not the body.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.NewUser
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Origin = clientIP(r)

	reg, err := s.lifecycle.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if reg.State == auth.StatePending {
		writeCreated(w, "request created, pending confirmation", reg)
		return
	}
	writeCreated(w, "account created", reg)
}

// handleConfirm accepts an account and logs it in.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	login := r.URL.Query().Get("login")
	if err := s.lifecycle.Confirm(r.Context(), login, r.URL.Query().Get("code")); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.lifecycle.OpenSession(r.Context(), login)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setCookie(w, s.cfg.Cookies.Session, sess.Token)
	writeOK(w, "account confirmed", sess)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.lifecycle.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setCookie(w, s.cfg.Cookies.Session, sess.Token)
	writeOK(w, "logged in", sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.lifecycle.Logout(r.Context(), currentUser(r).Login); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.clearCookie(w, s.cfg.Cookies.Session)
	writeOK(w, "logged out", nil)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.lifecycle.ResetPassword(r.Context(), req.Login); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, "if the account exists, a new password has been sent", nil)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.lifecycle.ChangePassword(r.Context(), currentUser(r).Login, req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, "password changed", nil)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	prof, err := s.access.Profile(r.Context(), currentUser(r).Login)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, "", prof)
}

// handleListUsers serves GET /users?sort=&dir=desc&offset=&limit=&filter.<column>=
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := auth.ListQuery{
		Sort:    q.Get("sort"),
		Desc:    strings.EqualFold(q.Get("dir"), "desc"),
		Filters: map[string]string{},
	}
	query.Offset, _ = strconv.Atoi(q.Get("offset")) //nolint:errcheck // zero on bad input
	query.Limit, _ = strconv.Atoi(q.Get("limit"))   //nolint:errcheck // default on bad input
	for key, values := range q {
		if col, ok := strings.CutPrefix(key, "filter."); ok && len(values) > 0 {
			query.Filters[col] = values[0]
		}
	}

	page, err := s.users.List(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, "", page)
}

// clientIP returns the remote address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
