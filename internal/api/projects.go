package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/vizgate/internal/outcome"
)

type createProjectRequest struct {
	Name string `json:"name"`
}

type createViewRequest struct {
	Project string `json:"project"`
	Name    string `json:"name"`
	Public  bool   `json:"public"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context(), currentUser(r).Login)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, "", projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projects.Create(r.Context(), currentUser(r).Login, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeCreated(w, "project created", p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), currentUser(r).Login, chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, "", p)
}

func (s *Server) handleSetActiveProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.SetActive(r.Context(), currentUser(r).Login, chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, "active project set", nil)
}

// handleDeleteProject answers 200 with a warning when the rows are gone
// but the files could not be removed.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	d, err := s.projects.Delete(r.Context(), currentUser(r).Login, chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if d.StorageErr != nil {
		writeJSON(w, http.StatusOK, outcome.Warn(outcome.FromError(d.StorageErr).Message, d))
		return
	}
	writeOK(w, "project deleted", d)
}

func (s *Server) handleCheckProjects(w http.ResponseWriter, r *http.Request) {
	c, err := s.projects.Check(r.Context(), currentUser(r).Login)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !c.Consistent() {
		writeJSON(w, http.StatusOK, outcome.Warn("project storage is inconsistent", c))
		return
	}
	writeOK(w, "", c)
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	login := currentUser(r).Login
	name := chi.URLParam(r, "name")
	if _, err := s.projects.Get(r.Context(), login, name); err != nil {
		s.writeError(w, r, err)
		return
	}
	views, err := s.views.ListByProject(r.Context(), login, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, "", views)
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req createViewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.views.Create(r.Context(), currentUser(r).Login, req.Project, req.Name, req.Public)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeCreated(w, "view created", map[string]string{"name": req.Name, "token": token})
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.views.Delete(r.Context(), currentUser(r).Login, chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, "view deleted", nil)
}
