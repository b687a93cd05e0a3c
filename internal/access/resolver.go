package access

import (
	"context"
	"errors"

	"github.com/nerrad567/vizgate/internal/auth"
	"github.com/nerrad567/vizgate/internal/outcome"
	"github.com/nerrad567/vizgate/internal/project"
	"github.com/nerrad567/vizgate/internal/storage"
	"github.com/nerrad567/vizgate/internal/view"
)

// Recorder receives every access decision. The InfluxDB client implements
// it.
type Recorder interface {
	RecordDecision(source, decision, reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordDecision(string, string, string) {}

// Logger is the logging interface used by the resolver.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Resolver composes the credential store and the project and view
// registries into access decisions.
type Resolver struct {
	users    *auth.Store
	projects *project.Registry
	views    *view.Registry
	layout   storage.Layout
	recorder Recorder
	logger   Logger
}

// NewResolver creates a resolver. Project directories are resolved
// against the registry's storage layout.
func NewResolver(users *auth.Store, projects *project.Registry, views *view.Registry) *Resolver {
	return &Resolver{
		users:    users,
		projects: projects,
		views:    views,
		layout:   projects.Layout(),
		recorder: nopRecorder{},
		logger:   noopLogger{},
	}
}

// SetRecorder sets where decisions are reported. Nil disables reporting.
func (r *Resolver) SetRecorder(rec Recorder) {
	if rec == nil {
		rec = nopRecorder{}
	}
	r.recorder = rec
}

// SetLogger sets the logger.
func (r *Resolver) SetLogger(logger Logger) {
	r.logger = logger
}

// ResolveSession maps a session token to owner access on the user's
// active project. A user without an active project, or whose active
// project no longer exists, gets DecisionNoActiveProject and no error.
func (r *Resolver) ResolveSession(ctx context.Context, token string) (*SessionGrant, error) {
	u, err := r.users.FindByToken(ctx, token)
	if errors.Is(err, auth.ErrUserNotFound) || (err == nil && !u.Accepted) {
		r.record(SourceSession, DecisionDenied, ErrUnauthenticated)
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	grant := &SessionGrant{Decision: DecisionNoActiveProject, User: u.Public()}
	if u.ActiveProject == "" {
		r.record(SourceSession, grant.Decision, nil)
		return grant, nil
	}

	p, err := r.projects.Get(ctx, u.Login, u.ActiveProject)
	if errors.Is(err, project.ErrNotOwned) {
		r.logger.Warn("active project has no row", "login", u.Login, "project", u.ActiveProject)
		r.record(SourceSession, grant.Decision, nil)
		return grant, nil
	}
	if err != nil {
		return nil, err
	}

	c := NewContext(r.layout.ProjectDir(u.Path, p.Path), p.Name, false)
	grant.Decision = DecisionGranted
	grant.Project = p
	grant.Context = &c
	r.record(SourceSession, grant.Decision, nil)
	return grant, nil
}

// ResolveView grants read-only access to a view. token is "" when none
// was presented.
func (r *Resolver) ResolveView(ctx context.Context, name, token string) (*ViewGrant, error) {
	res, err := r.views.Resolve(ctx, name, token)
	if err != nil {
		r.record(SourceView, DecisionDenied, err)
		return nil, err
	}
	r.record(SourceView, DecisionGranted, nil)
	return &ViewGrant{
		View:    *res,
		Context: NewContext(r.layout.Abs(res.Path), res.Project, true),
	}, nil
}

// Resolve picks the effective access for a request: the session if it
// grants, else the view credential if it grants, else fallback. Denials of
// presented credentials are not errors here; they are reported in
// Resolution.Notice. Storage failures are returned.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials, fallback Context) (*Resolution, error) {
	var notice string

	if creds.Session != "" {
		grant, err := r.ResolveSession(ctx, creds.Session)
		switch {
		case err == nil && grant.Decision == DecisionGranted:
			user := grant.User
			return &Resolution{Source: SourceSession, Context: *grant.Context, User: &user}, nil
		case err == nil:
			notice = "no active project"
		case outcome.KindOf(err) == outcome.KindAuth:
			notice = outcome.FromError(err).Message
		default:
			return nil, err
		}
	}

	if creds.View != "" {
		name, token := ParseViewCredential(creds.View)
		grant, err := r.ResolveView(ctx, name, token)
		switch {
		case err == nil:
			v := grant.View
			return &Resolution{Source: SourceView, Context: grant.Context, View: &v}, nil
		case outcome.KindOf(err) == outcome.KindIO || outcome.KindOf(err) == outcome.KindUnknown:
			return nil, err
		default:
			notice = outcome.FromError(err).Message
		}
	}

	r.record(SourceDefault, DecisionGranted, nil)
	return &Resolution{Source: SourceDefault, Context: fallback, Notice: notice}, nil
}

// Profile returns the user with the active project path and every owned
// project with its views.
func (r *Resolver) Profile(ctx context.Context, login string) (*Profile, error) {
	u, err := r.users.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	projects, err := r.projects.List(ctx, login)
	if err != nil {
		return nil, err
	}

	prof := &Profile{User: u.Public(), Projects: make([]ProjectViews, 0, len(projects))}
	for _, p := range projects {
		views, err := r.views.ListByProject(ctx, login, p.Name)
		if err != nil {
			return nil, err
		}
		prof.Projects = append(prof.Projects, ProjectViews{Project: p, Views: views})
		if p.Name == u.ActiveProject {
			prof.ActiveProjectPath = storage.RelProjectDir(u.Path, p.Path)
		}
	}
	return prof, nil
}

func (r *Resolver) record(source Source, decision Decision, err error) {
	reason := ""
	if err != nil {
		reason = outcome.KindOf(err).String()
	}
	r.recorder.RecordDecision(string(source), string(decision), reason)
	r.logger.Debug("access decision", "source", source, "decision", decision, "reason", reason)
}
