package view

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nerrad567/vizgate/internal/auth"
	"github.com/nerrad567/vizgate/internal/events"
	"github.com/nerrad567/vizgate/internal/infrastructure/database"
	"github.com/nerrad567/vizgate/internal/outcome"
	"github.com/nerrad567/vizgate/internal/project"
	"github.com/nerrad567/vizgate/internal/storage"
)

// Logger is the logging interface used by the registry.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Registry manages view rows.
type Registry struct {
	db     *sql.DB
	events events.Emitter
	logger Logger
}

// NewRegistry creates a view registry. A nil emitter disables events.
func NewRegistry(db *sql.DB, em events.Emitter) *Registry {
	if em == nil {
		em = events.Nop{}
	}
	return &Registry{db: db, events: em, logger: noopLogger{}}
}

// SetLogger sets the logger.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Create adds a view on one of owner's projects and returns its token.
// The token cannot be derived later from the name, so the owner must keep
// it to share the view.
func (r *Registry) Create(ctx context.Context, owner, projectName, name string, public bool) (string, error) {
	if !IsValidName(name) {
		return "", ErrInvalidName
	}
	token, err := auth.GenerateToken(auth.TokenLength)
	if err != nil {
		return "", outcome.IO("generating view token failed", err)
	}

	err = database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM views WHERE name = ?", name).Scan(&one)
		if err == nil {
			return ErrNameTaken
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return outcome.IO("reading views failed", err)
		}

		if _, err := project.Lookup(ctx, tx, owner, projectName); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO views (name, project_name, owner_login, public, token) VALUES (?, ?, ?, ?, ?)",
			name, projectName, owner, boolToInt(public), token)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return ErrNameTaken
			}
			return outcome.IO("inserting view failed", err)
		}
		return nil
	})
	if err != nil {
		return "", outcome.Wrap("creating view failed", err)
	}

	r.events.Emit(ctx, events.New(events.ViewCreated, owner, projectName, name))
	r.logger.Info("view created", "owner", owner, "project", projectName, "view", name, "public", public)
	return token, nil
}

// Get returns the stored view.
func (r *Registry) Get(ctx context.Context, name string) (*View, error) {
	var v View
	var public int
	err := r.db.QueryRowContext(ctx,
		"SELECT name, project_name, owner_login, public, token FROM views WHERE name = ?", name,
	).Scan(&v.Name, &v.Project, &v.Owner, &public, &v.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, outcome.IO("reading view failed", err)
	}
	v.Public = public != 0
	return &v, nil
}

// Resolve looks a view up and applies the access order to token ("" for
// none). A view whose project is gone is deleted and ErrProjectGone
// returned. If that delete fails the row stays and a warning-flagged IO
// error is returned instead; the next lookup tries again.
func (r *Registry) Resolve(ctx context.Context, name, token string) (*Resolved, error) {
	v, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	p, err := project.Lookup(ctx, r.db, v.Owner, v.Project)
	if errors.Is(err, project.ErrNotOwned) {
		if err := r.purge(ctx, v); err != nil {
			return nil, err
		}
		return nil, ErrProjectGone
	}
	if err != nil {
		return nil, err
	}

	u, err := auth.LookupUser(ctx, r.db, v.Owner)
	if errors.Is(err, auth.ErrUserNotFound) {
		return nil, ErrOwnerMissing
	}
	if err != nil {
		return nil, err
	}

	if err := Authorize(v, token); err != nil {
		return nil, err
	}

	return &Resolved{
		Name:    v.Name,
		Project: v.Project,
		Owner:   v.Owner,
		Public:  v.Public,
		Path:    storage.RelProjectDir(u.Path, p.Path),
	}, nil
}

// purge deletes an orphaned view. The delete re-checks the project so a
// project recreated in between keeps its view.
func (r *Registry) purge(ctx context.Context, v *View) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM views WHERE name = ? AND NOT EXISTS (
			SELECT 1 FROM projects WHERE owner_login = ? AND name = ?)`,
		v.Name, v.Owner, v.Project)
	if err != nil {
		r.logger.Warn("purging orphaned view failed", "view", v.Name, "error", err)
		return &outcome.Error{
			Kind:    outcome.KindIO,
			Message: "the project of this view no longer exists and removing the view failed",
			Warning: true,
			Err:     err,
		}
	}
	if n, _ := res.RowsAffected(); n > 0 { //nolint:errcheck // always succeeds on SQLite
		r.events.Emit(ctx, events.New(events.ViewPurged, v.Owner, v.Project, v.Name))
		r.logger.Info("purged view of deleted project", "view", v.Name, "project", v.Project)
	}
	return nil
}

// Delete removes one of owner's views.
func (r *Registry) Delete(ctx context.Context, owner, name string) error {
	var projectName string
	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		var viewOwner string
		err := tx.QueryRowContext(ctx,
			"SELECT owner_login, project_name FROM views WHERE name = ?", name,
		).Scan(&viewOwner, &projectName)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return outcome.IO("reading view failed", err)
		}
		if viewOwner != owner {
			return ErrNotOwned
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM views WHERE name = ?", name); err != nil {
			return outcome.IO("deleting view failed", err)
		}
		return nil
	})
	if err != nil {
		return outcome.Wrap("deleting view failed", err)
	}

	r.events.Emit(ctx, events.New(events.ViewDeleted, owner, projectName, name))
	r.logger.Info("view deleted", "owner", owner, "view", name)
	return nil
}

// ListByProject returns the views of one of owner's projects, tokens
// included.
func (r *Registry) ListByProject(ctx context.Context, owner, projectName string) ([]View, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, project_name, owner_login, public, token FROM views
		 WHERE owner_login = ? AND project_name = ? ORDER BY name`,
		owner, projectName)
	if err != nil {
		return nil, outcome.IO("listing views failed", err)
	}
	defer rows.Close()

	views := []View{}
	for rows.Next() {
		var v View
		var public int
		if err := rows.Scan(&v.Name, &v.Project, &v.Owner, &public, &v.Token); err != nil {
			return nil, outcome.IO("listing views failed", err)
		}
		v.Public = public != 0
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, outcome.IO("listing views failed", err)
	}
	return views, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
