package project

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"

	"github.com/nerrad567/vizgate/internal/auth"
	"github.com/nerrad567/vizgate/internal/events"
	"github.com/nerrad567/vizgate/internal/infrastructure/database"
	"github.com/nerrad567/vizgate/internal/outcome"
	"github.com/nerrad567/vizgate/internal/storage"
)

// Logger is the logging interface used by the registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry manages project rows, project directories and the users'
// active project reference.
type Registry struct {
	db     *sql.DB
	layout storage.Layout
	events events.Emitter
	logger Logger
}

// NewRegistry creates a project registry. A nil emitter disables events.
func NewRegistry(db *sql.DB, layout storage.Layout, em events.Emitter) *Registry {
	if em == nil {
		em = events.Nop{}
	}
	return &Registry{db: db, layout: layout, events: em, logger: noopLogger{}}
}

// SetLogger sets the logger.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Layout returns the storage layout the registry writes to.
func (r *Registry) Layout() storage.Layout {
	return r.layout
}

// Create makes a project directory for owner and records it. An existing
// directory means the project exists.
func (r *Registry) Create(ctx context.Context, owner, name string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	p := &Project{Name: name, Path: storage.Fragment(name), Owner: owner}
	var userFragment string
	var dirCreated bool

	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		u, err := auth.LookupUser(ctx, tx, owner)
		if err != nil {
			return err
		}
		userFragment = u.Path

		ok, err := r.layout.UserDirExists(u.Path)
		if err != nil {
			return outcome.IO("checking storage root failed", err)
		}
		if !ok {
			return ErrStorageRootMissing
		}

		if err := r.layout.CreateProjectDir(u.Path, p.Path); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return ErrAlreadyExists
			}
			return outcome.IO("creating project directory failed", err)
		}
		dirCreated = true

		_, err = tx.ExecContext(ctx,
			"INSERT INTO projects (name, path, owner_login) VALUES (?, ?, ?)",
			p.Name, p.Path, p.Owner)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return ErrAlreadyExists
			}
			return outcome.IO("inserting project failed", err)
		}
		return nil
	})
	if err != nil {
		if dirCreated {
			if rerr := r.layout.RemoveProjectDir(userFragment, p.Path); rerr != nil {
				r.logger.Error("removing project directory after failed create",
					"owner", owner, "project", name, "error", rerr)
			}
		}
		return nil, outcome.Wrap("creating project failed", err)
	}

	r.events.Emit(ctx, events.New(events.ProjectCreated, owner, name, ""))
	r.logger.Info("project created", "owner", owner, "project", name)
	return p, nil
}

// Get returns the owner's project called name.
func (r *Registry) Get(ctx context.Context, owner, name string) (*Project, error) {
	return Lookup(ctx, r.db, owner, name)
}

// List returns the owner's projects ordered by name.
func (r *Registry) List(ctx context.Context, owner string) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, path, owner_login FROM projects WHERE owner_login = ? ORDER BY name", owner)
	if err != nil {
		return nil, outcome.IO("listing projects failed", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.Name, &p.Path, &p.Owner); err != nil {
			return nil, outcome.IO("listing projects failed", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, outcome.IO("listing projects failed", err)
	}
	return projects, nil
}

// SetActive points the owner's session scope at one of their projects.
func (r *Registry) SetActive(ctx context.Context, owner, name string) error {
	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		if _, err := Lookup(ctx, tx, owner, name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET active_project = ? WHERE login = ?", name, owner); err != nil {
			return outcome.IO("setting active project failed", err)
		}
		return nil
	})
	return outcome.Wrap("setting active project failed", err)
}

// Delete removes the project row, the views bound to it and the owner's
// active project reference if it pointed here, then the directory tree.
// A directory removal failure is reported in Deletion.StorageErr and does
// not fail the call.
func (r *Registry) Delete(ctx context.Context, owner, name string) (*Deletion, error) {
	d := &Deletion{}
	var userFragment string

	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		p, err := Lookup(ctx, tx, owner, name)
		if err != nil {
			return err
		}
		d.Project = *p

		u, err := auth.LookupUser(ctx, tx, owner)
		if err != nil {
			return err
		}
		userFragment = u.Path

		res, err := tx.ExecContext(ctx,
			"UPDATE users SET active_project = NULL WHERE login = ? AND active_project = ?", owner, name)
		if err != nil {
			return outcome.IO("clearing active project failed", err)
		}
		n, _ := res.RowsAffected() //nolint:errcheck // always succeeds on SQLite
		d.ClearedActive = n > 0

		res, err = tx.ExecContext(ctx,
			"DELETE FROM views WHERE owner_login = ? AND project_name = ?", owner, name)
		if err != nil {
			return outcome.IO("deleting views failed", err)
		}
		d.ViewsDeleted, _ = res.RowsAffected() //nolint:errcheck // always succeeds on SQLite

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM projects WHERE owner_login = ? AND name = ?", owner, name); err != nil {
			return outcome.IO("deleting project failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, outcome.Wrap("deleting project failed", err)
	}

	if rerr := r.layout.RemoveProjectDir(userFragment, d.Project.Path); rerr != nil {
		r.logger.Error("removing project directory failed", "owner", owner, "project", name, "error", rerr)
		d.StorageErr = &outcome.Error{
			Kind:    outcome.KindIO,
			Message: "project deleted but its files could not be removed",
			Warning: true,
			Err:     rerr,
		}
	}

	r.events.Emit(ctx, events.New(events.ProjectDeleted, owner, name, ""))
	r.logger.Info("project deleted", "owner", owner, "project", name, "views", d.ViewsDeleted)
	return d, nil
}

// Check compares the owner's project rows with the directories under the
// owner's storage root. It only reports; nothing is repaired.
func (r *Registry) Check(ctx context.Context, owner string) (*Consistency, error) {
	u, err := auth.LookupUser(ctx, r.db, owner)
	if err != nil {
		return nil, err
	}
	projects, err := r.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	dirs, err := r.layout.ProjectDirs(u.Path)
	if err != nil {
		return nil, outcome.IO("listing project directories failed", err)
	}

	onDisk := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		onDisk[d] = true
	}

	c := &Consistency{MissingDirs: []string{}, OrphanDirs: []string{}}
	known := make(map[string]bool, len(projects))
	for _, p := range projects {
		known[p.Path] = true
		if !onDisk[p.Path] {
			c.MissingDirs = append(c.MissingDirs, p.Name)
		}
	}
	for _, d := range dirs {
		if !known[d] {
			c.OrphanDirs = append(c.OrphanDirs, d)
		}
	}

	if !c.Consistent() {
		r.logger.Warn("project storage inconsistent", "owner", owner,
			"missing_dirs", len(c.MissingDirs), "orphan_dirs", len(c.OrphanDirs))
	}
	return c, nil
}

// Lookup reads one project through q, which may be a transaction owned by
// another registry. It returns ErrNotOwned when owner has no such project.
func Lookup(ctx context.Context, q database.DBTX, owner, name string) (*Project, error) {
	var p Project
	err := q.QueryRowContext(ctx,
		"SELECT name, path, owner_login FROM projects WHERE owner_login = ? AND name = ?",
		owner, name).Scan(&p.Name, &p.Path, &p.Owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotOwned
	}
	if err != nil {
		return nil, outcome.IO("reading project failed", err)
	}
	return &p, nil
}
