// Package storage maps users and projects onto the on-disk layout shared
// with the rendering engine:
//
//	<root>/<userFragment>/<projectFragment>/
//
// A fragment is a fixed-length hex digest of the login or project name, so
// it never changes for a given name and is always safe as a path component.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// fragmentBytes is the digest prefix kept for a fragment (32 hex chars).
const fragmentBytes = 16

// dirPermissions is the mode for user and project directories.
const dirPermissions = 0o750

// Fragment returns the path fragment for a login or project name.
func Fragment(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:fragmentBytes])
}

// Layout resolves storage paths below Root.
type Layout struct {
	Root string
}

// NewLayout returns a layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// UserDir is the storage root of a user.
func (l Layout) UserDir(userFragment string) string {
	return filepath.Join(l.Root, userFragment)
}

// ProjectDir is the directory of one project.
func (l Layout) ProjectDir(userFragment, projectFragment string) string {
	return filepath.Join(l.Root, userFragment, projectFragment)
}

// RelProjectDir is the project directory relative to Root, the form views
// and the rendering engine exchange.
func RelProjectDir(userFragment, projectFragment string) string {
	return filepath.Join(userFragment, projectFragment)
}

// Abs resolves a path returned by RelProjectDir.
func (l Layout) Abs(rel string) string {
	return filepath.Join(l.Root, rel)
}

// EnsureUserDir creates a user's storage root. It is idempotent.
func (l Layout) EnsureUserDir(userFragment string) (created bool, err error) {
	dir := l.UserDir(userFragment)
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return false, fmt.Errorf("creating user directory: %w", err)
	}
	return true, nil
}

// UserDirExists reports whether the user's storage root exists.
func (l Layout) UserDirExists(userFragment string) (bool, error) {
	return isDir(l.UserDir(userFragment))
}

// CreateProjectDir creates a project directory with a single mkdir, so the
// filesystem decides which of two concurrent creators wins. It returns an
// error wrapping fs.ErrExist when the directory is already there.
func (l Layout) CreateProjectDir(userFragment, projectFragment string) error {
	if err := os.Mkdir(l.ProjectDir(userFragment, projectFragment), dirPermissions); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	return nil
}

// ProjectDirExists reports whether a project directory exists.
func (l Layout) ProjectDirExists(userFragment, projectFragment string) (bool, error) {
	return isDir(l.ProjectDir(userFragment, projectFragment))
}

// RemoveProjectDir deletes a project directory tree. A missing directory is
// not an error.
func (l Layout) RemoveProjectDir(userFragment, projectFragment string) error {
	if err := os.RemoveAll(l.ProjectDir(userFragment, projectFragment)); err != nil {
		return fmt.Errorf("removing project directory: %w", err)
	}
	return nil
}

// RemoveUserDir deletes an empty user storage root. Used to undo a
// confirmation whose commit failed.
func (l Layout) RemoveUserDir(userFragment string) error {
	if err := os.Remove(l.UserDir(userFragment)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing user directory: %w", err)
	}
	return nil
}

// ProjectDirs lists the project fragments present under a user's root.
func (l Layout) ProjectDirs(userFragment string) ([]string, error) {
	entries, err := os.ReadDir(l.UserDir(userFragment))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing project directories: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// FileExists reports whether a regular file exists at path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	return info.IsDir(), nil
}
