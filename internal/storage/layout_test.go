package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestFragment(t *testing.T) {
	a := Fragment("alice")
	if len(a) != 32 {
		t.Errorf("len(Fragment) = %d, want 32", len(a))
	}
	if a != Fragment("alice") {
		t.Error("Fragment() is not deterministic")
	}
	if a == Fragment("bob") {
		t.Error("distinct names produced the same fragment")
	}
}

func TestLayout_ProjectDirLifecycle(t *testing.T) {
	l := NewLayout(t.TempDir())
	user := Fragment("alice")
	proj := Fragment("genomes")

	if err := l.CreateProjectDir(user, proj); err == nil {
		t.Fatal("CreateProjectDir() without user root should fail")
	}

	created, err := l.EnsureUserDir(user)
	if err != nil || !created {
		t.Fatalf("EnsureUserDir() = %v, %v", created, err)
	}
	created, err = l.EnsureUserDir(user)
	if err != nil || created {
		t.Fatalf("second EnsureUserDir() = %v, %v, want false, nil", created, err)
	}

	if err := l.CreateProjectDir(user, proj); err != nil {
		t.Fatalf("CreateProjectDir() error = %v", err)
	}
	if err := l.CreateProjectDir(user, proj); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("second CreateProjectDir() error = %v, want fs.ErrExist", err)
	}

	ok, err := l.ProjectDirExists(user, proj)
	if err != nil || !ok {
		t.Fatalf("ProjectDirExists() = %v, %v", ok, err)
	}

	dirs, err := l.ProjectDirs(user)
	if err != nil || len(dirs) != 1 || dirs[0] != proj {
		t.Fatalf("ProjectDirs() = %v, %v", dirs, err)
	}

	if err := os.WriteFile(filepath.Join(l.ProjectDir(user, proj), "treeFile"), []byte("()"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := l.RemoveProjectDir(user, proj); err != nil {
		t.Fatalf("RemoveProjectDir() error = %v", err)
	}
	if err := l.RemoveProjectDir(user, proj); err != nil {
		t.Fatalf("RemoveProjectDir() on missing dir error = %v", err)
	}
	ok, _ = l.ProjectDirExists(user, proj)
	if ok {
		t.Error("project dir still exists after removal")
	}
}

func TestRelProjectDir(t *testing.T) {
	l := NewLayout("/data")
	rel := RelProjectDir("u", "p")
	if l.Abs(rel) != l.ProjectDir("u", "p") {
		t.Errorf("Abs(%q) = %q, want %q", rel, l.Abs(rel), l.ProjectDir("u", "p"))
	}
}
