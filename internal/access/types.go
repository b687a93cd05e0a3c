package access

import (
	"path/filepath"
	"strings"

	"github.com/nerrad567/vizgate/internal/auth"
	"github.com/nerrad567/vizgate/internal/outcome"
	"github.com/nerrad567/vizgate/internal/project"
	"github.com/nerrad567/vizgate/internal/storage"
	"github.com/nerrad567/vizgate/internal/view"
)

// File names inside a project directory, shared with the renderer.
const (
	TreeFile       = "treeFile"
	DataFile       = "dataFile"
	FastaFile      = "fastaFile"
	ProfileDB      = "profile.db"
	SamplesDB      = "samples.db"
	AdditionalFile = "additionalFile"
)

// ErrUnauthenticated is returned for unknown, cleared or unconfirmed
// session tokens.
var ErrUnauthenticated = outcome.New(outcome.KindAuth, "not logged in")

// Source says which credential produced a resolution.
type Source string

// Sources.
const (
	SourceSession Source = "session"
	SourceView    Source = "view"
	SourceDefault Source = "default"
)

// Decision is the result of a session lookup.
type Decision string

// Decisions.
const (
	DecisionGranted         Decision = "granted"
	DecisionNoActiveProject Decision = "no_active_project"
	DecisionDenied          Decision = "denied"
)

// Context is what the renderer is handed: the files of one project and
// whether the caller may change them.
type Context struct {
	Title    string `json:"title"`
	ReadOnly bool   `json:"read_only"`
	Dir      string `json:"dir,omitempty"`
	Tree     string `json:"tree,omitempty"`
	Data     string `json:"data,omitempty"`
	Fasta    string `json:"fasta,omitempty"`
	Profile  string `json:"profile_db,omitempty"`
	Samples  string `json:"samples_db,omitempty"`

	// AdditionalLayers is set only when the file exists.
	AdditionalLayers string `json:"additional_layers,omitempty"`
}

// NewContext builds the context for a project directory.
func NewContext(dir, title string, readOnly bool) Context {
	c := Context{
		Title:    title,
		ReadOnly: readOnly,
		Dir:      dir,
		Tree:     filepath.Join(dir, TreeFile),
		Data:     filepath.Join(dir, DataFile),
		Fasta:    filepath.Join(dir, FastaFile),
		Profile:  filepath.Join(dir, ProfileDB),
		Samples:  filepath.Join(dir, SamplesDB),
	}
	if add := filepath.Join(dir, AdditionalFile); storage.FileExists(add) {
		c.AdditionalLayers = add
	}
	return c
}

// SessionGrant is the outcome of a session lookup that found a user.
// Context and Project are nil unless Decision is DecisionGranted.
type SessionGrant struct {
	Decision Decision         `json:"decision"`
	User     auth.PublicUser  `json:"user"`
	Project  *project.Project `json:"project,omitempty"`
	Context  *Context         `json:"context,omitempty"`
}

// ViewGrant is read-only access to one view.
type ViewGrant struct {
	View    view.Resolved `json:"view"`
	Context Context       `json:"context"`
}

// Credentials are the raw values a request presented.
type Credentials struct {
	Session string
	// View is "name|token", or just "name" for a public view.
	View string
}

// ParseViewCredential splits a view credential at the first "|".
func ParseViewCredential(s string) (name, token string) {
	name, token, _ = strings.Cut(s, "|")
	return name, token
}

// Resolution is the combined decision for a request.
type Resolution struct {
	Source  Source           `json:"source"`
	Context Context          `json:"context"`
	User    *auth.PublicUser `json:"user,omitempty"`
	View    *view.Resolved   `json:"view,omitempty"`

	// Notice explains why a presented credential did not grant, when the
	// request fell through to a later source.
	Notice string `json:"notice,omitempty"`
}

// ProjectViews is a project with its views.
type ProjectViews struct {
	project.Project
	Views []view.View `json:"views"`
}

// Profile is everything a logged-in user sees about their account.
type Profile struct {
	User              auth.PublicUser `json:"user"`
	ActiveProjectPath string          `json:"active_project_path,omitempty"`
	Projects          []ProjectViews  `json:"projects"`
}
