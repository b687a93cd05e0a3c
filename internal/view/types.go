package view

import "regexp"

// maxNameLength bounds view names.
const maxNameLength = 64

// namePattern restricts view names to characters that are safe in paths,
// cookies and URLs.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsValidName reports whether name can be used for a view.
func IsValidName(name string) bool {
	return len(name) <= maxNameLength && namePattern.MatchString(name)
}

// View is a stored view. Token is only shown to the owner.
type View struct {
	Name    string `json:"name"`
	Project string `json:"project"`
	Owner   string `json:"owner"`
	Public  bool   `json:"public"`
	Token   string `json:"token"`
}

// Resolved is a view that passed the access check, with the project
// directory relative to the storage root.
type Resolved struct {
	Name    string `json:"name"`
	Project string `json:"project"`
	Owner   string `json:"owner"`
	Public  bool   `json:"public"`
	Path    string `json:"path"`
}
