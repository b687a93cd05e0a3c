package project

// Project is a named dataset owned by one user.
type Project struct {
	Name string `json:"name"`
	// Path is the storage fragment derived from Name.
	Path  string `json:"path"`
	Owner string `json:"owner"`
}

// Deletion reports what Delete removed. StorageErr is set when the rows
// are gone but the directory tree could not be removed.
type Deletion struct {
	Project       Project `json:"project"`
	ViewsDeleted  int64   `json:"views_deleted"`
	ClearedActive bool    `json:"cleared_active"`
	StorageErr    error   `json:"-"`
}

// Consistency lists disagreements between project rows and directories.
type Consistency struct {
	// MissingDirs are project names whose directory is gone.
	MissingDirs []string `json:"missing_dirs"`
	// OrphanDirs are directory fragments with no project row.
	OrphanDirs []string `json:"orphan_dirs"`
}

// Consistent reports whether rows and directories agree.
func (c *Consistency) Consistent() bool {
	return len(c.MissingDirs) == 0 && len(c.OrphanDirs) == 0
}
