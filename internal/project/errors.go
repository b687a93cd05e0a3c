package project

import "github.com/nerrad567/vizgate/internal/outcome"

// Domain errors for project operations.
var (
	ErrEmptyName          = outcome.New(outcome.KindValidation, "project name must not be empty")
	ErrAlreadyExists      = outcome.New(outcome.KindConflict, "project already exists")
	ErrNotOwned           = outcome.New(outcome.KindNotFound, "no such project for this user")
	ErrStorageRootMissing = outcome.New(outcome.KindState, "user storage root is missing, confirm the account first")
)
