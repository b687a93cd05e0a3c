package view

import "github.com/nerrad567/vizgate/internal/outcome"

// Domain errors for view operations.
var (
	ErrInvalidName   = outcome.New(outcome.KindValidation, "view names may only contain letters, digits, dashes and underscores")
	ErrNameTaken     = outcome.New(outcome.KindConflict, "view name already taken")
	ErrNotFound      = outcome.New(outcome.KindNotFound, "view not found")
	ErrNotOwned      = outcome.New(outcome.KindNotFound, "no such view for this user")
	ErrProjectGone   = outcome.New(outcome.KindNotFound, "the project of this view no longer exists")
	ErrOwnerMissing  = outcome.New(outcome.KindState, "the owner of this view no longer exists")
	ErrInvalidToken  = outcome.New(outcome.KindAuth, "invalid token")
	ErrTokenRequired = outcome.New(outcome.KindAuth, "this view is private, a token is required")
)
