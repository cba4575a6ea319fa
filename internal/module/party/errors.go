package party

import "errors"

// Domain errors for the party module.
var (
	ErrPartyNotFound      = errors.New("party not found")
	ErrEmailAlreadyUsed   = errors.New("email already registered")
	ErrSlugAlreadyExists  = errors.New("slug already exists")
	ErrInvalidType        = errors.New("invalid party type")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPartySuspended     = errors.New("party is suspended")
	ErrAlreadySuspended   = errors.New("party is already suspended")
	ErrNotSuspended       = errors.New("party is not suspended")
)
