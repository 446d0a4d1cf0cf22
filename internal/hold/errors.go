package hold

import "errors"

// Validation errors returned by AttemptHold before any network call.
var (
	ErrMissingFields        = errors.New("missing required fields")
	ErrInvalidWorkspaceType = errors.New("invalid workspace type selected")
	ErrInvalidLocation      = errors.New("invalid location selected")
)
