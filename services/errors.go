// services/errors.go - shared error values
package services

import "errors"

// Sentinel errors surfaced by services. Handlers map these onto HTTP
// status codes; anything else is treated as an internal error.
var (
	ErrInvalidScore  = errors.New("score must be between 0 and 300")
	ErrUnauthorized  = errors.New("caller lacks permission for this action")
	ErrUnknownTarget = errors.New("referenced team, member, or guest not found")
	ErrQuotaExceeded = errors.New("AI analysis quota exceeded")
	ErrDuplicate     = errors.New("already exists")
)

// InputError is a recoverable request problem. Its message is safe to
// return to the client verbatim.
type InputError string

func (e InputError) Error() string { return string(e) }

func badInput(msg string) error { return InputError(msg) }
