// Package apperr defines the error kinds the storefront services return and
// the HTTP status each kind maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds. Services wrap them with a human readable message via New
// or Newf; callers match with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyFavorite    = errors.New("already favorite")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// Error carries a kind and the message shown to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New returns an *Error of the given kind.
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with a format string.
func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var statusByKind = []struct {
	kind   error
	status int
}{
	{ErrValidation, http.StatusBadRequest},
	{ErrDuplicateEmail, http.StatusBadRequest},
	{ErrAlreadyFavorite, http.StatusBadRequest},
	{ErrInsufficientStock, http.StatusBadRequest},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrMissingToken, http.StatusUnauthorized},
	{ErrInvalidToken, http.StatusForbidden},
	{ErrNotFound, http.StatusNotFound},
	{ErrStoreUnavailable, http.StatusInternalServerError},
}

// HTTPStatus maps err to a response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	for _, s := range statusByKind {
		if errors.Is(err, s.kind) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// PublicMessage is the message safe to send to a client. Errors that are not
// an *Error, and store failures, collapse to a generic text.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && !errors.Is(err, ErrStoreUnavailable) {
		return e.Message
	}
	return "Internal server error"
}
