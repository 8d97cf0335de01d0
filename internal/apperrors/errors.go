// Package apperrors defines the error taxonomy shared by repositories, services and handlers
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessableEntity
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUnprocessableEntity:
		return "unprocessable entity"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error is a classified application error
type Error struct {
	Kind    Kind
	Message string
	// Details carries field-level messages of a failed validation
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind and message, so sentinels survive wrapping
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func BadRequest(message string) *Error   { return newError(KindBadRequest, message, nil) }
func Unauthorized(message string) *Error { return newError(KindUnauthorized, message, nil) }
func Forbidden(message string) *Error    { return newError(KindForbidden, message, nil) }
func NotFound(message string) *Error     { return newError(KindNotFound, message, nil) }
func Conflict(message string) *Error     { return newError(KindConflict, message, nil) }

// Timeout wraps the error that made an operation exceed its time bound
func Timeout(message string, err error) *Error { return newError(KindTimeout, message, err) }

// Internal wraps an unexpected error; its text is never shown to clients
func Internal(message string, err error) *Error { return newError(KindInternal, message, err) }

// UnprocessableEntity reports a validation failure with its field-level messages
func UnprocessableEntity(message string, details []string) *Error {
	return &Error{Kind: KindUnprocessableEntity, Message: message, Details: details}
}

// Wrap attaches a cause to a classified error, keeping its kind and message
func Wrap(appErr *Error, err error) *Error {
	return &Error{Kind: appErr.Kind, Message: appErr.Message, Details: appErr.Details, Err: err}
}

var (
	ErrEmailExists        = Conflict("Email already exist")
	ErrMissingCredentials = BadRequest("Missing Email or Password")
	ErrInvalidCredentials = Unauthorized("Invalid email or password")
	ErrInvalidPassword    = Unauthorized("Invalid password")
	ErrAuthRequired       = Unauthorized("authentication required")
	ErrInvalidToken       = Unauthorized("invalid or expired token")
	ErrInsufficientRole   = Forbidden("insufficient permissions")
	ErrUserNotFound       = NotFound("user not found")
	ErrRoleNotFound       = NotFound("role not found")
	ErrProductNotFound    = NotFound("product not found")
	ErrOrderNotFound      = NotFound("order not found")
	ErrInvalidProduct     = UnprocessableEntity("This is errors in data", nil)
	ErrTxTimeout          = Timeout("transaction timed out", nil)
)

// As returns the classified error in err's chain, if any
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf classifies any error; unclassified errors are internal
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to its HTTP status code
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
