// Package apperr defines the domain errors shared between the service
// layer and the HTTP boundary. Each error is a value carrying the HTTP
// status it should be reported with; a single adapter in the router maps
// any error to the uniform {success:false, message} JSON envelope, so no
// raw error text from lower layers ever reaches a client.
package apperr

import "errors"

// Error is a terminal request error with an attached HTTP status.
type Error struct {
    Status  int
    Message string
    cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying cause, if any, for error chains.
func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with the given status and message.
func New(status int, message string) *Error {
    return &Error{Status: status, Message: message}
}

// Domain errors. Messages are part of the API contract: login failures
// deliberately share one message so callers cannot tell a missing account
// from a wrong password, and token verification failures collapse to one
// message so expiry cannot be distinguished from tampering.
var (
    ErrInvalidRequest     = New(400, "Invalid request")
    ErrDuplicateEmail     = New(400, "Email already exists")
    ErrInvalidCredentials = New(400, "Invalid email or password")
    ErrTokenInvalid       = New(400, "Activation token expired or invalid")
    ErrCodeMismatch       = New(400, "Invalid activation code")
    ErrAlreadyActive      = New(400, "Account is already activated")
    ErrMissingToken       = New(400, "Please login to access this resource")
    ErrRefreshInvalid     = New(400, "Invalid or expired refresh token")
    ErrSessionExpired     = New(400, "Please login to access this resource")
    ErrCorruptSession     = New(400, "Invalid session data")
    ErrUnauthorized       = New(401, "Please login to access this resource")
)

// Infrastructure wraps a store or broker failure as a 500. The cause is
// kept for server-side logs but never reaches the client envelope.
func Infrastructure(err error) *Error {
    return &Error{Status: 500, Message: "Internal server error", cause: err}
}

// From extracts an *Error from err, or nil when err is not a domain error.
func From(err error) *Error {
    var ae *Error
    if errors.As(err, &ae) {
        return ae
    }
    return nil
}
