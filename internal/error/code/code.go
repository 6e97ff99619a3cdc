package code

import (
	"errors"

	"gorm.io/gorm"
)

// API error codes. These are the machine-readable `error.code` values of the
// response envelope; the HTTP status is derived from them, never set ad hoc
// in controllers.
const (
	// ValidationError - 400: missing/invalid fields, invalid enumerated value.
	ValidationError = "VALIDATION_ERROR"
	// Unauthorized - 401: missing, malformed or expired bearer token.
	Unauthorized = "UNAUTHORIZED"
	// Forbidden - 403: authenticated but role/task insufficient.
	Forbidden = "FORBIDDEN"
	// NotFound - 404: target record does not exist.
	NotFound = "NOT_FOUND"
	// NotLinked - 200-level domain state: citizen account has no linked nhan khau.
	NotLinked = "NOT_LINKED"
	// DuplicateCCCD - 409: identity number already registered in the target scope.
	DuplicateCCCD = "DUPLICATE_CCCD"
	// DuplicateChuHo - 409: household already has a chu ho (head-of-household).
	DuplicateChuHo = "DUPLICATE_CHU_HO"
	// UsernameExists - 409: registration username already taken.
	UsernameExists = "USERNAME_EXISTS"
	// InvalidCredentials - 401: login failed.
	InvalidCredentials = "INVALID_CREDENTIALS"
	// RateLimited - 429: client exceeded the request rate.
	RateLimited = "RATE_LIMITED"
	// ConfigError - 500: server misconfiguration (e.g. missing JWT secret).
	ConfigError = "CONFIG_ERROR"
	// InternalError - 500: database or other infrastructure failure.
	InternalError = "INTERNAL_ERROR"
)

// Error is a domain error carrying an API error code. Services return *Error
// for every expected failure so controllers never match on error strings.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with the default message for the code.
func New(errCode string) *Error {
	return &Error{Code: errCode, Message: GetMessage(errCode)}
}

// NewWithMessage creates an Error with a custom user-facing message.
func NewWithMessage(errCode, message string) *Error {
	return &Error{Code: errCode, Message: message}
}

// From maps an arbitrary error to an *Error. Known domain errors pass
// through; gorm's not-found becomes NOT_FOUND; everything else is reported
// as INTERNAL_ERROR without leaking detail to the client.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(NotFound)
	}
	return New(InternalError)
}
