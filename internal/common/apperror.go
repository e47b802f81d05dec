package common

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by client-facing errors. The HTTP layer writes them as
// the envelope error code.
const (
	TextCodeValidation      = "VALIDATION_ERROR"
	TextCodeUnauthorized    = "UNAUTHORIZED"
	TextCodeForbidden       = "FORBIDDEN"
	TextCodeNotFound        = "NOT_FOUND"
	TextCodeConflict        = "CONFLICT"
	TextCodeTooManyRequests = "TOO_MANY_REQUESTS"
	TextCodeInternal        = "INTERNAL_SERVER_ERROR"
)

// NewValidationError reports bad client input, optionally per field.
func NewValidationError(msg string, details ...goerrors.FieldError) *goerrors.Error {
	return goerrors.NewValidation(msg, details...).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeValidation)
}

func NewUnauthorizedError(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(TextCodeUnauthorized)
}

func NewForbiddenError(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodeForbidden)
}

func NewNotFoundError(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeNotFound)
}

// NewConflictError reports a clash with existing data; err is kept as the
// logged cause and may be nil.
func NewConflictError(msg string, err error) *goerrors.Error {
	return WithCause(goerrors.New(msg, goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeConflict), err)
}

func NewTooManyRequestsError(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryRateLimit).
		WithCode(goerrors.CodeTooManyRequests).
		WithTextCode(TextCodeTooManyRequests)
}

// WithCause records err as the underlying cause of e. The cause is only
// logged, never shown to clients.
func WithCause(e *goerrors.Error, err error) *goerrors.Error {
	e.Source = err
	return e
}

// AsError returns the client-facing *goerrors.Error in err's chain.
// Internal-category errors are not client-facing.
func AsError(err error) (*goerrors.Error, bool) {
	var e *goerrors.Error
	if err == nil || !goerrors.As(err, &e) || e.Category == goerrors.CategoryInternal {
		return nil, false
	}
	return e, true
}

// CategoryOf reports the category of err. Anything that is not a
// client-facing error is internal.
func CategoryOf(err error) goerrors.Category {
	if e, ok := AsError(err); ok {
		return e.Category
	}
	return goerrors.CategoryInternal
}
