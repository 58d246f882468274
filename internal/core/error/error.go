package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "Internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// MissingQueryMessage is returned when a chat request carries no query text.
	MissingQueryMessage = "query is required"
)

// Sentinel errors for the failure classes the agent pipeline reacts to.
// Callers test with errors.Is and apply their own fallback policy.
var (
	// ErrModelInvocation marks a generative backend that was unreachable or
	// returned a transport-level failure.
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrMalformedOutput marks model output from which no JSON object could
	// be recovered.
	ErrMalformedOutput = errors.New("malformed model output")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// BadRequest creates a client-input AppError that maps to a 400 response.
func BadRequest(message string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// WrapModel marks err as a model invocation failure so callers can trigger
// their single-shot fallback via errors.Is(err, ErrModelInvocation).
func WrapModel(modelID string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: model %s: %v", ErrModelInvocation, modelID, err)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
