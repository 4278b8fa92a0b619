package services

import "errors"

// Sentinel errors for outcomes that carry no extra detail.
var (
	// ErrRateLimited is returned when a client submits again before the
	// configured interval has elapsed.
	ErrRateLimited = errors.New("please wait before sending another message")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized covers bad anti-forgery tokens and missing
	// capabilities. Callers surface it without detail.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError is a user-correctable input problem. Its message is safe
// to show verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidationError builds a ValidationError with the given user-facing reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// SpamRejection has the same outward shape as a validation failure but keeps
// the triggering heuristic internally. The user message stays vague so the
// filter is not trivially probed.
type SpamRejection struct {
	Heuristic string
}

func (e *SpamRejection) Error() string {
	return "your message contains inappropriate content, please modify it and try again"
}

// ExternalServiceError wraps a failure talking to a third-party service.
// It fails the operation; the user sees a generic message while the cause
// is logged server-side.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
