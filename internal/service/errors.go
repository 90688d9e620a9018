package service

import "errors"

type Kind int

const (
	KindValidation Kind = iota + 1
	KindRateLimited
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// SubmissionError is a failure that may be shown to the caller as is.
type SubmissionError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Is matches on kind and message so wrapped copies of a sentinel still match.
func (e *SubmissionError) Is(target error) bool {
	t, ok := target.(*SubmissionError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

var (
	ErrRateLimited   = &SubmissionError{Kind: KindRateLimited, Message: "Too many requests. Please try again later."}
	ErrMissingFields = &SubmissionError{Kind: KindValidation, Message: "Missing required fields"}
	ErrInvalidTypes  = &SubmissionError{Kind: KindValidation, Message: "Invalid field types"}
	ErrInvalidEmail  = &SubmissionError{Kind: KindValidation, Message: "Invalid email address"}
	ErrNameLength    = &SubmissionError{Kind: KindValidation, Message: "Name must be between 2 and 100 characters"}
	ErrMessageLength = &SubmissionError{Kind: KindValidation, Message: "Message must be between 10 and 5000 characters"}
	ErrInternal      = &SubmissionError{Kind: KindInternal, Message: "An error occurred. Please try again."}
)

// internal wraps cause as a generic internal failure.
func internal(cause error) error {
	return &SubmissionError{Kind: KindInternal, Message: ErrInternal.Message, Err: cause}
}

// KindOf classifies err. Errors that are not a *SubmissionError are internal.
func KindOf(err error) Kind {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// PublicMessage is the text safe to return to the caller for err.
func PublicMessage(err error) string {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se.Message
	}
	return ErrInternal.Message
}
