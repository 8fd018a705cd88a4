package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// ErrNotFound covers absent notes/records and ownership mismatches.
	ErrNotFound = errors.New("not found")
	// ErrContentUnavailable means the file is missing or extraction produced no text.
	ErrContentUnavailable = errors.New("content unavailable")
	// ErrExternalService wraps failures of the model endpoints and the store.
	ErrExternalService = errors.New("external service failure")
	// ErrMalformedResponse means model output failed structural validation.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrUsage means missing or invalid command-line arguments.
	ErrUsage = errors.New("usage error")
	// ErrPanic marks a recovered panic; the process still exits non-zero.
	ErrPanic = errors.New("unexpected panic")

	// Quiz validation errors
	ErrMalformedJSON    = errors.New("quiz is not valid JSON")
	ErrWrongCount       = errors.New("quiz must contain exactly 10 questions")
	ErrMissingField     = errors.New("quiz question is missing a required field")
	ErrWrongOptionCount = errors.New("quiz question must have exactly 4 options")
	ErrInvalidAnswerKey = errors.New("quiz answer key must be one of A, B, C, D")
)

// ErrorKind is the caller-facing error taxonomy.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NotFound"
	KindContentUnavailable ErrorKind = "ContentUnavailable"
	KindExternalService    ErrorKind = "ExternalServiceFailure"
	KindMalformedResponse  ErrorKind = "MalformedResponse"
	KindUsage              ErrorKind = "UsageError"
	KindUnexpected         ErrorKind = "Unexpected"
)

// KindOf classifies err into the taxonomy. Nil yields an empty kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUsage):
		return KindUsage
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrContentUnavailable):
		return KindContentUnavailable
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrExternalService):
		return KindExternalService
	default:
		return KindUnexpected
	}
}

// QuizFailureKind names the rule a quiz violated.
type QuizFailureKind string

const (
	QuizMalformedJSON    QuizFailureKind = "MalformedJson"
	QuizWrongCount       QuizFailureKind = "WrongCount"
	QuizMissingField     QuizFailureKind = "MissingField"
	QuizWrongOptionCount QuizFailureKind = "WrongOptionCount"
	QuizInvalidAnswerKey QuizFailureKind = "InvalidAnswerKey"
)

var quizKindSentinels = map[QuizFailureKind]error{
	QuizMalformedJSON:    ErrMalformedJSON,
	QuizWrongCount:       ErrWrongCount,
	QuizMissingField:     ErrMissingField,
	QuizWrongOptionCount: ErrWrongOptionCount,
	QuizInvalidAnswerKey: ErrInvalidAnswerKey,
}

// QuizValidationError rejects a whole quiz. Index is the 1-based question
// number, or 0 when the failure concerns the quiz as a whole.
type QuizValidationError struct {
	Kind   QuizFailureKind
	Index  int
	Detail string
}

func (e *QuizValidationError) Error() string {
	msg := string(e.Kind)
	if e.Index > 0 {
		msg = fmt.Sprintf("%s: question %d", msg, e.Index)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches the per-kind sentinel, so errors.Is(err, ErrWrongCount) works.
func (e *QuizValidationError) Is(target error) bool {
	return quizKindSentinels[e.Kind] == target
}

func (e *QuizValidationError) Unwrap() error {
	return ErrMalformedResponse
}

// UserError carries a caller-safe message for an error whose default
// generic text would hide something the caller needs to act on.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WithUserMessage attaches msg to err. A nil err stays nil.
func WithUserMessage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &UserError{Message: msg, Err: err}
}
