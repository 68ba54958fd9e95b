// Package apperr defines the typed error taxonomy shared by the content and
// submission services. Controllers translate a Kind into an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Kind string

const (
	NotFound          Kind = "NOT_FOUND"
	InvalidInput      Kind = "INVALID_INPUT"
	AlreadySubmitted  Kind = "ALREADY_SUBMITTED"
	IncompleteAnswers Kind = "INCOMPLETE_ANSWERS"
	Unauthorized      Kind = "UNAUTHORIZED"
	StorageFailure    Kind = "STORAGE_FAILURE"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match on Kind so errors.Is(err, ErrAlreadySubmitted) holds for
// every AlreadySubmitted error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: NotFound, Message: "not found"}
	ErrInvalidInput      = &Error{Kind: InvalidInput, Message: "invalid input"}
	ErrInvalidOption     = &Error{Kind: InvalidInput, Message: "option does not belong to question"}
	ErrAlreadySubmitted  = &Error{Kind: AlreadySubmitted, Message: "already submitted"}
	ErrIncompleteAnswers = &Error{Kind: IncompleteAnswers, Message: "not all questions answered"}
	ErrUnauthorized      = &Error{Kind: Unauthorized, Message: "unauthorized"}
	ErrStorage           = &Error{Kind: StorageFailure, Message: "storage failure"}
)

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Storage classifies err as a storage failure unless it already carries a Kind.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return Wrap(StorageFailure, err, "storage failure")
}

// KindOf returns the Kind of err. Untyped errors count as storage failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return StorageFailure
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
