// Package errors provides coded errors for the content preparation pipeline.
//
// Callers check the kind of a failure with errors.Is against a sentinel:
//
//	if errors.Is(err, errors.ErrCountMismatch) {
//	    fmt.Fprintf(os.Stderr, "Error: %v\n", err)
//	}
//
// or switch on the Code after errors.As.
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeMissingInput  Code = "MISSING_INPUT"
	CodeCountMismatch Code = "COUNT_MISMATCH"
	CodeParse         Code = "PARSE"
	CodeFile          Code = "FILE"
	CodeNotFound      Code = "NOT_FOUND"
	CodeNameCollision Code = "NAME_COLLISION"
	CodeSlugCollision Code = "SLUG_COLLISION"
	CodeValidation    Code = "VALIDATION"
	CodeSynthesis     Code = "SYNTHESIS"
)

// Error is a domain error with a code and message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors for use with errors.Is().
var (
	ErrMissingInput  = &Error{Code: CodeMissingInput, Message: "missing input"}
	ErrCountMismatch = &Error{Code: CodeCountMismatch, Message: "word count does not match page count"}
	ErrParse         = &Error{Code: CodeParse, Message: "parse error"}
	ErrFile          = &Error{Code: CodeFile, Message: "file error"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrNameCollision = &Error{Code: CodeNameCollision, Message: "name already in use"}
	ErrSlugCollision = &Error{Code: CodeSlugCollision, Message: "words share a slug"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrSynthesis     = &Error{Code: CodeSynthesis, Message: "speech synthesis failed"}
)

// MissingInputf creates a missing input error with formatted message.
func MissingInputf(format string, args ...any) *Error {
	return &Error{Code: CodeMissingInput, Message: fmt.Sprintf(format, args...)}
}

// CountMismatch reports a word list whose length differs from the page count.
func CountMismatch(words, pages int) *Error {
	return &Error{
		Code:    CodeCountMismatch,
		Message: fmt.Sprintf("number of words (%d) does not match number of pages (%d)", words, pages),
	}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NameCollisionf creates a name collision error with formatted message.
func NameCollisionf(format string, args ...any) *Error {
	return &Error{Code: CodeNameCollision, Message: fmt.Sprintf(format, args...)}
}

// SlugCollisionf creates a slug collision error with formatted message.
func SlugCollisionf(format string, args ...any) *Error {
	return &Error{Code: CodeSlugCollision, Message: fmt.Sprintf(format, args...)}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
