package fuzzyphrase

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure the way callers need to branch on it,
// generalizing the teacher's bare `fmt.Errorf("...: %w", err)` wrapping
// (analyzer.go's loadInternal) into a closed, checkable taxonomy.
type ErrorKind int

const (
	// KindNotFound means an expected artifact or directory was absent
	// when opening an index.
	KindNotFound ErrorKind = iota
	// KindAlreadyExists means a build target path exists and is not a
	// directory.
	KindAlreadyExists
	// KindInvalidData means a metadata descriptor mismatched the
	// expected shape/version, the dictionary held invalid UTF-8, or a
	// configured script name was unrecognized.
	KindInvalidData
	// KindIO means an underlying read/write failure.
	KindIO
	// KindQueryShape means a phrase/variant structure violated the
	// composer's preconditions (e.g. a Prefix variant in a non-terminal
	// slot).
	KindQueryShape
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindInvalidData:
		return "invalid data"
	case KindIO:
		return "io"
	case KindQueryShape:
		return "query shape"
	default:
		return "unknown"
	}
}

// Error is the error type every exported operation returns. It carries a
// Kind so callers can branch on failure class (via the Is* predicates or
// errors.As) without parsing message text.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fuzzyphrase: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("fuzzyphrase: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds an *Error, optionally wrapping cause (may be nil).
func newError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func isKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsNotFound reports whether err is a KindNotFound *Error.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsAlreadyExists reports whether err is a KindAlreadyExists *Error.
func IsAlreadyExists(err error) bool { return isKind(err, KindAlreadyExists) }

// IsInvalidData reports whether err is a KindInvalidData *Error.
func IsInvalidData(err error) bool { return isKind(err, KindInvalidData) }

// IsIO reports whether err is a KindIO *Error.
func IsIO(err error) bool { return isKind(err, KindIO) }

// IsQueryShape reports whether err is a KindQueryShape *Error.
func IsQueryShape(err error) bool { return isKind(err, KindQueryShape) }
