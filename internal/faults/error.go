// Package faults defines the DVM's closed error taxonomy.
//
// Every error the engine can raise is one of a fixed set of kinds. The kind
// strings are wire-visible (they appear verbatim in trace JSON) and the
// conformance surface depends on them never changing spelling.
package faults

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of error kinds the DVM can raise.
type Kind string

const (
	DirLoad             Kind = "DirLoad"
	DirValidate         Kind = "DirValidate"
	EntrypointNotFound  Kind = "EntrypointNotFound"
	UnsupportedRegime   Kind = "UnsupportedRegime"
	Inadmissible        Kind = "Inadmissible"
	ConstraintFailure   Kind = "ConstraintFailure"
	EffectViolation     Kind = "EffectViolation"
	TimeViolation       Kind = "TimeViolation"
	Runtime             Kind = "Runtime"
)

// Error is the DVM's error value: a closed-set kind plus the inner message
// text. The message carries no outer "kind: " prefix — callers that need
// one format it themselves (see Error() below for the human-readable form).
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewDirLoad(format string, args ...any) *Error {
	return newf(DirLoad, format, args...)
}

func NewDirValidate(format string, args ...any) *Error {
	return newf(DirValidate, format, args...)
}

func NewEntrypointNotFound(name string) *Error {
	return &Error{Kind: EntrypointNotFound, Message: name}
}

func NewUnsupportedRegime(format string, args ...any) *Error {
	return newf(UnsupportedRegime, format, args...)
}

func NewInadmissible(format string, args ...any) *Error {
	return newf(Inadmissible, format, args...)
}

func NewConstraintFailure(format string, args ...any) *Error {
	return newf(ConstraintFailure, format, args...)
}

func NewRuntime(format string, args ...any) *Error {
	return newf(Runtime, format, args...)
}

// As reports whether err is (or wraps) a *faults.Error and returns it.
func As(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}
