package core

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport boundary can map it to a
// response without inspecting error strings.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation marks client faults: missing fields, out-of-domain
	// enum values, non-positive amounts.
	KindValidation
	// KindNotFound covers both absent rows and rows owned by another user;
	// the two are reported identically.
	KindNotFound
	// KindConflict marks duplicate names and delete-while-referenced.
	KindConflict
	// KindUpstream marks store or renderer failures. Detail is logged
	// server-side and never surfaced to the caller.
	KindUpstream
)

// Error is the typed outcome signalled by the engine and services.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a collaborator failure, keeping the cause for logs.
func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Message: op, Err: err}
}

// KindOf extracts the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the client-safe message for err. Upstream and unknown
// failures collapse to a generic message.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation, KindNotFound, KindConflict:
			return e.Message
		}
	}
	return "Server error"
}
