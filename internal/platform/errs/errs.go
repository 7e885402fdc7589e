// Package errs defines the typed error taxonomy shared by the clinical
// workflow services: validation, permission, immutability, incomplete-data,
// conflict and not-found failures. Handlers map kinds to HTTP statuses with
// HTTPStatus; services construct errors with the kind helpers and callers
// test them with the Is* predicates.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: raw input violates type/range expectations for its
	// form kind. Rejected before any computation runs.
	KindValidation
	// KindPermission: acting role lacks authorization for the attempted
	// operation. Never retried automatically.
	KindPermission
	// KindImmutability: write attempted against a finalized exam record or
	// an existing certification.
	KindImmutability
	// KindIncompleteData: adjudication or sealing attempted before the
	// visit's exam records are complete.
	KindIncompleteData
	// KindConflict: optimistic-concurrency version mismatch. Recoverable by
	// re-fetch and retry.
	KindConflict
	// KindNotFound: the referenced entity does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindImmutability:
		return "immutability"
	case KindIncompleteData:
		return "incomplete_data"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a typed error carrying a Kind and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validationf builds a validation error.
func Validationf(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// Permissionf builds a permission error.
func Permissionf(format string, args ...interface{}) *Error {
	return newf(KindPermission, format, args...)
}

// Immutabilityf builds an immutability error.
func Immutabilityf(format string, args ...interface{}) *Error {
	return newf(KindImmutability, format, args...)
}

// IncompleteDataf builds an incomplete-data error.
func IncompleteDataf(format string, args ...interface{}) *Error {
	return newf(KindIncompleteData, format, args...)
}

// Conflictf builds a conflict error.
func Conflictf(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Wrap attaches a cause to an existing typed error kind.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool     { return KindOf(err) == KindValidation }
func IsPermission(err error) bool     { return KindOf(err) == KindPermission }
func IsImmutability(err error) bool   { return KindOf(err) == KindImmutability }
func IsIncompleteData(err error) bool { return KindOf(err) == KindIncompleteData }
func IsConflict(err error) bool       { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool       { return KindOf(err) == KindNotFound }

// HTTPStatus maps an error kind to an HTTP status code for handlers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindImmutability:
		return http.StatusConflict
	case KindIncompleteData:
		return http.StatusPreconditionFailed
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
