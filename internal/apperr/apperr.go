// Package apperr defines the typed error kinds the API reports to callers.
// Every failure leaving a service carries a stable machine-readable kind and a
// human-readable message; raw store error text never reaches callers.
package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the machine-readable error category.
type Kind string

const (
	// KindValidation marks missing or invalid input, rejected before any
	// transaction opens.
	KindValidation Kind = "validation"
	// KindNotFound marks a referenced record that is absent or soft-deleted.
	KindNotFound Kind = "not_found"
	// KindConflict marks a duplicate id or duplicate (throw, sequence) pair.
	// Conflicts are retryable by the caller.
	KindConflict Kind = "conflict"
	// KindTransaction marks a failure during a multi-row atomic operation.
	// The whole transaction was rolled back; no partial rows persist.
	KindTransaction Kind = "transaction"
	// KindUnauthorized marks a missing or unknown bearer token.
	KindUnauthorized Kind = "unauthorized"
	// KindForbidden marks a caller whose role does not permit the operation.
	KindForbidden Kind = "forbidden"
	// KindInternal marks everything else.
	KindInternal Kind = "internal"
)

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Message string
	// Err is the wrapped cause, for logs only; it is never serialized.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error with the given kind and message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with the given kind and message wrapping cause.
func Wrap(cause error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Validation returns a validation error; no side effects have occurred.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// NotFound returns a not_found error.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// Conflict returns a conflict error.
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err. Untyped errors collapse
// to a generic message so store internals do not leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// uniqueViolation is the Postgres SQLSTATE for unique-constraint violations.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Used to surface duplicate ids and duplicate (throw, sequence)
// pairs as retryable conflicts instead of generic store failures.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// FromStore classifies a store-level error arising inside a transaction:
// unique violations become conflicts, everything else a transaction failure.
// Typed errors pass through unchanged; nil stays nil.
func FromStore(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if IsUniqueViolation(err) {
		return Wrap(err, KindConflict, "%s: duplicate key", msg)
	}
	return Wrap(err, KindTransaction, "%s", msg)
}
