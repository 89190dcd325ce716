package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Cause classifies a failure so adapters can map it without parsing messages.
type Cause string

const (
	CauseNotFound   Cause = "not-found"
	CauseConflict   Cause = "conflict"
	CauseValidation Cause = "validation"
	CauseUnknown    Cause = "unknown"
)

// Error is the error type returned by every service in this package.
type Error struct {
	Cause   Cause
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

func NotFoundf(format string, args ...any) error {
	return &Error{Cause: CauseNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Cause: CauseConflict, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return &Error{Cause: CauseValidation, Message: fmt.Sprintf(format, args...)}
}

// Unknown wraps an unexpected failure. A nil err returns nil.
func Unknown(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Cause: CauseUnknown, Message: fmt.Sprintf(format, args...), Err: err}
}

// CauseOf reports the cause carried by err. Errors that did not originate
// in this package are unknown.
func CauseOf(err error) Cause {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Cause
	}
	return CauseUnknown
}

// PostgreSQL SQLSTATE codes we classify.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// storageError converts a pgx error into a classified *Error. what names the
// entity involved, e.g. `soda 4`.
func storageError(err error, what string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFoundf("%s not found", what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &Error{Cause: CauseConflict, Message: what + " already exists", Err: err}
		case pgForeignKeyViolation:
			return &Error{Cause: CauseConflict, Message: what + " is still referenced", Err: err}
		case pgCheckViolation:
			return &Error{Cause: CauseValidation, Message: what + " violates a constraint", Err: err}
		}
	}
	return Unknown(err, "%s", what)
}
