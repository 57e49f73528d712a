// Package apperr defines the error taxonomy shared by the domain packages:
// validation failures raised before any store call, store failures
// propagated from the record store, and not-found conditions, which are a
// kind of store failure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

// ErrNotFound is wrapped by a StoreError when an id no longer resolves to a row.
var ErrNotFound = errors.New("record not found")

// ValidationError reports malformed or missing input to a core operation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation builds a ValidationError.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failure signalled by the record store.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a StoreError. pgx.ErrNoRows becomes ErrNotFound. A nil
// err stays nil and an existing StoreError is returned unchanged.
func Store(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrNotFound
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}

// NotFound returns a StoreError wrapping ErrNotFound.
func NotFound(op, collection string) error {
	return &StoreError{Op: op, Collection: collection, Err: ErrNotFound}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// PostgreSQL integrity violations surfaced as conflicts.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// conflictCode returns the SQLSTATE of a foreign key or unique violation
// wrapped by err, or "".
func conflictCode(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch pgErr.Code {
	case pgForeignKeyViolation, pgUniqueViolation:
		return pgErr.Code
	}
	return ""
}

// IsConflict reports whether err wraps a foreign key or unique violation,
// such as deleting a patient that appointments still reference.
func IsConflict(err error) bool {
	return conflictCode(err) != ""
}

// HTTPStatus maps an error from the domain packages to an HTTP status code.
func HTTPStatus(err error) int {
	var se *StoreError
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	case errors.As(err, &se):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts err into an echo.HTTPError. Store failure details are not
// echoed back to the client.
func ToHTTP(err error) *echo.HTTPError {
	status := HTTPStatus(err)
	switch status {
	case http.StatusUnprocessableEntity:
		return echo.NewHTTPError(status, err.Error()).SetInternal(err)
	case http.StatusNotFound:
		return echo.NewHTTPError(status, "not found").SetInternal(err)
	case http.StatusConflict:
		if conflictCode(err) == pgForeignKeyViolation {
			return echo.NewHTTPError(status, "referenced by other records").SetInternal(err)
		}
		return echo.NewHTTPError(status, "conflicts with an existing record").SetInternal(err)
	default:
		return echo.NewHTTPError(status, "store unavailable").SetInternal(err)
	}
}
