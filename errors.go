package omega

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common engine error types.
var (
	// ErrNilEntity is returned when a nil entity is passed to a write operation.
	ErrNilEntity = errors.New("nil entity")

	// ErrMissingIdentifier is returned when an entity without a valid
	// identifier is passed to Update. This is a caller contract violation,
	// never retried.
	ErrMissingIdentifier = errors.New("an entity needs a valid identifier in order to be updated")

	// ErrNotImplemented is returned by operations the engine does not support.
	ErrNotImplemented = errors.New("not implemented")

	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrUniqueViolation is returned when a unique constraint is violated.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")

	// ErrNotNullViolation is returned when a NOT NULL constraint is violated.
	ErrNotNullViolation = errors.New("not null constraint violation")
)

// StatementError wraps a database failure together with the parameterized
// query text that produced it, surfaced once the retry budget is exhausted.
type StatementError struct {
	SQL string
	Err error
}

// Error implements the error interface.
func (e *StatementError) Error() string {
	return fmt.Sprintf("statement failed: %s: %v", e.SQL, e.Err)
}

// Unwrap returns the underlying database error.
func (e *StatementError) Unwrap() error {
	return e.Err
}

// ConvertDBError converts database-specific errors to engine errors.
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	// Check for PostgreSQL errors (pgx)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.Detail)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pgErr.Detail)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: column %s", ErrNotNullViolation, pgErr.ColumnName)
		}
	}

	return err
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUniqueViolation returns true if the error is ErrUniqueViolation.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}
