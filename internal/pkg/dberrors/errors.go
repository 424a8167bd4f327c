package dberrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// ErrNotFound is returned by every store when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ConstraintError is a storage-neutral unique/foreign-key/check violation.
// Both the Postgres and the in-memory store produce it, so services can
// translate a named constraint into a domain conflict in one place.
type ConstraintError struct {
	Constraint string
	Kind       string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s violation on %s", e.Kind, e.Constraint)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// NewUniqueViolation builds the error the in-memory store returns for a duplicate key.
func NewUniqueViolation(constraint string) error {
	return &ConstraintError{Constraint: constraint, Kind: "unique"}
}

// IsDuplicateConstraintError checks if the error is a unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Kind == "unique" && ce.Constraint == constraintName
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraintName
}

// Translate maps driver errors onto ErrNotFound and *ConstraintError.
// Anything else is returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return &ConstraintError{Constraint: pgErr.ConstraintName, Kind: "unique", Err: err}
	case codeForeignKeyViolation:
		return &ConstraintError{Constraint: pgErr.ConstraintName, Kind: "foreign key", Err: err}
	case codeCheckViolation:
		return &ConstraintError{Constraint: pgErr.ConstraintName, Kind: "check", Err: err}
	}
	return err
}
