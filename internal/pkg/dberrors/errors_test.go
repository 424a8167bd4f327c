package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "uq_students_user_year"}

	tests := []struct {
		name           string
		err            error
		wantNotFound   bool
		wantConstraint string
	}{
		{name: "nil", err: nil},
		{name: "no rows", err: pgx.ErrNoRows, wantNotFound: true},
		{name: "wrapped no rows", err: fmt.Errorf("query: %w", pgx.ErrNoRows), wantNotFound: true},
		{name: "unique violation", err: unique, wantConstraint: "uq_students_user_year"},
		{name: "fk violation", err: &pgconn.PgError{Code: "23503", ConstraintName: "fk_x"}, wantConstraint: "fk_x"},
		{name: "other", err: errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.err)
			assert.Equal(t, tt.wantNotFound, errors.Is(got, ErrNotFound))

			var ce *ConstraintError
			if tt.wantConstraint != "" {
				if assert.True(t, errors.As(got, &ce)) {
					assert.Equal(t, tt.wantConstraint, ce.Constraint)
				}
			} else {
				assert.False(t, errors.As(got, &ce))
			}
		})
	}
}

func TestIsDuplicateConstraintError(t *testing.T) {
	assert.True(t, IsDuplicateConstraintError(NewUniqueViolation("a"), "a"))
	assert.False(t, IsDuplicateConstraintError(NewUniqueViolation("a"), "b"))
	assert.True(t, IsDuplicateConstraintError(&pgconn.PgError{Code: "23505", ConstraintName: "a"}, "a"))
	assert.False(t, IsDuplicateConstraintError(&pgconn.PgError{Code: "23503", ConstraintName: "a"}, "a"))
	assert.True(t, IsDuplicateConstraintError(Translate(&pgconn.PgError{Code: "23505", ConstraintName: "a"}), "a"))
}
