package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := map[string]string{
		"go":      "%go%",
		"50%":     `%50\%%`,
		"snake_c": `%snake\_c%`,
		`a\b`:     `%a\\b%`,
	}

	for in, want := range tests {
		if got := containsPattern(in); got != want {
			t.Errorf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestViolationHelpers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	if !IsUniqueViolation(unique) || IsUniqueViolation(fk) {
		t.Fatalf("IsUniqueViolation misclassified")
	}
	if !IsForeignKeyViolation(fk) || IsForeignKeyViolation(unique) {
		t.Fatalf("IsForeignKeyViolation misclassified")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatalf("plain errors are not violations")
	}
}
