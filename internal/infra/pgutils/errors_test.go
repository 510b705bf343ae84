package pgutils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassifyPgErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantUnique    bool
		wantTransient bool
	}{
		{name: "nil", err: nil},
		{name: "plain", err: errors.New("boom")},
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, wantUnique: true},
		{name: "wrapped_unique", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), wantUnique: true},
		{name: "lock_timeout", err: fmt.Errorf("lock: %w", &pgconn.PgError{Code: "55P03"}), wantTransient: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, wantTransient: true},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, wantTransient: true},
		{name: "statement_timeout", err: &pgconn.PgError{Code: "57014"}, wantTransient: true},
		{name: "fk_violation", err: &pgconn.PgError{Code: "23503"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsUniqueViolation(tt.err); got != tt.wantUnique {
				t.Fatalf("IsUniqueViolation: want %v, got %v", tt.wantUnique, got)
			}

			if got := IsTransient(tt.err); got != tt.wantTransient {
				t.Fatalf("IsTransient: want %v, got %v", tt.wantTransient, got)
			}
		})
	}
}
