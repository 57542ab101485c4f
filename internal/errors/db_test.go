package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	err := MapDBError(nil)
	if err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  ErrorCode
		wantField string
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "canceled", err: fmt.Errorf("query: %w", context.Canceled), wantCode: ErrCodeCanceled},
		{name: "pgx no rows", err: pgx.ErrNoRows, wantCode: ErrCodeNotFound},
		{name: "sql no rows", err: sql.ErrNoRows, wantCode: ErrCodeNotFound},
		{
			name:      "unique violation with column",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "id"},
			wantCode:  ErrCodeConflict,
			wantField: "id",
		},
		{
			name:      "unique violation with detail",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: `Key (id)=(abc) already exists.`},
			wantCode:  ErrCodeConflict,
			wantField: "id",
		},
		{
			name:      "check violation",
			err:       &pgconn.PgError{Code: pgerrcode.CheckViolation, ColumnName: "status"},
			wantCode:  ErrCodeValidation,
			wantField: "status",
		},
		{name: "not null", err: &pgconn.PgError{Code: pgerrcode.NotNullViolation}, wantCode: ErrCodeValidation},
		{name: "connection failure", err: &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, wantCode: ErrCodeUnavailable},
		{name: "admin shutdown", err: &pgconn.PgError{Code: pgerrcode.AdminShutdown}, wantCode: ErrCodeUnavailable},
		{name: "other pg error", err: &pgconn.PgError{Code: pgerrcode.SyntaxError}, wantCode: ErrCodeInternal},
		{name: "conn done", err: sql.ErrConnDone, wantCode: ErrCodeUnavailable},
		{name: "unknown", err: errors.New("boom"), wantCode: ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if got := CodeOf(err); got != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", got, tt.wantCode)
			}
			var appErr *AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("MapDBError() returned %T, want *AppError", err)
			}
			if got := appErr.Field; got != tt.wantField {
				t.Errorf("MapDBError() field = %q, want %q", got, tt.wantField)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("MapDBError() lost the original cause")
			}
		})
	}
}

func TestMapDBError_KeepsExistingAppError(t *testing.T) {
	in := New(ErrCodeNotFound, "job x not found")
	if got := MapDBError(in); got != error(in) {
		t.Errorf("MapDBError() = %v, want the same AppError", got)
	}
}
