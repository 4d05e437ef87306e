package errors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{"deadline exceeded", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(MapDBError(tt.err)); got != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", got, tt.wantCode)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	if err := MapDBError(pgx.ErrNoRows); !IsNotFound(err) {
		t.Errorf("MapDBError(pgx.ErrNoRows) should be NotFound, got %v", GetCode(err))
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name: "field from column metadata",
			pgErr: &pgconn.PgError{
				Code:       pgerrcode.UniqueViolation,
				ColumnName: "job_number",
			},
			wantField: "job_number",
		},
		{
			name: "field from detail message",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: "Key (email)=(sam@example.com) already exists.",
			},
			wantField: "email",
		},
		{
			name: "field from constraint name",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "jobs_job_number_key",
			},
			wantField: "job_number",
		},
		{
			name: "unknown constraint yields no field",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "something_weird",
			},
			wantField: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsConflict(err) {
				t.Fatalf("want Conflict, got %v", GetCode(err))
			}
			if got := GetField(err); got != tt.wantField {
				t.Errorf("GetField() = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name        string
		pgErr       *pgconn.PgError
		wantContain string
	}{
		{
			name: "delete referenced client",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (id)=(c1) is still referenced from table "jobs".`,
			},
			wantContain: "in use by Job",
		},
		{
			name: "insert with missing parent",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (job_id)=(j1) is not present in table "jobs".`,
			},
			wantContain: "referenced Job does not exist",
		},
		{
			name: "fallback to table metadata",
			pgErr: &pgconn.PgError{
				Code:      pgerrcode.ForeignKeyViolation,
				TableName: "time_entries",
			},
			wantContain: "Time Entry",
		},
		{
			name: "fallback to constraint name",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.ForeignKeyViolation,
				ConstraintName: "time_entries_job_id_fkey",
			},
			wantContain: "logged time",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsForeignKey(err) {
				t.Fatalf("want ForeignKey, got %v", GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantContain) {
				t.Errorf("message %q should contain %q", err.Error(), tt.wantContain)
			}
		})
	}
}

func TestMapDBError_ValidationViolations(t *testing.T) {
	checkErr := MapDBError(&pgconn.PgError{
		Code:       pgerrcode.CheckViolation,
		ColumnName: "duration_hours",
	})
	if !IsValidation(checkErr) {
		t.Fatalf("check violation should be Validation, got %v", GetCode(checkErr))
	}
	if got := GetField(checkErr); got != "duration_hours" {
		t.Errorf("GetField() = %q, want duration_hours", got)
	}

	nullErr := MapDBError(&pgconn.PgError{Code: pgerrcode.NotNullViolation})
	if !IsValidation(nullErr) {
		t.Fatalf("not null violation should be Validation, got %v", GetCode(nullErr))
	}
	if !strings.Contains(nullErr.Error(), "Required field") {
		t.Errorf("unexpected message %q", nullErr.Error())
	}
}

func TestMapDBError_UnknownPgErrorIsInternal(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
	if !IsInternal(err) {
		t.Errorf("want Internal, got %v", GetCode(err))
	}
}

func TestMapDBError_PassthroughUnrecognized(t *testing.T) {
	plain := errors.New("not a db error")
	if got := MapDBError(plain); got != plain {
		t.Errorf("MapDBError should pass through unrecognized errors, got %v", got)
	}
}
