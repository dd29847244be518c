package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestStatusAndCode(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid",
			err:        Invalid("missing_fields", "title required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "missing_fields",
		},
		{
			name:       "not_found",
			err:        NotFound("problem_not_found", "no such problem"),
			wantStatus: http.StatusNotFound,
			wantCode:   "problem_not_found",
		},
		{
			name:       "conflict",
			err:        Conflict("slug_conflict", errors.New("duplicate key")),
			wantStatus: http.StatusConflict,
			wantCode:   "slug_conflict",
		},
		{
			name:       "wrapped",
			err:        fmt.Errorf("outer: %w", NotFound("sheet_not_found", "gone")),
			wantStatus: http.StatusNotFound,
			wantCode:   "sheet_not_found",
		},
		{
			name:       "plain_error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusOf(tc.err); got != tc.wantStatus {
				t.Fatalf("StatusOf=%d, want %d", got, tc.wantStatus)
			}
			if got := CodeOf(tc.err); got != tc.wantCode {
				t.Fatalf("CodeOf=%q, want %q", got, tc.wantCode)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Fatal("gorm.ErrDuplicatedKey should be a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)) {
		t.Fatal("wrapped duplicated key should be a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatal("plain error is not a unique violation")
	}
	if IsUniqueViolation(nil) {
		t.Fatal("nil is not a unique violation")
	}
}

func TestFromStore(t *testing.T) {
	ae := FromStore("create_problem", gorm.ErrDuplicatedKey)
	if ae.Status != http.StatusConflict {
		t.Fatalf("duplicate key should map to 409, got %d", ae.Status)
	}
	if ae.Code != "create_problem_conflict" {
		t.Fatalf("unexpected code %q", ae.Code)
	}

	ae = FromStore("create_problem", errors.New("connection reset"))
	if ae.Status != http.StatusInternalServerError {
		t.Fatalf("other storage errors map to 500, got %d", ae.Status)
	}
}
