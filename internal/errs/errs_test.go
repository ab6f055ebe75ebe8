package errs

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
)

func TestMissing(t *testing.T) {
	if err := Missing(); err != nil {
		t.Fatalf("Missing() = %v, want nil", err)
	}

	err := Missing("name", "message")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Missing() returned %T, want *ValidationError", err)
	}
	if len(ve.Fields) != 2 || ve.Fields[0] != "name" || ve.Fields[1] != "message" {
		t.Errorf("Fields = %v, want [name message]", ve.Fields)
	}
	if got, want := err.Error(), "missing required fields: name, message"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPersistenceUnwrap(t *testing.T) {
	if Persistence("read", "users", nil) != nil {
		t.Fatal("Persistence with nil error should be nil")
	}

	err := Persistence("write", "contacts", os.ErrPermission)
	if !errors.Is(err, os.ErrPermission) {
		t.Error("PersistenceError should unwrap to the cause")
	}
	if got, want := err.Error(), "write contacts: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Invalid("type", "bad type"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create job: %w", Missing("title")), http.StatusBadRequest},
		{"not found", fmt.Errorf("job 42: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"conflict", fmt.Errorf("slug taken: %w", ErrConflict), http.StatusConflict},
		{"field conflict", fmt.Errorf("create user: %w", Conflict("email", "a@b.c")), http.StatusConflict},
		{"persistence", Persistence("read", "users", errors.New("disk gone")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestConflict(t *testing.T) {
	err := fmt.Errorf("create post: %w", Conflict("slug", "hello-world"))
	if !errors.Is(err, ErrConflict) {
		t.Fatal("ConflictError should match ErrConflict")
	}

	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("errors.As: %v is not a *ConflictError", err)
	}
	if ce.Field != "slug" {
		t.Errorf("Field = %q, want slug", ce.Field)
	}
	if got, want := ce.Error(), `slug "hello-world" already in use`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := Conflict("email", "").Error(), "email already in use"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
