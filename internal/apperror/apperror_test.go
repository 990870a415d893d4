package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("User", 42),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("A record with this data already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("Comment", 7),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Conflict does NOT match ErrNotFound",
			err:       Conflict("duplicate"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	// The Message is what ends up in the API envelope, so its exact text is
	// part of the contract ("User not found", not "user not found with id 42").
	if got := NotFound("User", 42).Error(); got != "User not found" {
		t.Errorf("Error() = %q, want %q", got, "User not found")
	}
	if got := NotFound("Comment", 7).Error(); got != "Comment not found" {
		t.Errorf("Error() = %q, want %q", got, "Comment not found")
	}
	if got := ValidationFailed("email", "email is required").Error(); got != "email is required" {
		t.Errorf("Error() = %q, want %q", got, "email is required")
	}
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	// Services wrap repository errors with fmt.Errorf("...: %w", err);
	// the sentinel must stay reachable through the chain.
	wrapped := errors.Join(errors.New("outer"), NotFound("User", 1))
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("ErrNotFound not reachable through wrapped error")
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")
	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
