package errors

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

func TestMapperReply(t *testing.T) {
	m := NewMapper(zerolog.Nop())

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError("Invalid phone number"), "❌ Invalid phone number"},
		{"wrapped validation", fmt.Errorf("step: %w", NewValidationError("bad")), "❌ bad"},
		{"permission", NewPermissionError("Admin only command"), "⛔ Admin only command"},
		{"conflict", NewConflictError("already added"), "⚠️ already added"},
		{"plain", fmt.Errorf("boom"), GenericFailure},
		{"internal", WrapInternal(fmt.Errorf("mongo down"), "insert account"), GenericFailure},
		{"unauthorized", NewUnauthorizedErrorf("The session of %s is no longer valid", "acc"), "🔒 The session of acc is no longer valid"},
		{"unavailable", WrapServiceUnavailable(fmt.Errorf("server selection timeout"), "failed to get user"), "❌ Service is temporarily unavailable. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Reply(tt.err); got != tt.want {
				t.Errorf("Reply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClass(t *testing.T) {
	if got := Class(NewNotFoundError("x")); got != "not_found" {
		t.Errorf("Class() = %q, want not_found", got)
	}
	if got := Class(fmt.Errorf("x")); got != "internal" {
		t.Errorf("Class() = %q, want internal", got)
	}
}
