package remote

import (
	"fmt"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("join @x: %w", RateLimited(5*time.Second, nil))

	if got := KindOf(wrapped); got != KindRateLimited {
		t.Errorf("KindOf() = %v, want rate_limited", got)
	}
	if wait, ok := WaitOf(wrapped); !ok || wait != 5*time.Second {
		t.Errorf("WaitOf() = %v, %v", wait, ok)
	}
	if got := KindOf(fmt.Errorf("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want unknown", got)
	}
	if _, ok := WaitOf(NewError(KindInvalidTarget, "USERNAME_INVALID", nil)); ok {
		t.Error("WaitOf() must be false for non rate limited errors")
	}
}

func TestErrorString(t *testing.T) {
	if got := NewError(KindInvalidTarget, "USERNAME_INVALID", nil).Error(); got != "invalid_target: USERNAME_INVALID" {
		t.Errorf("Error() = %q", got)
	}
}
