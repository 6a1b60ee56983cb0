package cache

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestOTPCacheOrderingAndEviction(t *testing.T) {
	c := NewOTPCache(3, zerolog.Nop())

	c.Add("acc", OTPEntry{MessageID: 1, Code: "11111"}, OTPEntry{MessageID: 2, Code: "22222"})
	c.Add("acc", OTPEntry{MessageID: 2, Code: "22222"}, OTPEntry{MessageID: 3, Code: "33333"}, OTPEntry{MessageID: 4, Code: "44444"})

	latest, ok := c.Latest("acc")
	if !ok || latest.Code != "44444" {
		t.Fatalf("Latest() = %+v, %v", latest, ok)
	}

	recent := c.Recent("acc", 10)
	if len(recent) != 3 {
		t.Fatalf("Recent() len = %d, want 3", len(recent))
	}
	want := []int{4, 3, 2}
	for i, e := range recent {
		if e.MessageID != want[i] {
			t.Errorf("Recent()[%d] = %d, want %d", i, e.MessageID, want[i])
		}
	}

	c.Forget("acc")
	if _, ok := c.Latest("acc"); ok {
		t.Error("Latest() after Forget should be empty")
	}
	if got := c.Recent("missing", 2); got != nil {
		t.Errorf("Recent() for unknown account = %v", got)
	}
}
