package utils

import "testing"

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{name: "international number", phone: "+1234567890", expected: "+12****7890"},
		{name: "six characters", phone: "123456", expected: "****"},
		{name: "seven characters", phone: "+123456", expected: "+12****3456"},
		{name: "empty", phone: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskPhoneNumber(tt.phone); got != tt.expected {
				t.Errorf("MaskPhoneNumber(%q) = %q, want %q", tt.phone, got, tt.expected)
			}
		})
	}
}

func TestTruncateSecret(t *testing.T) {
	if got := TruncateSecret("abcdef", 3); got != "abc..." {
		t.Errorf("TruncateSecret() = %q", got)
	}
	if got := TruncateSecret("abc", 100); got != "abc" {
		t.Errorf("TruncateSecret() = %q", got)
	}
}
