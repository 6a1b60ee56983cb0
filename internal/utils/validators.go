package utils

import (
	"regexp"
	"strconv"
	"strings"

	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

const (
	minAPIID = 10000
	maxAPIID = 999999999

	minNameLength = 2
	maxNameLength = 50
)

var (
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	apiHashPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)
	otpPattern     = regexp.MustCompile(`^[0-9]{4,8}$`)
)

const forbiddenNameChars = `<>:"/\|?*`

// NormalizePhone validates a phone number and returns it in "+digits" form.
// Separators are rejected, not stripped.
func NormalizePhone(input string) (string, error) {
	phone := strings.TrimSpace(input)
	if !phonePattern.MatchString(phone) {
		return "", pkgerrors.NewValidationError("Invalid phone number. Use international format, e.g. +1234567890")
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return phone, nil
}

// ParseAPIID validates a numeric API ID in [10000, 999999999].
func ParseAPIID(input string) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, pkgerrors.NewValidationError("API ID must contain only digits")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, pkgerrors.NewValidationError("API ID must contain only digits")
		}
	}
	id, err := strconv.Atoi(s)
	if err != nil || id < minAPIID || id > maxAPIID {
		return 0, pkgerrors.NewValidationError("Invalid API ID range")
	}
	return id, nil
}

// NormalizeAPIHash validates a 32 character hex API hash and lowercases it.
func NormalizeAPIHash(input string) (string, error) {
	hash := strings.ToLower(strings.TrimSpace(input))
	if !apiHashPattern.MatchString(hash) {
		return "", pkgerrors.NewValidationError("API Hash must be 32 hexadecimal characters")
	}
	return hash, nil
}

// NormalizeOTP accepts 4 to 8 digits. Spaces between digits are dropped so a
// code typed as "1 2 3 4 5" is accepted.
func NormalizeOTP(input string) (string, error) {
	code := strings.Join(strings.Fields(input), "")
	if !otpPattern.MatchString(code) {
		return "", pkgerrors.NewValidationError("OTP must be 4-8 digits")
	}
	return code, nil
}

// ValidateAccountName checks length and forbidden filename characters.
func ValidateAccountName(input string) (string, error) {
	name := strings.TrimSpace(input)
	if n := len([]rune(name)); n < minNameLength || n > maxNameLength {
		return "", pkgerrors.NewValidationErrorf("Name must be %d-%d characters", minNameLength, maxNameLength)
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return "", pkgerrors.NewValidationError("Name contains invalid characters")
	}
	return name, nil
}
