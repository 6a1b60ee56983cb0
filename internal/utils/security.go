package utils

// MaskPhoneNumber masks a phone number for logging.
// Keeps the first 3 and last 4 characters visible.
//
// Examples:
//   - "+1234567890" -> "+12****7890"
//   - "+123456" -> "+12****3456"
//   - "short" -> "****"
func MaskPhoneNumber(phone string) string {
	if len(phone) <= 6 {
		return "****"
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}

// TruncateSecret shortens a session token to limit characters for log channels.
func TruncateSecret(token string, limit int) string {
	if limit <= 0 || len(token) <= limit {
		return token
	}
	return token[:limit] + "..."
}
