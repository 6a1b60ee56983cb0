package errors

import (
	"errors"

	"github.com/rs/zerolog"
)

// GenericFailure is the reply used for anything that is not a typed user error.
const GenericFailure = "❌ Something went wrong. Please try again later."

// Mapper turns domain errors into chat replies.
type Mapper struct {
	logger zerolog.Logger
}

func NewMapper(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// Reply maps err to the text sent back to the user. Unexpected errors are
// logged and replaced with GenericFailure.
func (m *Mapper) Reply(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return "❌ " + validationErr.Error()
	}

	var permissionErr *PermissionError
	if errors.As(err, &permissionErr) {
		return "⛔ " + permissionErr.Error()
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return "❌ " + notFoundErr.Error()
	}

	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return "⚠️ " + conflictErr.Error()
	}

	var unauthorizedErr *UnauthorizedError
	if errors.As(err, &unauthorizedErr) {
		return "🔒 " + unauthorizedErr.Error()
	}

	var unavailableErr *ServiceUnavailableError
	if errors.As(err, &unavailableErr) {
		m.logger.Error().Err(err).Msg("dependency unavailable")
		return "❌ Service is temporarily unavailable. Please try again later."
	}

	m.logger.Error().Err(err).Msg("unexpected error")
	return GenericFailure
}

// Class returns a short label for metrics.
func Class(err error) string {
	var (
		validationErr   *ValidationError
		permissionErr   *PermissionError
		notFoundErr     *NotFoundError
		conflictErr     *ConflictError
		unauthorizedErr *UnauthorizedError
		unavailableErr  *ServiceUnavailableError
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &permissionErr):
		return "permission"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case errors.As(err, &conflictErr):
		return "conflict"
	case errors.As(err, &unauthorizedErr):
		return "unauthorized"
	case errors.As(err, &unavailableErr):
		return "unavailable"
	default:
		return "internal"
	}
}
