// Package errors contains domain-specific errors for account management
package errors

import (
	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

// Domain errors for account operations
var (
	ErrAccountNotFound   = pkgerrors.NewNotFoundError("account not found")
	ErrUserNotFound      = pkgerrors.NewNotFoundError("user not found")
	ErrReportJobNotFound = pkgerrors.NewNotFoundError("report job not found")
	ErrDuplicatePhone    = pkgerrors.NewConflictError("This phone number is already registered")
	ErrUserAccountLimit  = pkgerrors.NewConflictError("You have reached your account limit")
	ErrTotalAccountLimit = pkgerrors.NewConflictError("The bot has reached its total account limit")
	ErrNoAccounts        = pkgerrors.NewNotFoundError("No active accounts available")
)
