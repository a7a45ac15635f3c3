// Package errors provides custom error types for the finanzas API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError into one of the failure categories the
// boundary layer needs to distinguish.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindBusinessRule Kind = "business_rule"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, kind, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Kind       Kind   `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Kind:       sentinel.Kind,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Kind:       sentinel.Kind,
		Internal:   sentinel.Internal,
	}
}

// KindOf reports the kind of err. Errors that are not AppErrors are internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindInternal
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized, Kind: KindUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized, Kind: KindUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden, Kind: KindForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest, Kind: KindValidation}
	ErrBusinessRule   = &AppError{Code: "BUSINESS_RULE", Message: "Operation violates a business rule", StatusCode: http.StatusUnprocessableEntity, Kind: KindBusinessRule}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound, Kind: KindNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError, Kind: KindInternal}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound, Kind: KindNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict, Kind: KindBusinessRule}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound, Kind: KindNotFound}
	ErrAccountInUse    = &AppError{Code: "ACCOUNT_IN_USE", Message: "Account has associated movements", StatusCode: http.StatusConflict, Kind: KindBusinessRule}
)

// Movement errors.
var (
	ErrMovementNotFound    = &AppError{Code: "MOVEMENT_NOT_FOUND", Message: "Movement not found", StatusCode: http.StatusNotFound, Kind: KindNotFound}
	ErrInvalidMovementKind = &AppError{Code: "INVALID_MOVEMENT_KIND", Message: "Movement kind must be INCOME or EXPENSE", StatusCode: http.StatusBadRequest, Kind: KindValidation}
)

// Reserve errors.
var (
	ErrReserveNotFound            = &AppError{Code: "RESERVE_NOT_FOUND", Message: "Reserve not found", StatusCode: http.StatusNotFound, Kind: KindNotFound}
	ErrReserveInUse               = &AppError{Code: "RESERVE_IN_USE", Message: "Reserve has associated movements", StatusCode: http.StatusConflict, Kind: KindBusinessRule}
	ErrReserveMovementNotFound    = &AppError{Code: "RESERVE_MOVEMENT_NOT_FOUND", Message: "Reserve movement not found", StatusCode: http.StatusNotFound, Kind: KindNotFound}
	ErrInvalidReserveKind         = &AppError{Code: "INVALID_RESERVE_KIND", Message: "Reserve kind must be SAVINGS, FIXED_EXPENSE, FIXED_EXPENSE_MONTHLY, INVESTMENT or ALL", StatusCode: http.StatusBadRequest, Kind: KindValidation}
	ErrInvalidReserveMovementKind = &AppError{Code: "INVALID_RESERVE_MOVEMENT_KIND", Message: "Reserve movement kind must be CONTRIBUTION or WITHDRAWAL", StatusCode: http.StatusBadRequest, Kind: KindValidation}
	ErrInsufficientReserve        = &AppError{Code: "INSUFFICIENT_RESERVE", Message: "Withdrawal exceeds available reserved balance", StatusCode: http.StatusUnprocessableEntity, Kind: KindBusinessRule}
)

// Budget errors.
var (
	ErrBudgetNotConfigured = &AppError{Code: "BUDGET_NOT_CONFIGURED", Message: "No budget configured, set a weekly income first", StatusCode: http.StatusUnprocessableEntity, Kind: KindBusinessRule}
	ErrNoWeeklyIncome      = &AppError{Code: "NO_WEEKLY_INCOME", Message: "Weekly income must be greater than zero", StatusCode: http.StatusUnprocessableEntity, Kind: KindBusinessRule}
	ErrCommitmentExceeded  = &AppError{Code: "COMMITMENT_EXCEEDED", Message: "Weekly reserve commitments exceed weekly income", StatusCode: http.StatusUnprocessableEntity, Kind: KindBusinessRule}
	ErrInvalidPercentages  = &AppError{Code: "INVALID_PERCENTAGES", Message: "Budget percentages must be non-negative and sum to 100", StatusCode: http.StatusBadRequest, Kind: KindValidation}
)

// Projection errors.
var (
	ErrProjectionNotFound = &AppError{Code: "PROJECTION_NOT_FOUND", Message: "Projection not found", StatusCode: http.StatusNotFound, Kind: KindNotFound}
)
