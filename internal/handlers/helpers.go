package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/middleware"
	"finanzas/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.RenderError(c, err)
}

// tagErrors maps custom validation tags to the error reported for them.
var tagErrors = map[string]*apperrors.AppError{
	"movement_kind":         apperrors.ErrInvalidMovementKind,
	"reserve_kind":          apperrors.ErrInvalidReserveKind,
	"reserve_filter":        apperrors.ErrInvalidReserveKind,
	"reserve_movement_kind": apperrors.ErrInvalidReserveMovementKind,
}

// bindingError turns a Gin binding failure into an AppError. Failed kind
// tags keep their dedicated codes; everything else is INVALID_INPUT.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if sentinel, ok := tagErrors[fe.Tag()]; ok {
			return sentinel
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, strings.Join(msgs, "; "))
}

func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return bindingError(err)
	}
	return nil
}

// parseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", *value)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+field+" format")
		}
	}
	return &parsed, nil
}
