package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
)

// projectionService handles forward-looking adjustments.
type projectionService struct {
	db *gorm.DB
}

// NewProjectionService creates a new ProjectionServicer.
func NewProjectionService(db *gorm.DB) ProjectionServicer {
	return &projectionService{db: db}
}

// CreateProjection records an expected future amount. Negative amounts are
// expected outflows.
func (s *projectionService) CreateProjection(ctx context.Context, userID, concept string, amount decimal.Decimal) (*models.Projection, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "projection concept is required")
	}
	if err := checkCents("amount", amount); err != nil {
		return nil, err
	}

	projection := &models.Projection{
		UserID:  userID,
		Concept: concept,
		Amount:  amount,
	}
	if err := s.db.WithContext(ctx).Create(projection).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return projection, nil
}

// GetUserProjections returns a paginated list of the user's projections.
func (s *projectionService) GetUserProjections(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Projection], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.WithContext(ctx).Model(&models.Projection{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var projections []models.Projection
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&projections).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(projections, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetProjectionByID returns a projection if it belongs to the user.
func (s *projectionService) GetProjectionByID(ctx context.Context, userID, projectionID string) (*models.Projection, error) {
	var projection models.Projection
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", projectionID, userID).First(&projection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &projection, nil
}

// UpdateProjection replaces a projection's concept and amount.
func (s *projectionService) UpdateProjection(ctx context.Context, userID, projectionID, concept string, amount decimal.Decimal) (*models.Projection, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "projection concept is required")
	}
	if err := checkCents("amount", amount); err != nil {
		return nil, err
	}

	projection, err := s.GetProjectionByID(ctx, userID, projectionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"concept": concept,
		"amount":  amount,
	}
	if err := s.db.WithContext(ctx).Model(projection).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	projection.Concept = concept
	projection.Amount = amount
	return projection, nil
}

// DeleteProjection hard-deletes a projection.
func (s *projectionService) DeleteProjection(ctx context.Context, userID, projectionID string) error {
	projection, err := s.GetProjectionByID(ctx, userID, projectionID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(projection).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
