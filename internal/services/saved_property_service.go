package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
)

// ErrAlreadySaved is returned when the (user, property) bookmark already
// exists.
var ErrAlreadySaved = errors.New("property already saved")

// ISavedPropertyService defines the interface for bookmark operations.
type ISavedPropertyService interface {
	Save(ctx context.Context, userID, propertyID string) (*models.SavedProperty, error)
	Unsave(ctx context.Context, userID, propertyID string) error
	List(ctx context.Context, userID string) ([]models.SavedProperty, error)
}

type savedPropertyService struct {
	db *gorm.DB
}

// NewSavedPropertyService creates a new SavedPropertyService.
func NewSavedPropertyService(db *gorm.DB) ISavedPropertyService {
	return &savedPropertyService{db: db}
}

func (s *savedPropertyService) Save(ctx context.Context, userID, propertyID string) (*models.SavedProperty, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", propertyID).Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("error checking property %s: %w", propertyID, err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	saved := &models.SavedProperty{
		ID:         uuid.NewString(),
		UserID:     userID,
		PropertyID: propertyID,
	}
	if err := s.db.WithContext(ctx).Create(saved).Error; err != nil {
		// The compound unique index on (user_id, property_id) is the
		// authority on double saves.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySaved
		}
		return nil, fmt.Errorf("error saving property %s for user %s: %w", propertyID, userID, err)
	}
	return saved, nil
}

func (s *savedPropertyService) Unsave(ctx context.Context, userID, propertyID string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.SavedProperty{})
	if res.Error != nil {
		return fmt.Errorf("error unsaving property %s for user %s: %w", propertyID, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *savedPropertyService) List(ctx context.Context, userID string) ([]models.SavedProperty, error) {
	var saved []models.SavedProperty
	err := s.db.WithContext(ctx).
		Preload("Property").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error
	if err != nil {
		return nil, fmt.Errorf("error listing saved properties for user %s: %w", userID, err)
	}
	return saved, nil
}
