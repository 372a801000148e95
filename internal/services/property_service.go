package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
)

// PropertyInput carries the validated fields for creating or updating a
// listing.
type PropertyInput struct {
	Title         string
	Description   string
	Address       string
	City          string
	State         string
	Zip           string
	Price         int64
	Bedrooms      int
	Bathrooms     int
	Amenities     []string
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	Status        models.PropertyStatus
}

// SearchParams are the public search/filter options. Only ACTIVE listings
// are returned.
type SearchParams struct {
	City          *string
	MinPrice      *int64
	MaxPrice      *int64
	Bedrooms      *int
	Bathrooms     *int
	AvailableFrom *time.Time
	SortBy        string // "price_asc", "price_desc", "newest" (default)
	Limit         int
	Offset        int
}

// IPropertyService defines the interface for listing operations.
type IPropertyService interface {
	Create(ctx context.Context, landlordID string, input PropertyInput) (*models.Property, error)
	Update(ctx context.Context, propertyID, callerID string, input PropertyInput) (*models.Property, error)
	Delete(ctx context.Context, propertyID, callerID string) error
	FindByID(ctx context.Context, propertyID string, countView bool) (*models.Property, error)
	Search(ctx context.Context, params SearchParams) ([]models.Property, int64, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]models.Property, error)
	AppendImage(ctx context.Context, propertyID, callerID, imageURL string) (*models.Property, error)
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)
}

type propertyService struct {
	db *gorm.DB
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(db *gorm.DB) IPropertyService {
	return &propertyService{db: db}
}

func (s *propertyService) Create(ctx context.Context, landlordID string, input PropertyInput) (*models.Property, error) {
	status := input.Status
	if status == "" {
		status = models.PropertyStatusDraft
	}
	p := &models.Property{
		ID:            uuid.NewString(),
		LandlordID:    landlordID,
		Title:         input.Title,
		Description:   input.Description,
		Address:       input.Address,
		City:          input.City,
		State:         input.State,
		Zip:           input.Zip,
		Price:         input.Price,
		Bedrooms:      input.Bedrooms,
		Bathrooms:     input.Bathrooms,
		AvailableFrom: input.AvailableFrom,
		AvailableTo:   input.AvailableTo,
		Status:        status,
	}
	p.SetAmenityList(input.Amenities)
	p.SetImageList(nil)

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("error creating property: %w", err)
	}
	return p, nil
}

// findOwned loads a property and enforces the ownership check shared by
// every mutating operation.
func (s *propertyService) findOwned(ctx context.Context, propertyID, callerID string) (*models.Property, error) {
	var p models.Property
	err := s.db.WithContext(ctx).First(&p, "id = ?", propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding property %s: %w", propertyID, err)
	}
	if p.LandlordID != callerID {
		return nil, ErrForbidden
	}
	return &p, nil
}

func (s *propertyService) Update(ctx context.Context, propertyID, callerID string, input PropertyInput) (*models.Property, error) {
	p, err := s.findOwned(ctx, propertyID, callerID)
	if err != nil {
		return nil, err
	}

	p.Title = input.Title
	p.Description = input.Description
	p.Address = input.Address
	p.City = input.City
	p.State = input.State
	p.Zip = input.Zip
	p.Price = input.Price
	p.Bedrooms = input.Bedrooms
	p.Bathrooms = input.Bathrooms
	p.AvailableFrom = input.AvailableFrom
	p.AvailableTo = input.AvailableTo
	p.SetAmenityList(input.Amenities)
	if input.Status != "" {
		p.Status = input.Status
	}

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("error updating property %s: %w", propertyID, err)
	}
	return p, nil
}

func (s *propertyService) Delete(ctx context.Context, propertyID, callerID string) error {
	p, err := s.findOwned(ctx, propertyID, callerID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(p).Error; err != nil {
		return fmt.Errorf("error deleting property %s: %w", propertyID, err)
	}
	return nil
}

// FindByID loads a property with its landlord. When countView is true the
// views counter is incremented with an atomic SQL expression, so concurrent
// reads never lose a count.
func (s *propertyService) FindByID(ctx context.Context, propertyID string, countView bool) (*models.Property, error) {
	var p models.Property
	err := s.db.WithContext(ctx).Preload("Landlord").First(&p, "id = ?", propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding property %s: %w", propertyID, err)
	}

	if countView {
		err = s.db.WithContext(ctx).Model(&models.Property{}).
			Where("id = ?", propertyID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error
		if err != nil {
			return nil, fmt.Errorf("error counting view for property %s: %w", propertyID, err)
		}
		p.Views++
	}
	return &p, nil
}

func (s *propertyService) Search(ctx context.Context, params SearchParams) ([]models.Property, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("status = ?", models.PropertyStatusActive)

	if params.City != nil {
		q = q.Where("city = ?", *params.City)
	}
	if params.MinPrice != nil {
		q = q.Where("price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		q = q.Where("price <= ?", *params.MaxPrice)
	}
	if params.Bedrooms != nil {
		q = q.Where("bedrooms >= ?", *params.Bedrooms)
	}
	if params.Bathrooms != nil {
		q = q.Where("bathrooms >= ?", *params.Bathrooms)
	}
	if params.AvailableFrom != nil {
		q = q.Where("(available_from IS NULL OR available_from <= ?)", *params.AvailableFrom)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting properties: %w", err)
	}

	switch params.SortBy {
	case "price_asc":
		q = q.Order("price ASC")
	case "price_desc":
		q = q.Order("price DESC")
	default:
		q = q.Order("created_at DESC")
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var properties []models.Property
	err := q.Limit(limit).Offset(params.Offset).Find(&properties).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error searching properties: %w", err)
	}
	return properties, total, nil
}

func (s *propertyService) ListByLandlord(ctx context.Context, landlordID string) ([]models.Property, error) {
	var properties []models.Property
	err := s.db.WithContext(ctx).
		Where("landlord_id = ?", landlordID).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("error listing properties for landlord %s: %w", landlordID, err)
	}
	return properties, nil
}

func (s *propertyService) AppendImage(ctx context.Context, propertyID, callerID, imageURL string) (*models.Property, error) {
	p, err := s.findOwned(ctx, propertyID, callerID)
	if err != nil {
		return nil, err
	}
	p.SetImageList(append(p.ImageList(), imageURL))
	if err := s.db.WithContext(ctx).Model(p).UpdateColumn("images", p.Images).Error; err != nil {
		return nil, fmt.Errorf("error appending image to property %s: %w", propertyID, err)
	}
	return p, nil
}

// ExpireEnded flips ACTIVE listings whose availability window has passed to
// INACTIVE. Called by the maintenance scheduler.
func (s *propertyService) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("status = ? AND available_to IS NOT NULL AND available_to < ?", models.PropertyStatusActive, now).
		Update("status", models.PropertyStatusInactive)
	if res.Error != nil {
		return 0, fmt.Errorf("error expiring ended properties: %w", res.Error)
	}
	return res.RowsAffected, nil
}
