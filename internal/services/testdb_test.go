package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
)

// newTestDB opens a uniquely named in-memory sqlite database and migrates
// the full schema. cache=shared keeps the database alive across the pooled
// connections GORM opens.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Inquiry{},
		&models.Message{},
		&models.SavedProperty{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, accountType models.AccountType) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		AccountType:  accountType,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProperty(t *testing.T, db *gorm.DB, landlordID string) *models.Property {
	t.Helper()

	p := &models.Property{
		ID:         uuid.NewString(),
		LandlordID: landlordID,
		Title:      "Sunny 2BR near the park",
		Address:    "12 Main St",
		City:       "Springfield",
		Price:      180000,
		Bedrooms:   2,
		Bathrooms:  1,
		Status:     models.PropertyStatusActive,
	}
	p.SetAmenityList([]string{"wifi", "laundry"})
	p.SetImageList(nil)
	require.NoError(t, db.Create(p).Error)
	return p
}

func timePtr(t time.Time) *time.Time {
	return &t
}
