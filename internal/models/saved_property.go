package models

import (
	"time"
)

// SavedProperty is a bookmark join row between a user and a property. The
// compound unique index means a property can be saved at most once per user.
type SavedProperty struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_property" json:"userId"`
	PropertyID string    `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_property" json:"propertyId"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (SavedProperty) TableName() string {
	return "saved_properties"
}
