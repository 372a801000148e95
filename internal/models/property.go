package models

import (
	"encoding/json"
	"time"
)

// PropertyStatus is the lifecycle state of a listing.
type PropertyStatus string

const (
	PropertyStatusDraft    PropertyStatus = "DRAFT"
	PropertyStatusActive   PropertyStatus = "ACTIVE"
	PropertyStatusRented   PropertyStatus = "RENTED"
	PropertyStatusInactive PropertyStatus = "INACTIVE"
)

// Valid reports whether the value is one of the known statuses.
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusDraft, PropertyStatusActive, PropertyStatusRented, PropertyStatusInactive:
		return true
	}
	return false
}

// Property is a listing owned by exactly one landlord user.
// Amenities and Images are stored as serialized JSON text and parsed at read
// time.
type Property struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	LandlordID  string `gorm:"type:uuid;not null;index" json:"landlordId"`
	Landlord    *User  `gorm:"foreignKey:LandlordID" json:"landlord,omitempty"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Address string `gorm:"size:255;not null" json:"address"`
	City    string `gorm:"size:100;not null;index" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	Zip     string `gorm:"size:20" json:"zip"`

	// Monthly rent in cents.
	Price     int64 `gorm:"not null;index" json:"price"`
	Bedrooms  int   `gorm:"not null" json:"bedrooms"`
	Bathrooms int   `gorm:"not null" json:"bathrooms"`

	Amenities string `gorm:"type:text" json:"-"`
	Images    string `gorm:"type:text" json:"-"`

	AvailableFrom *time.Time `json:"availableFrom,omitempty"`
	AvailableTo   *time.Time `gorm:"index" json:"availableTo,omitempty"`

	Status PropertyStatus `gorm:"size:16;not null;default:'DRAFT';index" json:"status"`
	Views  int64          `gorm:"not null;default:0" json:"views"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Property) TableName() string {
	return "properties"
}

// AmenityList parses the serialized amenities column. A corrupt or empty
// value yields an empty list.
func (p *Property) AmenityList() []string {
	return parseStringList(p.Amenities)
}

// SetAmenityList serializes the given list into the amenities column.
func (p *Property) SetAmenityList(amenities []string) {
	p.Amenities = encodeStringList(amenities)
}

// ImageList parses the serialized images column.
func (p *Property) ImageList() []string {
	return parseStringList(p.Images)
}

// SetImageList serializes the given list into the images column.
func (p *Property) SetImageList(images []string) {
	p.Images = encodeStringList(images)
}

func parseStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func encodeStringList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

// MarshalJSON exposes the parsed amenity/image lists instead of the raw
// serialized columns, and the landlord as a public identity.
func (p Property) MarshalJSON() ([]byte, error) {
	type alias Property
	return json.Marshal(struct {
		alias
		Amenities []string        `json:"amenities"`
		Images    []string        `json:"images"`
		Landlord  *PublicIdentity `json:"landlord,omitempty"`
	}{
		alias:     alias(p),
		Amenities: p.AmenityList(),
		Images:    p.ImageList(),
		Landlord:  publicOrNil(p.Landlord),
	})
}
