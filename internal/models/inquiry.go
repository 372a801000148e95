package models

import (
	"encoding/json"
	"time"
)

// InquiryStatus is the state of an inquiry thread.
//
// The only transition any code path performs is PENDING -> RESPONDED, the
// first time the landlord replies. CLOSED exists in the schema but nothing
// sets it yet.
type InquiryStatus string

const (
	InquiryStatusPending   InquiryStatus = "PENDING"
	InquiryStatusResponded InquiryStatus = "RESPONDED"
	InquiryStatusClosed    InquiryStatus = "CLOSED"
)

// Inquiry represents a renter's expressed interest in one property. It
// anchors the message thread between that renter and the property's
// landlord.
type Inquiry struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	RenterID   string    `gorm:"type:uuid;not null;index" json:"renterId"`
	Renter     *User     `gorm:"foreignKey:RenterID" json:"renter,omitempty"`
	PropertyID string    `gorm:"type:uuid;not null;index" json:"propertyId"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`

	Message    string     `gorm:"type:text;not null" json:"message"`
	Phone      *string    `gorm:"size:32" json:"phone,omitempty"`
	MoveInDate *time.Time `json:"moveInDate,omitempty"`

	Status        InquiryStatus `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	LastMessageAt *time.Time    `gorm:"index" json:"lastMessageAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Inquiry) TableName() string {
	return "inquiries"
}

// MarshalJSON exposes the renter as a public identity; the landlord side is
// handled the same way by Property's marshaller.
func (i Inquiry) MarshalJSON() ([]byte, error) {
	type alias Inquiry
	return json.Marshal(struct {
		alias
		Renter *PublicIdentity `json:"renter,omitempty"`
	}{
		alias:  alias(i),
		Renter: publicOrNil(i.Renter),
	})
}
