package models

import (
	"encoding/json"
	"time"
)

// Message is one reply within an inquiry thread. The sender must be either
// the inquiry's renter or the property's landlord. ReadAt stays null until
// the other participant marks the thread read.
type Message struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	InquiryID string `gorm:"type:uuid;not null;index:idx_messages_inquiry_created" json:"inquiryId"`
	SenderID  string `gorm:"type:uuid;not null;index" json:"senderId"`
	Sender    *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`

	Content string     `gorm:"type:text;not null" json:"content"`
	ReadAt  *time.Time `json:"readAt,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_messages_inquiry_created" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

// MarshalJSON exposes the sender as a public identity. The full user record
// (email included) never leaves the service layer through a thread payload.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	return json.Marshal(struct {
		alias
		Sender *PublicIdentity `json:"sender,omitempty"`
	}{
		alias:  alias(m),
		Sender: publicOrNil(m.Sender),
	})
}
