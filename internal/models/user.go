package models

import (
	"time"
)

// AccountType discriminates the two kinds of accounts. The same email may
// hold one RENTER account and one LANDLORD account, but not two of the same
// type (compound unique index with Email).
type AccountType string

const (
	AccountTypeRenter   AccountType = "RENTER"
	AccountTypeLandlord AccountType = "LANDLORD"
)

// Valid reports whether the value is one of the known account types.
func (t AccountType) Valid() bool {
	return t == AccountTypeRenter || t == AccountTypeLandlord
}

// User represents a user in the system.
type User struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string      `gorm:"size:255;not null;uniqueIndex:idx_users_email_account_type" json:"email"`
	AccountType  AccountType `gorm:"size:16;not null;uniqueIndex:idx_users_email_account_type" json:"accountType"`
	PasswordHash string      `gorm:"size:255;not null" json:"-"` // Store hash, not plaintext
	FirstName    string      `gorm:"size:100;not null" json:"firstName"`
	LastName     string      `gorm:"size:100;not null" json:"lastName"`
	Verified     bool        `gorm:"not null;default:false" json:"verified"`
	VerifiedAt   *time.Time  `json:"verifiedAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// PublicIdentity is the subset of user fields safe to show to the other
// party of a conversation.
type PublicIdentity struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Public returns the user's public identity fields.
func (u *User) Public() PublicIdentity {
	return PublicIdentity{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

func publicOrNil(u *User) *PublicIdentity {
	if u == nil {
		return nil
	}
	p := u.Public()
	return &p
}
