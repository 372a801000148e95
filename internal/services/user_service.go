package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PicassoPreem-86/subletly-sub000/internal/auth"
	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
)

// ErrEmailExists is returned when an account of the same type already uses
// the email address.
var ErrEmailExists = errors.New("email already in use by an account of this type")

// ErrInvalidCredentials is returned when login fails. It deliberately does
// not distinguish "no such account" from "wrong password".
var ErrInvalidCredentials = errors.New("invalid email or password")

// RegisterInput carries the validated fields for a new account.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	AccountType models.AccountType
}

// IUserService defines the interface for user-related operations.
// This allows for easier mocking in tests.
type IUserService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email string, accountType models.AccountType, password string) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// userService implements IUserService.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *gorm.DB) IUserService {
	return &userService{db: db}
}

// Register creates a new account. Uniqueness is per (email, accountType):
// the same address may hold one renter and one landlord account.
func (s *userService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND account_type = ?", email, input.AccountType).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("error checking email uniqueness for %s: %w", email, err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		AccountType:  input.AccountType,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Verified:     false,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// The count check above races with concurrent signups; the unique
		// index is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("error creating user %s: %w", email, err)
	}
	return user, nil
}

// Authenticate verifies the password for the (email, accountType) account.
func (s *userService) Authenticate(ctx context.Context, email string, accountType models.AccountType, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND account_type = ?", email, accountType).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a bcrypt comparison anyway to keep timing uniform.
			auth.CheckPasswordHash(password, "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B4qkBS0Kk5mCkW0rJw9Y8uXbGxOa")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user by email %s: %w", email, err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// FindByID looks up a user by primary key.
func (s *userService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user %s: %w", userID, err)
	}
	return &user, nil
}
