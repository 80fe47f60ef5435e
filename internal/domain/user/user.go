package user

import (
	"context"
	"strings"
	"time"

	"rento/internal/domain/shared/fault"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 6

var (
	ErrIDRequired          = fault.New(fault.Validation, "User id is required")
	ErrEmailRequired       = fault.New(fault.Validation, "Email is required")
	ErrEmailInvalid        = fault.New(fault.Validation, "Email is invalid")
	ErrPasswordHashMissing = fault.New(fault.Internal, "Password hash is required")
	ErrPasswordTooShort    = fault.New(fault.Validation, "Password must be at least 6 characters")
	ErrNameRequired        = fault.New(fault.Validation, "Name is required")
	ErrEmailAlreadyUsed    = fault.New(fault.Conflict, "User already exists")
	ErrNotFound            = fault.New(fault.NotFound, "User not found")
)

type ID string

type User struct {
	ID           ID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	// Save inserts or updates; a second user with the same email fails with
	// ErrEmailAlreadyUsed.
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email, err := NormalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           ID(id),
		Email:        email,
		Name:         name,
		Phone:        strings.TrimSpace(params.Phone),
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ProfileChanges is a partial profile update; nil fields are left untouched.
type ProfileChanges struct {
	Name  *string
	Email *string
	Phone *string
}

func (u *User) UpdateProfile(changes ProfileChanges, now time.Time) error {
	name, email, phone := u.Name, u.Email, u.Phone
	if changes.Name != nil {
		name = strings.TrimSpace(*changes.Name)
		if name == "" {
			return ErrNameRequired
		}
	}
	if changes.Email != nil {
		normalized, err := NormalizeEmail(*changes.Email)
		if err != nil {
			return err
		}
		email = normalized
	}
	if changes.Phone != nil {
		phone = strings.TrimSpace(*changes.Phone)
	}
	u.Name, u.Email, u.Phone = name, email, phone
	u.touch(now)
	return nil
}

func (u *User) SetPasswordHash(hash string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordHashMissing
	}
	u.PasswordHash = hash
	u.touch(now)
	return nil
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

// NormalizeEmail lower-cases and trims an address and performs a shallow shape check.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrEmailRequired
	}
	at := strings.LastIndex(normalized, "@")
	if at <= 0 || at == len(normalized)-1 || strings.ContainsAny(normalized, " \t") {
		return "", ErrEmailInvalid
	}
	return normalized, nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
