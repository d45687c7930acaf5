package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinPasswordLength is the shortest password accepted at sign-up.
	MinPasswordLength    = 6
	MaxDisplayNameLength = 100
)

// User represents an account row.
// ExternalUID is set for accounts that authenticate through Firebase.
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	ExternalUID  *string    `json:"external_uid,omitempty" db:"firebase_uid"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email}
}

func (u *User) Profile() Profile {
	return Profile{DisplayName: u.DisplayName, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

// Principal is the identity handle issued for an authenticated session.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile holds the mutable display attributes of a principal.
type Profile struct {
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session is what sign-in, sign-up and the session query return.
// Confirmed is false for accounts whose email has not been confirmed yet.
type Session struct {
	Token     string    `json:"token,omitempty"`
	Principal Principal `json:"principal"`
	Profile   Profile   `json:"profile"`
	Confirmed bool      `json:"confirmed"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StoredSession is the server-side record behind a session token.
type StoredSession struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfilePatch represents data for updating a profile
type ProfilePatch struct {
	DisplayName *string `json:"display_name,omitempty"`
}

func (p ProfilePatch) Validate() error {
	if p.DisplayName == nil {
		return fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	name := strings.TrimSpace(*p.DisplayName)
	if name == "" {
		return fmt.Errorf("%w: display name cannot be empty", ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return fmt.Errorf("%w: display name longer than %d characters", ErrValidation, MaxDisplayNameLength)
	}
	return nil
}

// SignUpRequest represents data needed to create a new account
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Credentials are the sign-in inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NormalizeEmail lowercases and trims an address and checks its syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email required", ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email", ErrValidation)
	}
	return email, nil
}

// CheckPassword enforces the minimum password length.
func CheckPassword(password string, minLength int) error {
	if minLength < MinPasswordLength {
		minLength = MinPasswordLength
	}
	if utf8.RuneCountInString(password) < minLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrWeakCredential, minLength)
	}
	return nil
}
