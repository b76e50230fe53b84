package auth

import (
	"errors"
	"time"
)

// Role is a coarse permission tier.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
)

// Valid reports whether the role belongs to the fixed role list.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOperator:
		return true
	}
	return false
}

// User is an authenticated account. Accounts become active once the
// signup OTP is verified.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	// ErrEmailTaken indicates a signup against an existing email.
	ErrEmailTaken = errors.New("auth: email already registered")
	// ErrInvalidOTP indicates a wrong, expired or already-used code.
	ErrInvalidOTP = errors.New("auth: invalid or expired OTP")
	// ErrInvalidInput indicates malformed credentials.
	ErrInvalidInput = errors.New("auth: invalid input")
)
