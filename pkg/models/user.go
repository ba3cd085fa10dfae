package models

import (
	"errors"
	"time"
)

// UserRole represents valid user roles
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User represents a registered journal author
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PhotoURL     string    `json:"photo_url,omitempty" db:"photo_url"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role" validate:"required,oneof=user admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user holds the global admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// RegisterRequest
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	InviteCode  string `json:"invite_code"`
}

// LoginRequest
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserProfile - public-facing profile, NO sensitive data
type UserProfile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile strips sensitive fields for public responses
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		CreatedAt:   u.CreatedAt,
	}
}

// LoginResponse
type LoginResponse struct {
	Token     string      `json:"token"`
	User      UserProfile `json:"user"`
	ExpiresIn int         `json:"expires_in"` // seconds (client-friendly)
}

// ValidateRegisterRequest adds additional validation beyond struct tags
func ValidateRegisterRequest(req *RegisterRequest) error {
	if len(req.Username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if req.Email == "" {
		return errors.New("email is required")
	}
	return nil
}
