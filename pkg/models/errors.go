package models

import (
	"errors"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInstanteNotFound   = errors.New("instante not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrInvalidInput       = errors.New("invalid input")

	// Comment subsystem
	ErrInstantePrivado  = errors.New("instante is private")
	ErrParentMismatch   = errors.New("parent comment belongs to a different instante")
	ErrInvalidModAction = errors.New("invalid moderation action")

	// Invites and newsletter
	ErrInviteNotFound = errors.New("invite code not found")
	ErrInviteUsed     = errors.New("invite code already used")
	ErrTokenExpired   = errors.New("confirmation token expired or unknown")
)

// HTTPStatus maps a sentinel error to its HTTP status code
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidModAction),
		errors.Is(err, ErrParentMismatch):
		return 400
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidCredentials):
		return 401
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInstantePrivado):
		return 403
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInstanteNotFound), errors.Is(err, ErrCommentNotFound),
		errors.Is(err, ErrInviteNotFound):
		return 404
	case errors.Is(err, ErrUsernameExists), errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrInviteUsed):
		return 409
	case errors.Is(err, ErrTokenExpired):
		return 410
	default:
		return 500
	}
}
