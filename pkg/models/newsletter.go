package models

import "time"

// Subscriber is a newsletter recipient going through double opt-in
type Subscriber struct {
	Email          string     `json:"email" db:"email"`
	Confirmed      bool       `json:"confirmed" db:"confirmed"`
	SubscribedAt   time.Time  `json:"subscribed_at" db:"subscribed_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty" db:"unsubscribed_at"`
}

// SubscribeRequest starts the double opt-in flow
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendIssueRequest is an admin request to mail an issue to the list
type SendIssueRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// Token kinds stored in the short-lived token store
const (
	TokenKindConfirm     = "newsletter:confirm"
	TokenKindUnsubscribe = "newsletter:unsub"
)
