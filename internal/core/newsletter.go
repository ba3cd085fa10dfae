// Package core - Newsletter Business Logic
// Double opt-in: subscribe stores a pending row plus a TTL'd token,
// the confirmation link flips the row, unsubscribe works the same way
// in reverse.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"diario/internal/repository"
	"diario/pkg/models"
	"diario/pkg/utils"
)

// NewsletterService defines the double opt-in subscription flow and
// issue delivery
type NewsletterService interface {
	// Subscribe always reports success to the caller; whether the
	// address was new, known or invalid is not disclosed.
	Subscribe(ctx context.Context, email string) error
	Confirm(ctx context.Context, token string) error
	Unsubscribe(ctx context.Context, token string) error
	// UnsubscribeLink mints a per-recipient opt-out token
	UnsubscribeLink(ctx context.Context, email string) (string, error)
	// SendIssue mails an issue to every confirmed subscriber and
	// reports how many sends succeeded
	SendIssue(ctx context.Context, subject, body string) (int, error)
}

// confirmTTL bounds how long a confirmation link stays valid
const confirmTTL = 48 * time.Hour

// unsubscribeTTL keeps opt-out links working across newsletter cycles
const unsubscribeTTL = 90 * 24 * time.Hour

type newsletterService struct {
	newsletterRepo repository.NewsletterRepository
	tokens         repository.TokenStore
	mailer         Mailer
	baseURL        string
}

// NewNewsletterService creates the newsletter service
func NewNewsletterService(
	newsletterRepo repository.NewsletterRepository,
	tokens repository.TokenStore,
	mailer Mailer,
	baseURL string,
) NewsletterService {
	return &newsletterService{
		newsletterRepo: newsletterRepo,
		tokens:         tokens,
		mailer:         mailer,
		baseURL:        baseURL,
	}
}

// Subscribe records the address and emails a confirmation link
func (s *newsletterService) Subscribe(ctx context.Context, email string) error {
	if err := utils.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid email address: %w", models.ErrInvalidInput)
	}

	if err := s.newsletterRepo.UpsertPending(ctx, email); err != nil {
		return err
	}

	token := uuid.New().String()
	if err := s.tokens.Save(ctx, models.TokenKindConfirm, token, email, confirmTTL); err != nil {
		return err
	}

	confirmLink := fmt.Sprintf("%s/api/v1/newsletter/confirm?token=%s", s.baseURL, token)
	if s.mailer != nil {
		// Best-effort like every outbound mail; delivery failures are
		// logged inside the mailer and the subscriber can re-submit
		_ = s.mailer.SendNewsletterConfirmation(ctx, email, confirmLink)
	}
	return nil
}

// Confirm redeems a confirmation token
func (s *newsletterService) Confirm(ctx context.Context, token string) error {
	email, err := s.tokens.Take(ctx, models.TokenKindConfirm, token)
	if err != nil {
		return err
	}
	return s.newsletterRepo.Confirm(ctx, email)
}

// Unsubscribe redeems an opt-out token
func (s *newsletterService) Unsubscribe(ctx context.Context, token string) error {
	email, err := s.tokens.Take(ctx, models.TokenKindUnsubscribe, token)
	if err != nil {
		return err
	}
	return s.newsletterRepo.Unsubscribe(ctx, email)
}

// UnsubscribeLink mints the opt-out link embedded in newsletter sends
func (s *newsletterService) UnsubscribeLink(ctx context.Context, email string) (string, error) {
	token := uuid.New().String()
	if err := s.tokens.Save(ctx, models.TokenKindUnsubscribe, token, email, unsubscribeTTL); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/newsletter/unsubscribe?token=%s", s.baseURL, token), nil
}

// SendIssue delivers one issue to the confirmed list. Every recipient
// gets a personal opt-out link. A failed send skips that recipient and
// the rest of the list still gets the issue.
func (s *newsletterService) SendIssue(ctx context.Context, subject, body string) (int, error) {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return 0, fmt.Errorf("subject and body are required: %w", models.ErrInvalidInput)
	}
	if s.mailer == nil {
		return 0, nil
	}

	subscribers, err := s.newsletterRepo.ListConfirmed(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, sub := range subscribers {
		link, err := s.UnsubscribeLink(ctx, sub.Email)
		if err != nil {
			continue
		}
		if err := s.mailer.SendNewsletterIssue(ctx, sub.Email, subject, body, link); err != nil {
			continue
		}
		sent++
	}
	return sent, nil
}
