package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"diario/pkg/models"
)

// NewsletterRepository handles newsletter subscriber persistence.
// The double opt-in tokens live in the TokenStore, not here.
type NewsletterRepository interface {
	// UpsertPending records a subscription attempt. Re-subscribing an
	// unconfirmed address just refreshes subscribed_at.
	UpsertPending(ctx context.Context, email string) error
	Confirm(ctx context.Context, email string) error
	Unsubscribe(ctx context.Context, email string) error
	GetByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	ListConfirmed(ctx context.Context) ([]models.Subscriber, error)
}

type newsletterRepository struct {
	pool *pgxpool.Pool
}

// NewNewsletterRepository creates a new PostgreSQL newsletter repository
func NewNewsletterRepository(pool *pgxpool.Pool) NewsletterRepository {
	return &newsletterRepository{pool: pool}
}

// UpsertPending records an unconfirmed subscriber
func (r *newsletterRepository) UpsertPending(ctx context.Context, email string) error {
	query := `
		INSERT INTO newsletter_subscribers (email, confirmed, subscribed_at)
		VALUES ($1, FALSE, CURRENT_TIMESTAMP)
		ON CONFLICT (email) DO UPDATE
		SET subscribed_at = CURRENT_TIMESTAMP,
			unsubscribed_at = NULL
	`

	if _, err := r.pool.Exec(ctx, query, email); err != nil {
		return r.mapDBError(err, "upsert_subscriber")
	}
	return nil
}

// Confirm completes the double opt-in for an address
func (r *newsletterRepository) Confirm(ctx context.Context, email string) error {
	query := `
		UPDATE newsletter_subscribers
		SET confirmed = TRUE, confirmed_at = CURRENT_TIMESTAMP
		WHERE email = $1
	`

	tag, err := r.pool.Exec(ctx, query, email)
	if err != nil {
		return r.mapDBError(err, "confirm_subscriber")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("confirm_subscriber: %w", models.ErrNotFound)
	}
	return nil
}

// Unsubscribe removes an address from future sends; the row stays for audit
func (r *newsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	query := `
		UPDATE newsletter_subscribers
		SET confirmed = FALSE, unsubscribed_at = CURRENT_TIMESTAMP
		WHERE email = $1
	`

	tag, err := r.pool.Exec(ctx, query, email)
	if err != nil {
		return r.mapDBError(err, "unsubscribe")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unsubscribe: %w", models.ErrNotFound)
	}
	return nil
}

// GetByEmail retrieves one subscriber record
func (r *newsletterRepository) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	query := `
		SELECT email, confirmed, subscribed_at, confirmed_at, unsubscribed_at
		FROM newsletter_subscribers
		WHERE email = $1
	`

	s := &models.Subscriber{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&s.Email,
		&s.Confirmed,
		&s.SubscribedAt,
		&s.ConfirmedAt,
		&s.UnsubscribedAt,
	)
	if err != nil {
		return nil, r.mapDBError(err, "get_subscriber")
	}
	return s, nil
}

// ListConfirmed returns every active recipient
func (r *newsletterRepository) ListConfirmed(ctx context.Context) ([]models.Subscriber, error) {
	query := `
		SELECT email, confirmed, subscribed_at, confirmed_at, unsubscribed_at
		FROM newsletter_subscribers
		WHERE confirmed = TRUE
		ORDER BY subscribed_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, r.mapDBError(err, "list_subscribers")
	}
	defer rows.Close()

	var subscribers []models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		err := rows.Scan(&s.Email, &s.Confirmed, &s.SubscribedAt, &s.ConfirmedAt, &s.UnsubscribedAt)
		if err != nil {
			return nil, r.mapDBError(err, "scan_subscriber")
		}
		subscribers = append(subscribers, s)
	}

	return subscribers, nil
}

// mapDBError maps database errors to application errors
func (r *newsletterRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrNotFound)
	}
	return fmt.Errorf("database error during %s: %w", operation, err)
}
