package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"diario/pkg/models"
)

// InviteRepository handles single-use registration invite codes
type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	GetByCode(ctx context.Context, code string) (*models.Invite, error)
	// Consume marks the code used by userID. The conditional UPDATE is
	// the concurrency guard: two racing registrations cannot both win.
	Consume(ctx context.Context, code, userID string) error
	List(ctx context.Context) ([]models.Invite, error)
}

type inviteRepository struct {
	pool *pgxpool.Pool
}

// NewInviteRepository creates a new PostgreSQL invite repository
func NewInviteRepository(pool *pgxpool.Pool) InviteRepository {
	return &inviteRepository{pool: pool}
}

// Create inserts a new invite code
func (r *inviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	query := `
		INSERT INTO invites (code, created_by, created_at)
		VALUES ($1, $2, COALESCE($3, CURRENT_TIMESTAMP))
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		invite.Code,
		invite.CreatedBy,
		invite.CreatedAt,
	).Scan(&invite.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "create_invite")
	}
	return nil
}

// GetByCode retrieves an invite by its code
func (r *inviteRepository) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	query := `
		SELECT code, created_by, created_at, used_by, used_at
		FROM invites
		WHERE code = $1
	`

	invite := &models.Invite{}
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&invite.Code,
		&invite.CreatedBy,
		&invite.CreatedAt,
		&invite.UsedBy,
		&invite.UsedAt,
	)
	if err != nil {
		return nil, r.mapDBError(err, "get_invite")
	}
	return invite, nil
}

// Consume atomically claims an unused invite code
func (r *inviteRepository) Consume(ctx context.Context, code, userID string) error {
	query := `
		UPDATE invites
		SET used_by = $2, used_at = CURRENT_TIMESTAMP
		WHERE code = $1 AND used_by IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, code, userID)
	if err != nil {
		return r.mapDBError(err, "consume_invite")
	}
	if tag.RowsAffected() == 0 {
		// Either unknown code or already consumed; look up which
		if _, err := r.GetByCode(ctx, code); err != nil {
			return err
		}
		return fmt.Errorf("consume_invite: %w", models.ErrInviteUsed)
	}
	return nil
}

// List returns every invite, newest first
func (r *inviteRepository) List(ctx context.Context) ([]models.Invite, error) {
	query := `
		SELECT code, created_by, created_at, used_by, used_at
		FROM invites
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, r.mapDBError(err, "list_invites")
	}
	defer rows.Close()

	var invites []models.Invite
	for rows.Next() {
		var invite models.Invite
		err := rows.Scan(
			&invite.Code,
			&invite.CreatedBy,
			&invite.CreatedAt,
			&invite.UsedBy,
			&invite.UsedAt,
		)
		if err != nil {
			return nil, r.mapDBError(err, "scan_invite")
		}
		invites = append(invites, invite)
	}

	return invites, nil
}

// mapDBError maps database errors to application errors
func (r *inviteRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrInviteNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%s: duplicate invite code: %w", operation, models.ErrInvalidInput)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
