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

// CommentRepository handles comment persistence. Thread assembly
// happens in the service from one flat ListByInstante fetch; every
// write here targets a single row, so no transactions are needed.
type CommentRepository interface {
	Insert(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByInstante(ctx context.Context, instanteID string) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (*models.Comment, error)
	SoftDelete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status models.CommentStatus) error
	ListPending(ctx context.Context, instanteID string) ([]*models.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new PostgreSQL comment repository
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

const commentColumns = `id, instante_id, user_id, user_name, user_photo, content, status, parent_id, created_at, edited_at, deleted_at`

func scanComment(row pgx.Row) (*models.Comment, error) {
	c := &models.Comment{}
	var status string
	err := row.Scan(
		&c.ID,
		&c.InstanteID,
		&c.UserID,
		&c.UserName,
		&c.UserPhoto,
		&c.Content,
		&status,
		&c.ParentID,
		&c.CreatedAt,
		&c.EditedAt,
		&c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = models.CommentStatus(status)
	return c, nil
}

// Insert persists a new comment
func (r *commentRepository) Insert(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, instante_id, user_id, user_name, user_photo, content, status, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, CURRENT_TIMESTAMP))
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.InstanteID,
		comment.UserID,
		comment.UserName,
		comment.UserPhoto,
		comment.Content,
		string(comment.Status),
		comment.ParentID,
		comment.CreatedAt,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "insert_comment")
	}
	return nil
}

// GetByID retrieves a comment by ID, soft-deleted rows included; the
// service decides how a deleted comment surfaces.
func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.mapDBError(err, "get_comment_by_id")
	}
	return comment, nil
}

// ListByInstante fetches every comment of one entry in a single query,
// oldest first. Status does not filter here: the public thread is
// publish-then-moderate.
func (r *commentRepository) ListByInstante(ctx context.Context, instanteID string) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE instante_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, instanteID)
	if err != nil {
		return nil, r.mapDBError(err, "list_comments")
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_comment")
		}
		comments = append(comments, c)
	}

	return comments, nil
}

// UpdateContent replaces a comment's content and stamps edited_at.
// Last write wins; concurrent edits are an accepted race.
func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET content = $2, edited_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + commentColumns

	comment, err := scanComment(r.pool.QueryRow(ctx, query, id, content))
	if err != nil {
		return nil, r.mapDBError(err, "update_comment")
	}
	return comment, nil
}

// SoftDelete tombstones a comment. Content is blanked in the same
// statement so the original text is unrecoverable from the row.
func (r *commentRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE comments
		SET content = '', deleted_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return r.mapDBError(err, "delete_comment")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete_comment: %w", models.ErrCommentNotFound)
	}
	return nil
}

// UpdateStatus applies a moderation action. Authorization happens in
// the service before this is called.
func (r *commentRepository) UpdateStatus(ctx context.Context, id string, status models.CommentStatus) error {
	query := `UPDATE comments SET status = $2 WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return r.mapDBError(err, "moderate_comment")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("moderate_comment: %w", models.ErrCommentNotFound)
	}
	return nil
}

// ListPending returns comments awaiting moderation, newest first.
// instanteID narrows to one entry when non-empty. Ordering rides on
// created_at alone so no compound index is required.
func (r *commentRepository) ListPending(ctx context.Context, instanteID string) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE status = 'pending' AND deleted_at IS NULL
	`
	args := []interface{}{}
	if instanteID != "" {
		query += ` AND instante_id = $1`
		args = append(args, instanteID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapDBError(err, "list_pending_comments")
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_pending_comment")
		}
		comments = append(comments, c)
	}

	return comments, nil
}

// mapDBError maps database errors to application errors
func (r *commentRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrCommentNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: invalid instante or parent reference: %w", operation, models.ErrInvalidInput)
		case "22001": // string_data_right_truncation
			return fmt.Errorf("%s: comment content too long: %w", operation, models.ErrInvalidInput)
		case "23514": // check_violation (status enum)
			return fmt.Errorf("%s: %w", operation, models.ErrInvalidModAction)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
