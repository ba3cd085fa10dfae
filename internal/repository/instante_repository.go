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

// InstanteRepository handles journal entry persistence
type InstanteRepository interface {
	Create(ctx context.Context, instante *models.Instante) error
	GetByID(ctx context.Context, id string) (*models.Instante, error)
	Update(ctx context.Context, instante *models.Instante) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Instante, int, error)
	ListPublicByUser(ctx context.Context, userID string, limit, offset int) ([]models.Instante, int, error)
	AreaStats(ctx context.Context, userID string) ([]models.AreaStat, error)
}

type instanteRepository struct {
	pool *pgxpool.Pool
}

// NewInstanteRepository creates a new PostgreSQL instante repository
func NewInstanteRepository(pool *pgxpool.Pool) InstanteRepository {
	return &instanteRepository{pool: pool}
}

const instanteColumns = `id, user_id, title, date, area, tipo, contenido, estado, privado, created_at, updated_at`

func scanInstante(row pgx.Row) (*models.Instante, error) {
	i := &models.Instante{}
	var area, tipo, estado string
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Title,
		&i.Date,
		&area,
		&tipo,
		&i.Contenido,
		&estado,
		&i.Privado,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.Area = models.LifeArea(area)
	i.Tipo = models.InstanteTipo(tipo)
	i.Estado = models.InstanteEstado(estado)
	return i, nil
}

// Create inserts a new journal entry
func (r *instanteRepository) Create(ctx context.Context, instante *models.Instante) error {
	query := `
		INSERT INTO instantes (id, user_id, title, date, area, tipo, contenido, estado, privado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		instante.ID,
		instante.UserID,
		instante.Title,
		instante.Date,
		string(instante.Area),
		string(instante.Tipo),
		instante.Contenido,
		string(instante.Estado),
		instante.Privado,
	).Scan(&instante.CreatedAt, &instante.UpdatedAt)
	if err != nil {
		return r.mapDBError(err, "create_instante")
	}
	return nil
}

// GetByID retrieves a journal entry by ID
func (r *instanteRepository) GetByID(ctx context.Context, id string) (*models.Instante, error) {
	query := `SELECT ` + instanteColumns + ` FROM instantes WHERE id = $1`

	instante, err := scanInstante(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.mapDBError(err, "get_instante_by_id")
	}
	return instante, nil
}

// Update replaces the mutable fields of a journal entry
func (r *instanteRepository) Update(ctx context.Context, instante *models.Instante) error {
	query := `
		UPDATE instantes
		SET title = $2, date = $3, area = $4, tipo = $5, contenido = $6,
			estado = $7, privado = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		instante.ID,
		instante.Title,
		instante.Date,
		string(instante.Area),
		string(instante.Tipo),
		instante.Contenido,
		string(instante.Estado),
		instante.Privado,
	).Scan(&instante.UpdatedAt)
	if err != nil {
		return r.mapDBError(err, "update_instante")
	}
	return nil
}

// Delete removes a journal entry. Comments cascade at the schema level.
func (r *instanteRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM instantes WHERE id = $1`, id)
	if err != nil {
		return r.mapDBError(err, "delete_instante")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete_instante: %w", models.ErrInstanteNotFound)
	}
	return nil
}

// ListByUser retrieves all entries of one author, newest date first (dashboard view)
func (r *instanteRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Instante, int, error) {
	return r.list(ctx, `user_id = $1`, userID, limit, offset)
}

// ListPublicByUser retrieves the published, non-private entries of one
// author (public blog view). A NULL privado counts as public.
func (r *instanteRepository) ListPublicByUser(ctx context.Context, userID string, limit, offset int) ([]models.Instante, int, error) {
	return r.list(ctx, `user_id = $1 AND estado = 'publicado' AND COALESCE(privado, FALSE) = FALSE`, userID, limit, offset)
}

func (r *instanteRepository) list(ctx context.Context, where, userID string, limit, offset int) ([]models.Instante, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM instantes WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, r.mapDBError(err, "count_instantes")
	}

	query := `
		SELECT ` + instanteColumns + `
		FROM instantes
		WHERE ` + where + `
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, r.mapDBError(err, "list_instantes")
	}
	defer rows.Close()

	var instantes []models.Instante
	for rows.Next() {
		i, err := scanInstante(rows)
		if err != nil {
			return nil, 0, r.mapDBError(err, "scan_instante")
		}
		instantes = append(instantes, *i)
	}

	return instantes, total, nil
}

// AreaStats counts a user's public entries per life area
func (r *instanteRepository) AreaStats(ctx context.Context, userID string) ([]models.AreaStat, error) {
	query := `
		SELECT area, COUNT(*)
		FROM instantes
		WHERE user_id = $1 AND estado = 'publicado' AND COALESCE(privado, FALSE) = FALSE
		GROUP BY area
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, r.mapDBError(err, "instante_area_stats")
	}
	defer rows.Close()

	counts := make(map[models.LifeArea]int)
	for rows.Next() {
		var area string
		var count int
		if err := rows.Scan(&area, &count); err != nil {
			return nil, r.mapDBError(err, "scan_area_stat")
		}
		counts[models.LifeArea(area)] = count
	}

	// Every area appears in the response, zeroes included, in display order
	stats := make([]models.AreaStat, 0, len(models.LifeAreas))
	for _, area := range models.LifeAreas {
		stats = append(stats, models.AreaStat{Area: area, Count: counts[area]})
	}
	return stats, nil
}

// mapDBError maps database errors to application errors
func (r *instanteRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrInstanteNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: invalid user reference: %w", operation, models.ErrInvalidInput)
		case "23514": // check_violation (area/tipo/estado enums)
			return fmt.Errorf("%s: %w", operation, models.ErrInvalidInput)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
