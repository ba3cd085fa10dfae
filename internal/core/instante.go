// Package core - Instante Business Logic
// Journal entry management: dashboard CRUD for the owner, public blog
// reads for everyone else.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"diario/internal/repository"
	"diario/pkg/models"
	"diario/pkg/utils"
)

// InstanteService defines journal entry operations
type InstanteService interface {
	Create(ctx context.Context, userID string, req models.CreateInstanteRequest) (*models.Instante, error)
	// Get returns the entry if the caller may read it: owners always,
	// everyone else only for public entries. callerUserID may be empty.
	Get(ctx context.Context, id, callerUserID string) (*models.Instante, error)
	Update(ctx context.Context, id, callerUserID string, req models.UpdateInstanteRequest) (*models.Instante, error)
	Delete(ctx context.Context, id, callerUserID string) error
	ListOwn(ctx context.Context, userID string, limit, offset int) (*models.InstanteListResponse, error)
	ListPublicBlog(ctx context.Context, username string, limit, offset int) (*models.InstanteListResponse, error)
	PublicStats(ctx context.Context, username string) ([]models.AreaStat, error)
}

type instanteService struct {
	instanteRepo repository.InstanteRepository
	userRepo     repository.UserRepository
}

// NewInstanteService creates a new instante service
func NewInstanteService(instanteRepo repository.InstanteRepository, userRepo repository.UserRepository) InstanteService {
	return &instanteService{instanteRepo: instanteRepo, userRepo: userRepo}
}

// dateLayout is the wire format for entry dates
const dateLayout = "2006-01-02"

// Create validates and persists a new journal entry
func (s *instanteService) Create(ctx context.Context, userID string, req models.CreateInstanteRequest) (*models.Instante, error) {
	if err := utils.ValidateInstanteTitle(req.Title); err != nil {
		return nil, fmt.Errorf("title is required: %w", models.ErrInvalidInput)
	}
	if !models.IsValidLifeArea(req.Area) {
		return nil, fmt.Errorf("unknown life area %q: %w", req.Area, models.ErrInvalidInput)
	}
	if req.Tipo == "" {
		req.Tipo = string(models.TipoPensamiento)
	}
	if !models.IsValidTipo(req.Tipo) {
		return nil, fmt.Errorf("tipo must be pensamiento or accion: %w", models.ErrInvalidInput)
	}
	if req.Estado == "" {
		req.Estado = string(models.EstadoBorrador)
	}
	if !models.IsValidEstado(req.Estado) {
		return nil, fmt.Errorf("estado must be borrador or publicado: %w", models.ErrInvalidInput)
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", models.ErrInvalidInput)
	}

	instante := &models.Instante{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     req.Title,
		Date:      date,
		Area:      models.LifeArea(req.Area),
		Tipo:      models.InstanteTipo(req.Tipo),
		Contenido: req.Contenido,
		Estado:    models.InstanteEstado(req.Estado),
		Privado:   req.Privado,
	}

	if err := s.instanteRepo.Create(ctx, instante); err != nil {
		return nil, err
	}
	return instante, nil
}

// Get enforces read visibility
func (s *instanteService) Get(ctx context.Context, id, callerUserID string) (*models.Instante, error) {
	instante, err := s.instanteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if instante.UserID != callerUserID && !instante.IsPublic() {
		// Private entries read as absent to everyone but the owner
		return nil, fmt.Errorf("get_instante: %w", models.ErrInstanteNotFound)
	}
	return instante, nil
}

// Update applies a partial edit; only the owner may mutate
func (s *instanteService) Update(ctx context.Context, id, callerUserID string, req models.UpdateInstanteRequest) (*models.Instante, error) {
	instante, err := s.instanteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if instante.UserID != callerUserID {
		return nil, fmt.Errorf("only the author may edit an instante: %w", models.ErrForbidden)
	}

	if req.Title != nil {
		if err := utils.ValidateInstanteTitle(*req.Title); err != nil {
			return nil, fmt.Errorf("title must not be empty: %w", models.ErrInvalidInput)
		}
		instante.Title = *req.Title
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", models.ErrInvalidInput)
		}
		instante.Date = date
	}
	if req.Area != nil {
		if !models.IsValidLifeArea(*req.Area) {
			return nil, fmt.Errorf("unknown life area %q: %w", *req.Area, models.ErrInvalidInput)
		}
		instante.Area = models.LifeArea(*req.Area)
	}
	if req.Tipo != nil {
		if !models.IsValidTipo(*req.Tipo) {
			return nil, fmt.Errorf("tipo must be pensamiento or accion: %w", models.ErrInvalidInput)
		}
		instante.Tipo = models.InstanteTipo(*req.Tipo)
	}
	if req.Contenido != nil {
		instante.Contenido = *req.Contenido
	}
	if req.Estado != nil {
		if !models.IsValidEstado(*req.Estado) {
			return nil, fmt.Errorf("estado must be borrador or publicado: %w", models.ErrInvalidInput)
		}
		instante.Estado = models.InstanteEstado(*req.Estado)
	}
	if req.Privado != nil {
		instante.Privado = req.Privado
	}

	if err := s.instanteRepo.Update(ctx, instante); err != nil {
		return nil, err
	}
	return instante, nil
}

// Delete removes an entry and, via cascade, its comments
func (s *instanteService) Delete(ctx context.Context, id, callerUserID string) error {
	instante, err := s.instanteRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if instante.UserID != callerUserID {
		return fmt.Errorf("only the author may delete an instante: %w", models.ErrForbidden)
	}
	return s.instanteRepo.Delete(ctx, id)
}

// ListOwn returns the caller's dashboard view, drafts included
func (s *instanteService) ListOwn(ctx context.Context, userID string, limit, offset int) (*models.InstanteListResponse, error) {
	limit, offset = clampPage(limit, offset)
	instantes, total, err := s.instanteRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return listResponse(instantes, total, limit, offset), nil
}

// ListPublicBlog returns another user's public entries by username
func (s *instanteService) ListPublicBlog(ctx context.Context, username string, limit, offset int) (*models.InstanteListResponse, error) {
	limit, offset = clampPage(limit, offset)
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	instantes, total, err := s.instanteRepo.ListPublicByUser(ctx, author.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return listResponse(instantes, total, limit, offset), nil
}

// PublicStats returns per-life-area counts for a user's public blog
func (s *instanteService) PublicStats(ctx context.Context, username string) ([]models.AreaStat, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.instanteRepo.AreaStats(ctx, author.ID)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func listResponse(instantes []models.Instante, total, limit, offset int) *models.InstanteListResponse {
	if instantes == nil {
		instantes = []models.Instante{}
	}
	return &models.InstanteListResponse{
		Data:    instantes,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
}
