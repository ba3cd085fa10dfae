// Package core - Invite Business Logic
package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"diario/internal/repository"
	"diario/pkg/models"
)

// InviteService mints and lists single-use registration codes.
// Redemption happens inside AuthService.Register.
type InviteService interface {
	Generate(ctx context.Context, createdBy string) (*models.Invite, error)
	List(ctx context.Context) ([]models.Invite, error)
}

type inviteService struct {
	inviteRepo repository.InviteRepository
}

// NewInviteService creates the invite service
func NewInviteService(inviteRepo repository.InviteRepository) InviteService {
	return &inviteService{inviteRepo: inviteRepo}
}

// Generate mints a new random invite code
func (s *inviteService) Generate(ctx context.Context, createdBy string) (*models.Invite, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	invite := &models.Invite{
		Code:      hex.EncodeToString(buf),
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

// List returns every invite, newest first
func (s *inviteService) List(ctx context.Context) ([]models.Invite, error) {
	return s.inviteRepo.List(ctx)
}
