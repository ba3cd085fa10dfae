package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diario/pkg/models"
)

type fakeInviteRepo struct {
	invites map[string]*models.Invite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: make(map[string]*models.Invite)}
}

func (r *fakeInviteRepo) Create(_ context.Context, invite *models.Invite) error {
	cp := *invite
	r.invites[invite.Code] = &cp
	return nil
}

func (r *fakeInviteRepo) GetByCode(_ context.Context, code string) (*models.Invite, error) {
	i, ok := r.invites[code]
	if !ok {
		return nil, fmt.Errorf("get_invite: %w", models.ErrInviteNotFound)
	}
	cp := *i
	return &cp, nil
}

func (r *fakeInviteRepo) Consume(_ context.Context, code, userID string) error {
	i, ok := r.invites[code]
	if !ok {
		return fmt.Errorf("consume_invite: %w", models.ErrInviteNotFound)
	}
	if i.UsedBy != nil {
		return fmt.Errorf("consume_invite: %w", models.ErrInviteUsed)
	}
	now := time.Now()
	i.UsedBy = &userID
	i.UsedAt = &now
	return nil
}

func (r *fakeInviteRepo) List(_ context.Context) ([]models.Invite, error) {
	var out []models.Invite
	for _, i := range r.invites {
		out = append(out, *i)
	}
	return out, nil
}

func newAuthFixture(inviteRequired bool) (AuthService, *fakeUserRepo, *fakeInviteRepo) {
	users := newFakeUserRepo()
	invites := newFakeInviteRepo()
	svc := NewAuthService(users, invites, inviteRequired, "test-secret", "diario-test", time.Hour)
	return svc, users, invites
}

func validRegisterRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Username: "anamaria",
		Email:    "ana@example.com",
		Password: "contraseña-larga",
	}
}

func TestRegisterWithInvite(t *testing.T) {
	ctx := context.Background()
	svc, _, invites := newAuthFixture(true)

	require.NoError(t, invites.Create(ctx, &models.Invite{Code: "abc123", CreatedBy: "admin-1"}))

	req := validRegisterRequest()
	req.InviteCode = "abc123"

	user, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "anamaria", user.Username)
	assert.Equal(t, models.UserRoleUser, user.Role)
	assert.Empty(t, user.PasswordHash, "hash must not leak in responses")
	assert.Equal(t, "anamaria", user.DisplayName, "display name defaults to username")

	// The code burns with the account
	invite, err := invites.GetByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, invite.IsUsed())

	// And cannot be reused
	second := validRegisterRequest()
	second.Username = "benito99"
	second.Email = "benito@example.com"
	second.InviteCode = "abc123"
	_, err = svc.Register(ctx, second)
	assert.ErrorIs(t, err, models.ErrInviteUsed)
}

func TestRegisterInviteRequiredButMissing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(true)

	_, err := svc.Register(ctx, validRegisterRequest())
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRegisterUnknownInvite(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(true)

	req := validRegisterRequest()
	req.InviteCode = "does-not-exist"
	_, err := svc.Register(ctx, req)
	assert.ErrorIs(t, err, models.ErrInviteNotFound)
}

func TestRegisterOpenWhenInvitesDisabled(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(false)

	user, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(false)

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	dup := validRegisterRequest()
	dup.Email = "otra@example.com"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, models.ErrUsernameExists)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(false)

	short := validRegisterRequest()
	short.Password = "corta"
	_, err := svc.Register(ctx, short)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	badEmail := validRegisterRequest()
	badEmail.Email = "sin-arroba"
	_, err = svc.Register(ctx, badEmail)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	badName := validRegisterRequest()
	badName.Username = "con espacios"
	_, err = svc.Register(ctx, badName)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLoginAndValidateToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(false)

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, models.LoginRequest{Username: "anamaria", Password: "contraseña-larga"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Greater(t, resp.ExpiresIn, 0)
	assert.Equal(t, "anamaria", resp.User.Username)

	user, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "anamaria", user.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(false)

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "anamaria", Password: "incorrecta"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "fantasma", Password: "lo-que-sea"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestValidateTokenGarbage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(false)

	_, err := svc.ValidateToken(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestValidateTokenSeesRoleChanges(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture(false)

	registered, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, models.LoginRequest{Username: "anamaria", Password: "contraseña-larga"})
	require.NoError(t, err)

	// Promote after the token was issued; validation must see it
	require.NoError(t, users.UpdateRole(ctx, registered.ID, models.UserRoleAdmin))

	user, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestUpdateUserRoleValidation(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture(false)

	registered, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateUserRole(ctx, registered.ID, "supermod"), models.ErrInvalidInput)

	require.NoError(t, svc.UpdateUserRole(ctx, registered.ID, "admin"))
	stored, err := users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin())
}
