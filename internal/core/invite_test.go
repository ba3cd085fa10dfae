package core

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvite(t *testing.T) {
	ctx := context.Background()
	repo := newFakeInviteRepo()
	svc := NewInviteService(repo)

	invite, err := svc.Generate(ctx, "admin-1")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), invite.Code)
	assert.Equal(t, "admin-1", invite.CreatedBy)
	assert.False(t, invite.IsUsed())

	// Codes come from crypto/rand; two mints never collide in practice
	second, err := svc.Generate(ctx, "admin-1")
	require.NoError(t, err)
	assert.NotEqual(t, invite.Code, second.Code)

	invites, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, invites, 2)
}
