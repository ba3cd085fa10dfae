package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diario/pkg/models"
)

func newInstanteFixture() (InstanteService, *fakeInstanteRepo, *fakeUserRepo) {
	instantes := newFakeInstanteRepo()
	users := newFakeUserRepo()
	return NewInstanteService(instantes, users), instantes, users
}

func validCreateRequest() models.CreateInstanteRequest {
	return models.CreateInstanteRequest{
		Title:     "Paseo por el parque",
		Date:      "2026-08-28",
		Area:      "ocio",
		Contenido: "Una tarde tranquila.",
	}
}

func TestCreateInstanteDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newInstanteFixture()

	instante, err := svc.Create(ctx, "user-1", validCreateRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, instante.ID)
	assert.Equal(t, models.TipoPensamiento, instante.Tipo, "tipo defaults to pensamiento")
	assert.Equal(t, models.EstadoBorrador, instante.Estado, "estado defaults to borrador")
	assert.Nil(t, instante.Privado)
	assert.Equal(t, "2026-08-28", instante.Date.Format("2006-01-02"))
}

func TestCreateInstanteValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newInstanteFixture()

	tests := []struct {
		name   string
		mutate func(*models.CreateInstanteRequest)
	}{
		{"empty title", func(r *models.CreateInstanteRequest) { r.Title = "  " }},
		{"unknown area", func(r *models.CreateInstanteRequest) { r.Area = "astrologia" }},
		{"bad tipo", func(r *models.CreateInstanteRequest) { r.Tipo = "sueño" }},
		{"bad estado", func(r *models.CreateInstanteRequest) { r.Estado = "archivado" }},
		{"bad date", func(r *models.CreateInstanteRequest) { r.Date = "28/08/2026" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := svc.Create(ctx, "user-1", req)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestGetInstanteVisibility(t *testing.T) {
	ctx := context.Background()
	svc, instantes, _ := newInstanteFixture()

	pub := publicInstante("pub-1", "owner-1")
	require.NoError(t, instantes.Create(ctx, pub))

	private := publicInstante("priv-1", "owner-1")
	private.Privado = boolPtr(true)
	require.NoError(t, instantes.Create(ctx, private))

	draft := publicInstante("draft-1", "owner-1")
	draft.Estado = models.EstadoBorrador
	require.NoError(t, instantes.Create(ctx, draft))

	// Anyone reads a public entry, even anonymously
	got, err := svc.Get(ctx, "pub-1", "")
	require.NoError(t, err)
	assert.Equal(t, "pub-1", got.ID)

	// Owner reads everything
	for _, id := range []string{"pub-1", "priv-1", "draft-1"} {
		_, err := svc.Get(ctx, id, "owner-1")
		assert.NoError(t, err, id)
	}

	// Everyone else sees private and drafts as absent, not forbidden
	for _, id := range []string{"priv-1", "draft-1"} {
		_, err := svc.Get(ctx, id, "stranger-1")
		assert.ErrorIs(t, err, models.ErrInstanteNotFound, id)
		_, err = svc.Get(ctx, id, "")
		assert.ErrorIs(t, err, models.ErrInstanteNotFound, id)
	}
}

func TestUpdateInstantePartial(t *testing.T) {
	ctx := context.Background()
	svc, instantes, _ := newInstanteFixture()

	require.NoError(t, instantes.Create(ctx, publicInstante("inst-1", "owner-1")))

	newTitle := "Título nuevo"
	estado := "borrador"
	updated, err := svc.Update(ctx, "inst-1", "owner-1", models.UpdateInstanteRequest{
		Title:  &newTitle,
		Estado: &estado,
	})
	require.NoError(t, err)
	assert.Equal(t, "Título nuevo", updated.Title)
	assert.Equal(t, models.EstadoBorrador, updated.Estado)
	// Untouched fields survive
	assert.Equal(t, models.AreaSalud, updated.Area)

	// Only the owner may edit
	_, err = svc.Update(ctx, "inst-1", "stranger-1", models.UpdateInstanteRequest{Title: &newTitle})
	assert.ErrorIs(t, err, models.ErrForbidden)

	// Flipping privado via pointer works both ways
	updated, err = svc.Update(ctx, "inst-1", "owner-1", models.UpdateInstanteRequest{Privado: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.EffectivePrivado())
}

func TestDeleteInstanteOwnership(t *testing.T) {
	ctx := context.Background()
	svc, instantes, _ := newInstanteFixture()

	require.NoError(t, instantes.Create(ctx, publicInstante("inst-1", "owner-1")))

	assert.ErrorIs(t, svc.Delete(ctx, "inst-1", "stranger-1"), models.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "inst-1", "owner-1"))
	assert.ErrorIs(t, svc.Delete(ctx, "inst-1", "owner-1"), models.ErrInstanteNotFound)
}

func TestListPublicBlogByUsername(t *testing.T) {
	ctx := context.Background()
	svc, instantes, users := newInstanteFixture()

	author := testUser("owner-1", "ana")
	require.NoError(t, users.Create(ctx, author))

	require.NoError(t, instantes.Create(ctx, publicInstante("pub-1", author.ID)))
	draft := publicInstante("draft-1", author.ID)
	draft.Estado = models.EstadoBorrador
	require.NoError(t, instantes.Create(ctx, draft))

	resp, err := svc.ListPublicBlog(ctx, "ana", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "pub-1", resp.Data[0].ID)

	_, err = svc.ListPublicBlog(ctx, "desconocida", 20, 0)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestPublicStatsCoversAllAreas(t *testing.T) {
	ctx := context.Background()
	svc, instantes, users := newInstanteFixture()

	author := testUser("owner-1", "ana")
	require.NoError(t, users.Create(ctx, author))

	salud := publicInstante("s-1", author.ID)
	require.NoError(t, instantes.Create(ctx, salud))
	ocio := publicInstante("o-1", author.ID)
	ocio.Area = models.AreaOcio
	require.NoError(t, instantes.Create(ctx, ocio))

	stats, err := svc.PublicStats(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, stats, len(models.LifeAreas), "every area appears, zero counts included")

	byArea := make(map[models.LifeArea]int)
	for _, s := range stats {
		byArea[s.Area] = s.Count
	}
	assert.Equal(t, 1, byArea[models.AreaSalud])
	assert.Equal(t, 1, byArea[models.AreaOcio])
	assert.Equal(t, 0, byArea[models.AreaDinero])
}

func TestListOwnClampsPagination(t *testing.T) {
	ctx := context.Background()
	svc, instantes, _ := newInstanteFixture()

	require.NoError(t, instantes.Create(ctx, publicInstante("inst-1", "owner-1")))

	resp, err := svc.ListOwn(ctx, "owner-1", -5, -10)
	require.NoError(t, err)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 0, resp.Offset)
}
