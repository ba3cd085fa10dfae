package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diario/pkg/models"
)

// In-memory fakes. Repository behavior mirrors the PostgreSQL
// implementations closely enough for service-level assertions.

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*models.Comment)}
}

func (r *fakeCommentRepo) Insert(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("get_comment_by_id: %w", models.ErrCommentNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) ListByInstante(_ context.Context, instanteID string) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.comments {
		if c.InstanteID == instanteID {
			cp := *c
			out = append(out, &cp)
		}
	}
	// oldest first, matching the SQL ORDER BY
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.Before(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) UpdateContent(_ context.Context, id, content string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok || c.DeletedAt != nil {
		return nil, fmt.Errorf("update_comment: %w", models.ErrCommentNotFound)
	}
	now := time.Now()
	c.Content = content
	c.EditedAt = &now
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok || c.DeletedAt != nil {
		return fmt.Errorf("delete_comment: %w", models.ErrCommentNotFound)
	}
	now := time.Now()
	c.Content = ""
	c.DeletedAt = &now
	return nil
}

func (r *fakeCommentRepo) UpdateStatus(_ context.Context, id string, status models.CommentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok || c.DeletedAt != nil {
		return fmt.Errorf("moderate_comment: %w", models.ErrCommentNotFound)
	}
	c.Status = status
	return nil
}

func (r *fakeCommentRepo) ListPending(_ context.Context, instanteID string) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.comments {
		if c.Status != models.CommentStatusPending || c.DeletedAt != nil {
			continue
		}
		if instanteID != "" && c.InstanteID != instanteID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

type fakeInstanteRepo struct {
	instantes map[string]*models.Instante
}

func newFakeInstanteRepo() *fakeInstanteRepo {
	return &fakeInstanteRepo{instantes: make(map[string]*models.Instante)}
}

func (r *fakeInstanteRepo) Create(_ context.Context, i *models.Instante) error {
	cp := *i
	r.instantes[i.ID] = &cp
	return nil
}

func (r *fakeInstanteRepo) GetByID(_ context.Context, id string) (*models.Instante, error) {
	i, ok := r.instantes[id]
	if !ok {
		return nil, fmt.Errorf("get_instante_by_id: %w", models.ErrInstanteNotFound)
	}
	cp := *i
	return &cp, nil
}

func (r *fakeInstanteRepo) Update(_ context.Context, i *models.Instante) error {
	if _, ok := r.instantes[i.ID]; !ok {
		return fmt.Errorf("update_instante: %w", models.ErrInstanteNotFound)
	}
	cp := *i
	r.instantes[i.ID] = &cp
	return nil
}

func (r *fakeInstanteRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.instantes[id]; !ok {
		return fmt.Errorf("delete_instante: %w", models.ErrInstanteNotFound)
	}
	delete(r.instantes, id)
	return nil
}

func (r *fakeInstanteRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Instante, int, error) {
	var out []models.Instante
	for _, i := range r.instantes {
		if i.UserID == userID {
			out = append(out, *i)
		}
	}
	return out, len(out), nil
}

func (r *fakeInstanteRepo) ListPublicByUser(_ context.Context, userID string, limit, offset int) ([]models.Instante, int, error) {
	var out []models.Instante
	for _, i := range r.instantes {
		if i.UserID == userID && i.IsPublic() {
			out = append(out, *i)
		}
	}
	return out, len(out), nil
}

func (r *fakeInstanteRepo) AreaStats(_ context.Context, userID string) ([]models.AreaStat, error) {
	counts := make(map[models.LifeArea]int)
	for _, i := range r.instantes {
		if i.UserID == userID && i.IsPublic() {
			counts[i.Area]++
		}
	}
	stats := make([]models.AreaStat, 0, len(models.LifeAreas))
	for _, area := range models.LifeAreas {
		stats = append(stats, models.AreaStat{Area: area, Count: counts[area]})
	}
	return stats, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get_user_by_id: %w", models.ErrUserNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get_user_by_username: %w", models.ErrUserNotFound)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get_user_by_email: %w", models.ErrUserNotFound)
}

func (r *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, userID string, role models.UserRole) error {
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("update_role: %w", models.ErrUserNotFound)
	}
	u.Role = role
	return nil
}

// fakeDispatcher records notification calls synchronously
type fakeDispatcher struct {
	mu    sync.Mutex
	calls int
}

func (d *fakeDispatcher) CommentCreated(_ context.Context, _ *models.Instante, _ *models.Comment) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// fakeBroadcaster records published events
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []models.CommentEvent
}

func (b *fakeBroadcaster) Publish(event models.CommentEvent) {
	b.mu.Lock()
	b.events = append(b.events, event)
	b.mu.Unlock()
}

// Test fixtures

func boolPtr(b bool) *bool { return &b }

func publicInstante(id, ownerID string) *models.Instante {
	return &models.Instante{
		ID:     id,
		UserID: ownerID,
		Title:  "Un instante",
		Date:   time.Now(),
		Area:   models.AreaSalud,
		Tipo:   models.TipoPensamiento,
		Estado: models.EstadoPublicado,
	}
}

func testUser(id, username string) *models.User {
	return &models.User{
		ID:          id,
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: username,
		Role:        models.UserRoleUser,
	}
}

type commentFixture struct {
	svc         CommentService
	commentRepo *fakeCommentRepo
	instantes   *fakeInstanteRepo
	users       *fakeUserRepo
	notifier    *fakeDispatcher
	broadcaster *fakeBroadcaster
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		commentRepo: newFakeCommentRepo(),
		instantes:   newFakeInstanteRepo(),
		users:       newFakeUserRepo(),
		notifier:    &fakeDispatcher{},
		broadcaster: &fakeBroadcaster{},
	}
	f.svc = NewCommentService(f.commentRepo, f.instantes, f.users, f.notifier, f.broadcaster)
	return f
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	owner := testUser("owner-1", "ana")
	reader := testUser("reader-1", "benito")
	require.NoError(t, f.users.Create(ctx, owner))
	require.NoError(t, f.users.Create(ctx, reader))
	require.NoError(t, f.instantes.Create(ctx, publicInstante("inst-1", owner.ID)))

	comment, err := f.svc.Create(ctx, "inst-1", reader.ID, models.CreateCommentRequest{
		Content: "Qué bonito",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, models.CommentStatusPending, comment.Status)
	assert.Equal(t, "benito", comment.UserName)
	assert.Nil(t, comment.ParentID)

	// Side channels fired
	assert.Equal(t, 1, f.notifier.count())
	require.Len(t, f.broadcaster.events, 1)
	assert.Equal(t, "comment_created", f.broadcaster.events[0].Type)
}

func TestCreateCommentRejectsEmptyContent(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	_, err := f.svc.Create(ctx, "inst-1", "reader-1", models.CreateCommentRequest{Content: "   "})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCreateCommentOnPrivateInstante(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	owner := testUser("owner-1", "ana")
	require.NoError(t, f.users.Create(ctx, owner))

	private := publicInstante("inst-1", owner.ID)
	private.Privado = boolPtr(true)
	require.NoError(t, f.instantes.Create(ctx, private))

	_, err := f.svc.Create(ctx, "inst-1", "reader-1", models.CreateCommentRequest{Content: "hola"})
	assert.ErrorIs(t, err, models.ErrInstantePrivado)
}

func TestCreateCommentOnDraft(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	owner := testUser("owner-1", "ana")
	require.NoError(t, f.users.Create(ctx, owner))

	draft := publicInstante("inst-1", owner.ID)
	draft.Estado = models.EstadoBorrador
	require.NoError(t, f.instantes.Create(ctx, draft))

	_, err := f.svc.Create(ctx, "inst-1", "reader-1", models.CreateCommentRequest{Content: "hola"})
	assert.ErrorIs(t, err, models.ErrInstantePrivado)
}

func TestCreateReplyValidatesParent(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	owner := testUser("owner-1", "ana")
	reader := testUser("reader-1", "benito")
	require.NoError(t, f.users.Create(ctx, owner))
	require.NoError(t, f.users.Create(ctx, reader))
	require.NoError(t, f.instantes.Create(ctx, publicInstante("inst-1", owner.ID)))
	require.NoError(t, f.instantes.Create(ctx, publicInstante("inst-2", owner.ID)))

	parent, err := f.svc.Create(ctx, "inst-1", reader.ID, models.CreateCommentRequest{Content: "primero"})
	require.NoError(t, err)

	// Parent on a different instante
	_, err = f.svc.Create(ctx, "inst-2", reader.ID, models.CreateCommentRequest{
		Content:  "respuesta",
		ParentID: &parent.ID,
	})
	assert.ErrorIs(t, err, models.ErrParentMismatch)

	// Unknown parent
	missing := "nope"
	_, err = f.svc.Create(ctx, "inst-1", reader.ID, models.CreateCommentRequest{
		Content:  "respuesta",
		ParentID: &missing,
	})
	assert.ErrorIs(t, err, models.ErrCommentNotFound)

	// Deleted parent cannot anchor new replies
	require.NoError(t, f.svc.Delete(ctx, parent.ID, reader.ID))
	_, err = f.svc.Create(ctx, "inst-1", reader.ID, models.CreateCommentRequest{
		Content:  "respuesta",
		ParentID: &parent.ID,
	})
	assert.ErrorIs(t, err, models.ErrCommentNotFound)
}

func TestGetThreadOrdering(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	owner := testUser("owner-1", "ana")
	reader := testUser("reader-1", "benito")
	require.NoError(t, f.users.Create(ctx, owner))
	require.NoError(t, f.users.Create(ctx, reader))
	require.NoError(t, f.instantes.Create(ctx, publicInstante("inst-1", owner.ID)))

	// Insert directly so creation times are controlled
	base := time.Now().Add(-time.Hour)
	mkComment := func(id string, parentID *string, offset time.Duration) {
		require.NoError(t, f.commentRepo.Insert(ctx, &models.Comment{
			ID:         id,
			InstanteID: "inst-1",
			UserID:     reader.ID,
			UserName:   "benito",
			Content:    id,
			Status:     models.CommentStatusPending,
			ParentID:   parentID,
			CreatedAt:  base.Add(offset),
		}))
	}

	first := "c-first"
	mkComment("c-first", nil, 0)
	mkComment("c-second", nil, 10*time.Minute)
	mkComment("r-old", &first, 2*time.Minute)
	mkComment("r-new", &first, 5*time.Minute)

	thread, err := f.svc.GetThread(ctx, "inst-1")
	require.NoError(t, err)
	require.Len(t, thread, 2)

	// Top level newest first
	assert.Equal(t, "c-second", thread[0].ID)
	assert.Equal(t, "c-first", thread[1].ID)

	// Replies oldest first
	require.Len(t, thread[1].Replies, 2)
	assert.Equal(t, "r-old", thread[1].Replies[0].ID)
	assert.Equal(t, "r-new", thread[1].Replies[1].ID)
}

func TestGetThreadPromotesOrphans(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	ghost := "never-existed"
	require.NoError(t, f.commentRepo.Insert(ctx, &models.Comment{
		ID:         "orphan",
		InstanteID: "inst-1",
		UserID:     "u1",
		UserName:   "benito",
		Content:    "huérfano",
		Status:     models.CommentStatusPending,
		ParentID:   &ghost,
		CreatedAt:  time.Now(),
	}))

	thread, err := f.svc.GetThread(ctx, "inst-1")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "orphan", thread[0].ID)
}

func TestGetThreadDeletedPlaceholders(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	now := time.Now()
	deletedAt := now

	// Deleted parent with a live reply survives as a blank placeholder
	parentID := "deleted-parent"
	require.NoError(t, f.commentRepo.Insert(ctx, &models.Comment{
		ID: parentID, InstanteID: "inst-1", UserID: "u1", UserName: "x",
		Content: "", Status: models.CommentStatusPending,
		CreatedAt: now.Add(-time.Minute), DeletedAt: &deletedAt,
	}))
	require.NoError(t, f.commentRepo.Insert(ctx, &models.Comment{
		ID: "reply", InstanteID: "inst-1", UserID: "u2", UserName: "y",
		Content: "sigo aquí", Status: models.CommentStatusPending,
		ParentID: &parentID, CreatedAt: now,
	}))

	// Deleted leaf disappears entirely
	require.NoError(t, f.commentRepo.Insert(ctx, &models.Comment{
		ID: "deleted-leaf", InstanteID: "inst-1", UserID: "u1", UserName: "x",
		Content: "", Status: models.CommentStatusPending,
		CreatedAt: now, DeletedAt: &deletedAt,
	}))

	thread, err := f.svc.GetThread(ctx, "inst-1")
	require.NoError(t, err)
	require.Len(t, thread, 1)

	placeholder := thread[0]
	assert.Equal(t, parentID, placeholder.ID)
	assert.Empty(t, placeholder.Content)
	require.Len(t, placeholder.Replies, 1)
	assert.Equal(t, "reply", placeholder.Replies[0].ID)
}

func TestGetThreadIncludesAllStatuses(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	for i, status := range []models.CommentStatus{
		models.CommentStatusPending,
		models.CommentStatusApproved,
		models.CommentStatusRejected,
		models.CommentStatusSpam,
	} {
		require.NoError(t, f.commentRepo.Insert(ctx, &models.Comment{
			ID: fmt.Sprintf("c-%d", i), InstanteID: "inst-1",
			UserID: "u1", UserName: "x", Content: "texto",
			Status: status, CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	thread, err := f.svc.GetThread(ctx, "inst-1")
	require.NoError(t, err)
	assert.Len(t, thread, 4, "moderation status must not hide comments from the public thread")
}

func TestUpdateCommentOwnership(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	owner := testUser("owner-1", "ana")
	reader := testUser("reader-1", "benito")
	require.NoError(t, f.users.Create(ctx, owner))
	require.NoError(t, f.users.Create(ctx, reader))
	require.NoError(t, f.instantes.Create(ctx, publicInstante("inst-1", owner.ID)))

	comment, err := f.svc.Create(ctx, "inst-1", reader.ID, models.CreateCommentRequest{Content: "original"})
	require.NoError(t, err)

	// Author may edit
	updated, err := f.svc.Update(ctx, comment.ID, reader.ID, "corregido")
	require.NoError(t, err)
	assert.Equal(t, "corregido", updated.Content)
	assert.NotNil(t, updated.EditedAt)

	// Nobody else may, the instante owner included
	_, err = f.svc.Update(ctx, comment.ID, owner.ID, "intruso")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestDeleteCommentOwnership(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	owner := testUser("owner-1", "ana")
	reader := testUser("reader-1", "benito")
	require.NoError(t, f.users.Create(ctx, owner))
	require.NoError(t, f.users.Create(ctx, reader))
	require.NoError(t, f.instantes.Create(ctx, publicInstante("inst-1", owner.ID)))

	comment, err := f.svc.Create(ctx, "inst-1", reader.ID, models.CreateCommentRequest{Content: "borrame"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, comment.ID, owner.ID), models.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, comment.ID, reader.ID))

	// Deleting twice reads as not found
	assert.ErrorIs(t, f.svc.Delete(ctx, comment.ID, reader.ID), models.ErrCommentNotFound)

	stored, err := f.commentRepo.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Content, "soft delete blanks the stored content")
	assert.True(t, stored.IsDeleted())
}

func TestModerateComment(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	owner := testUser("owner-1", "ana")
	reader := testUser("reader-1", "benito")
	admin := testUser("admin-1", "carla")
	admin.Role = models.UserRoleAdmin
	stranger := testUser("stranger-1", "dario")
	require.NoError(t, f.users.Create(ctx, owner))
	require.NoError(t, f.users.Create(ctx, reader))
	require.NoError(t, f.users.Create(ctx, admin))
	require.NoError(t, f.users.Create(ctx, stranger))
	require.NoError(t, f.instantes.Create(ctx, publicInstante("inst-1", owner.ID)))

	comment, err := f.svc.Create(ctx, "inst-1", reader.ID, models.CreateCommentRequest{Content: "dudoso"})
	require.NoError(t, err)

	// Neither the author nor a stranger may moderate
	assert.ErrorIs(t, f.svc.Moderate(ctx, comment.ID, reader, "approved"), models.ErrForbidden)
	assert.ErrorIs(t, f.svc.Moderate(ctx, comment.ID, stranger, "approved"), models.ErrForbidden)

	// Invalid action rejected before any authorization work
	assert.ErrorIs(t, f.svc.Moderate(ctx, comment.ID, admin, "vaporize"), models.ErrInvalidModAction)

	// The entry owner may
	require.NoError(t, f.svc.Moderate(ctx, comment.ID, owner, "approved"))
	stored, err := f.commentRepo.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CommentStatusApproved, stored.Status)

	// A global admin may too, and re-moderation just overwrites
	require.NoError(t, f.svc.Moderate(ctx, comment.ID, admin, "spam"))
	stored, err = f.commentRepo.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CommentStatusSpam, stored.Status)
}

func TestListPendingNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.commentRepo.Insert(ctx, &models.Comment{
			ID: fmt.Sprintf("c-%d", i), InstanteID: "inst-1",
			UserID: "u1", UserName: "x", Content: "pendiente",
			Status:    models.CommentStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// Approved comments stay out of the queue
	require.NoError(t, f.commentRepo.Insert(ctx, &models.Comment{
		ID: "approved", InstanteID: "inst-1", UserID: "u1", UserName: "x",
		Content: "ok", Status: models.CommentStatusApproved, CreatedAt: time.Now(),
	}))

	pending, err := f.svc.ListPending(ctx, "")
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "c-2", pending[0].ID)
	assert.Equal(t, "c-0", pending[2].ID)
}

func TestCreateCommentNilSideChannels(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()
	svc := NewCommentService(f.commentRepo, f.instantes, f.users, nil, nil)

	owner := testUser("owner-1", "ana")
	require.NoError(t, f.users.Create(ctx, owner))
	require.NoError(t, f.instantes.Create(ctx, publicInstante("inst-1", owner.ID)))

	_, err := svc.Create(ctx, "inst-1", owner.ID, models.CreateCommentRequest{Content: "sin canales"})
	assert.NoError(t, err)
}

func TestCreateCommentUnknownInstante(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()

	_, err := f.svc.Create(ctx, "missing", "u1", models.CreateCommentRequest{Content: "hola"})
	assert.True(t, errors.Is(err, models.ErrInstanteNotFound))
}
