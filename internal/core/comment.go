// Package core - Comment Business Logic
// Threaded comments over public instantes: creation, thread assembly,
// author edits, soft deletion and the moderation workflow.
package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"diario/internal/repository"
	"diario/pkg/models"
	"diario/pkg/utils"
)

// CommentBroadcaster receives comment events for live listeners.
// Fire-and-forget: implementations must never block or fail the caller.
type CommentBroadcaster interface {
	Publish(event models.CommentEvent)
}

// CommentService defines comment operations
type CommentService interface {
	Create(ctx context.Context, instanteID, userID string, req models.CreateCommentRequest) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	GetThread(ctx context.Context, instanteID string) ([]*models.ThreadedComment, error)
	Update(ctx context.Context, commentID, callerUserID, newContent string) (*models.Comment, error)
	Delete(ctx context.Context, commentID, callerUserID string) error
	Moderate(ctx context.Context, commentID string, caller *models.User, action string) error
	ListPending(ctx context.Context, instanteID string) ([]*models.Comment, error)
}

type commentService struct {
	commentRepo  repository.CommentRepository
	instanteRepo repository.InstanteRepository
	userRepo     repository.UserRepository
	notifier     NotificationDispatcher
	broadcaster  CommentBroadcaster
}

// NewCommentService creates a new comment service. notifier and
// broadcaster may be nil (tests, CLI wiring).
func NewCommentService(
	commentRepo repository.CommentRepository,
	instanteRepo repository.InstanteRepository,
	userRepo repository.UserRepository,
	notifier NotificationDispatcher,
	broadcaster CommentBroadcaster,
) CommentService {
	return &commentService{
		commentRepo:  commentRepo,
		instanteRepo: instanteRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		broadcaster:  broadcaster,
	}
}

// Create validates and persists a new comment against a public
// instante, then hands it to the notification and live-stream side
// channels. Side-channel failures never surface to the caller.
func (s *commentService) Create(ctx context.Context, instanteID, userID string, req models.CreateCommentRequest) (*models.Comment, error) {
	if err := utils.ValidateCommentContent(req.Content); err != nil {
		return nil, fmt.Errorf("content must not be empty: %w", models.ErrInvalidInput)
	}

	instante, err := s.instanteRepo.GetByID(ctx, instanteID)
	if err != nil {
		return nil, err
	}
	if !instante.IsPublic() {
		return nil, fmt.Errorf("comments are disabled on this instante: %w", models.ErrInstantePrivado)
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.IsDeleted() {
			return nil, fmt.Errorf("parent comment no longer exists: %w", models.ErrCommentNotFound)
		}
		if parent.InstanteID != instanteID {
			return nil, fmt.Errorf("%w", models.ErrParentMismatch)
		}
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:         uuid.New().String(),
		InstanteID: instanteID,
		UserID:     author.ID,
		UserName:   author.DisplayName,
		UserPhoto:  author.PhotoURL,
		Content:    req.Content,
		Status:     models.CommentStatusPending,
		ParentID:   req.ParentID,
		CreatedAt:  time.Now(),
	}
	if comment.UserName == "" {
		comment.UserName = author.Username
	}

	if err := s.commentRepo.Insert(ctx, comment); err != nil {
		return nil, err
	}

	// Side channels fire only after the write is durable
	if s.notifier != nil {
		s.notifier.CommentCreated(ctx, instante, comment)
	}
	s.publish(models.CommentEvent{
		Type:       "comment_created",
		CommentID:  comment.ID,
		InstanteID: instanteID,
		ParentID:   comment.ParentID,
		UserName:   comment.UserName,
		Timestamp:  comment.CreatedAt,
	})

	return comment, nil
}

// GetByID retrieves a comment by ID
func (s *commentService) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

// GetThread rebuilds the threaded view of one instante from a single
// flat fetch. Top-level comments come back newest first, replies under
// each parent oldest first. Replies whose parent is gone are promoted
// to top level. Deleted comments survive as empty placeholders while
// they still anchor replies, and vanish once they anchor none.
func (s *commentService) GetThread(ctx context.Context, instanteID string) ([]*models.ThreadedComment, error) {
	flat, err := s.commentRepo.ListByInstante(ctx, instanteID)
	if err != nil {
		return nil, err
	}
	return assembleThread(flat), nil
}

// assembleThread builds the tree from parent-pointer rows. flat must be
// ordered oldest first; that ordering carries into the reply lists.
func assembleThread(flat []*models.Comment) []*models.ThreadedComment {
	nodes := make(map[string]*models.ThreadedComment, len(flat))
	for _, c := range flat {
		nodes[c.ID] = &models.ThreadedComment{Comment: *c, Replies: []*models.ThreadedComment{}}
	}

	var roots []*models.ThreadedComment
	for _, c := range flat {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
			// Orphaned reply: parent never existed or is gone entirely.
			// Promoted rather than dropped so the content stays visible.
		}
		roots = append(roots, node)
	}

	roots = pruneDeleted(roots)

	// Feed order: newest conversation first
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})

	return roots
}

// pruneDeleted drops deleted leaves and blanks deleted nodes that still
// hold replies, recursively.
func pruneDeleted(nodes []*models.ThreadedComment) []*models.ThreadedComment {
	out := nodes[:0]
	for _, node := range nodes {
		node.Replies = pruneDeleted(node.Replies)
		if node.IsDeleted() {
			if len(node.Replies) == 0 {
				continue
			}
			// Keep the skeleton so replies stay threaded; the content
			// was already blanked at delete time.
			node.Content = ""
			node.UserPhoto = ""
		}
		out = append(out, node)
	}
	return out
}

// Update replaces a comment's content. Only the comment's author may
// edit, admins included in the "no" side.
func (s *commentService) Update(ctx context.Context, commentID, callerUserID, newContent string) (*models.Comment, error) {
	if err := utils.ValidateCommentContent(newContent); err != nil {
		return nil, fmt.Errorf("content must not be empty: %w", models.ErrInvalidInput)
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted() {
		return nil, fmt.Errorf("update_comment: %w", models.ErrCommentNotFound)
	}
	if comment.UserID != callerUserID {
		return nil, fmt.Errorf("only the comment author may edit: %w", models.ErrForbidden)
	}

	return s.commentRepo.UpdateContent(ctx, commentID, newContent)
}

// Delete soft-deletes a comment. Same ownership rule as Update.
func (s *commentService) Delete(ctx context.Context, commentID, callerUserID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.IsDeleted() {
		return fmt.Errorf("delete_comment: %w", models.ErrCommentNotFound)
	}
	if comment.UserID != callerUserID {
		return fmt.Errorf("only the comment author may delete: %w", models.ErrForbidden)
	}

	if err := s.commentRepo.SoftDelete(ctx, commentID); err != nil {
		return err
	}

	s.publish(models.CommentEvent{
		Type:       "comment_deleted",
		CommentID:  comment.ID,
		InstanteID: comment.InstanteID,
		Timestamp:  time.Now(),
	})
	return nil
}

// Moderate applies a moderation action after authorizing the caller
// against the owning instante.
func (s *commentService) Moderate(ctx context.Context, commentID string, caller *models.User, action string) error {
	if !models.IsValidModerationAction(action) {
		return fmt.Errorf("action must be one of approved/rejected/spam: %w", models.ErrInvalidModAction)
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.IsDeleted() {
		return fmt.Errorf("moderate_comment: %w", models.ErrCommentNotFound)
	}

	instante, err := s.instanteRepo.GetByID(ctx, comment.InstanteID)
	if err != nil {
		return err
	}

	if !CanModerate(caller.ID, caller.IsAdmin(), instante.UserID) {
		return fmt.Errorf("moderation requires admin or instante ownership: %w", models.ErrForbidden)
	}

	if err := s.commentRepo.UpdateStatus(ctx, commentID, models.CommentStatus(action)); err != nil {
		return err
	}

	s.publish(models.CommentEvent{
		Type:       "comment_moderated",
		CommentID:  comment.ID,
		InstanteID: comment.InstanteID,
		Timestamp:  time.Now(),
	})
	return nil
}

// ListPending returns the moderation queue, newest first. The sort is
// repeated here so the ordering holds even if the store cannot provide
// it server-side.
func (s *commentService) ListPending(ctx context.Context, instanteID string) ([]*models.Comment, error) {
	pending, err := s.commentRepo.ListPending(ctx, instanteID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})
	return pending, nil
}

func (s *commentService) publish(event models.CommentEvent) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(event)
	}
}
