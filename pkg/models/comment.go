package models

import (
	"time"
)

// CommentStatus represents the moderation lifecycle of a comment.
// Status never gates public visibility: new comments publish
// immediately and moderation flags them afterwards.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
	CommentStatusSpam     CommentStatus = "spam"
)

// ModerationActions are the statuses a moderator may assign
var ModerationActions = []CommentStatus{
	CommentStatusApproved, CommentStatusRejected, CommentStatusSpam,
}

// Comment represents a reader comment on a public instante
type Comment struct {
	ID         string        `json:"id" db:"id"`
	InstanteID string        `json:"instante_id" db:"instante_id"`
	UserID     string        `json:"user_id" db:"user_id"`
	UserName   string        `json:"user_name" db:"user_name"`
	UserPhoto  string        `json:"user_photo,omitempty" db:"user_photo"`
	Content    string        `json:"content" db:"content"`
	Status     CommentStatus `json:"status" db:"status"`
	ParentID   *string       `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	EditedAt   *time.Time    `json:"edited_at,omitempty" db:"edited_at"`
	DeletedAt  *time.Time    `json:"-" db:"deleted_at"`
}

// IsDeleted reports whether the comment has been soft-deleted
func (c *Comment) IsDeleted() bool {
	return c.DeletedAt != nil
}

// ThreadedComment is the read-only tree view of a comment and its replies.
// Rebuilt from the flat comments table on every read, never persisted.
type ThreadedComment struct {
	Comment
	Replies []*ThreadedComment `json:"replies"`
}

// CreateCommentRequest represents a request to comment on an instante
type CreateCommentRequest struct {
	Content  string  `json:"content" validate:"required,min=1,max=5000"`
	ParentID *string `json:"parent_id"`
}

// UpdateCommentRequest replaces a comment's content
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// ModerateCommentRequest assigns a moderation status to a comment
type ModerateCommentRequest struct {
	Action string `json:"action" validate:"required,oneof=approved rejected spam"`
}

// CommentEvent is broadcast on the per-instante websocket stream
type CommentEvent struct {
	Type       string    `json:"type"` // comment_created, comment_deleted, comment_moderated
	CommentID  string    `json:"comment_id"`
	InstanteID string    `json:"instante_id"`
	ParentID   *string   `json:"parent_id,omitempty"`
	UserName   string    `json:"user_name,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// MaxCommentLength bounds comment content, matching the column width
const MaxCommentLength = 5000

// IsValidModerationAction validates a moderation action value
func IsValidModerationAction(action string) bool {
	for _, a := range ModerationActions {
		if CommentStatus(action) == a {
			return true
		}
	}
	return false
}
