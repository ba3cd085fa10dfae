// Package core - Notification Dispatch
// Best-effort email side channel for new comments and replies. Nothing
// here may ever fail the comment operation that triggered it.
package core

import (
	"context"
	"fmt"
	"unicode/utf8"

	"diario/internal/repository"
	"diario/pkg/logger"
	"diario/pkg/models"
	"diario/pkg/utils"
)

// CommentMail carries everything a comment/reply notification needs
type CommentMail struct {
	To            string
	EntryTitle    string
	CommenterName string
	Excerpt       string
	ParentExcerpt string
	Link          string
}

// Mailer sends the templated emails of this product
type Mailer interface {
	SendCommentNotification(ctx context.Context, mail CommentMail) error
	SendReplyNotification(ctx context.Context, mail CommentMail) error
	SendNewsletterConfirmation(ctx context.Context, to, confirmLink string) error
	SendNewsletterIssue(ctx context.Context, to, subject, body, unsubscribeLink string) error
}

// NotificationDispatcher decides who, if anyone, gets emailed when a
// comment lands
type NotificationDispatcher interface {
	CommentCreated(ctx context.Context, instante *models.Instante, comment *models.Comment)
}

type notificationDispatcher struct {
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	mailer      Mailer
	baseURL     string
}

// NewNotificationDispatcher creates the comment notification dispatcher
func NewNotificationDispatcher(
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	mailer Mailer,
	baseURL string,
) NotificationDispatcher {
	return &notificationDispatcher{
		userRepo:    userRepo,
		commentRepo: commentRepo,
		mailer:      mailer,
		baseURL:     baseURL,
	}
}

// excerptLen bounds comment excerpts in notification emails
const excerptLen = 140

// CommentCreated resolves the recipient and sends in the background.
// The comment write is already durable; the caller never waits.
func (d *notificationDispatcher) CommentCreated(ctx context.Context, instante *models.Instante, comment *models.Comment) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("notification dispatch panic recovered: %v", r)
			}
		}()

		// Detached from the request context: the HTTP response does not
		// wait for, and cannot be failed by, this send.
		bgCtx, cancel := utils.WithDispatchTimeout(context.Background())
		defer cancel()

		if err := d.dispatch(bgCtx, instante, comment); err != nil {
			logger.WithFields(map[string]interface{}{
				"component":   "notifications",
				"comment_id":  comment.ID,
				"instante_id": instante.ID,
				"error":       err.Error(),
			}).Error("comment notification skipped")
		}
	}()
}

func (d *notificationDispatcher) dispatch(ctx context.Context, instante *models.Instante, comment *models.Comment) error {
	if comment.ParentID != nil {
		return d.dispatchReply(ctx, instante, comment)
	}
	return d.dispatchTopLevel(ctx, instante, comment)
}

// dispatchReply notifies the parent comment's author, unless they are
// replying to themselves.
func (d *notificationDispatcher) dispatchReply(ctx context.Context, instante *models.Instante, comment *models.Comment) error {
	parent, err := d.commentRepo.GetByID(ctx, *comment.ParentID)
	if err != nil {
		return fmt.Errorf("resolve parent comment: %w", err)
	}
	if parent.UserID == comment.UserID {
		// Self-reply, nobody to tell
		return nil
	}

	recipient, err := d.userRepo.GetByID(ctx, parent.UserID)
	if err != nil {
		return fmt.Errorf("resolve parent author: %w", err)
	}
	if recipient.Email == "" {
		return fmt.Errorf("parent author %s has no email", recipient.ID)
	}

	mail := CommentMail{
		To:            recipient.Email,
		EntryTitle:    instante.Title,
		CommenterName: comment.UserName,
		Excerpt:       excerpt(comment.Content),
		ParentExcerpt: excerpt(parent.Content),
		Link:          d.entryLink(instante.ID),
	}
	if err := d.mailer.SendReplyNotification(ctx, mail); err != nil {
		return fmt.Errorf("send reply notification: %w", err)
	}
	return nil
}

// dispatchTopLevel notifies the instante owner, unless they commented
// on their own entry.
func (d *notificationDispatcher) dispatchTopLevel(ctx context.Context, instante *models.Instante, comment *models.Comment) error {
	if comment.UserID == instante.UserID {
		return nil
	}

	owner, err := d.userRepo.GetByID(ctx, instante.UserID)
	if err != nil {
		return fmt.Errorf("resolve instante owner: %w", err)
	}
	if owner.Email == "" {
		return fmt.Errorf("instante owner %s has no email", owner.ID)
	}

	mail := CommentMail{
		To:            owner.Email,
		EntryTitle:    instante.Title,
		CommenterName: comment.UserName,
		Excerpt:       excerpt(comment.Content),
		Link:          d.entryLink(instante.ID),
	}
	if err := d.mailer.SendCommentNotification(ctx, mail); err != nil {
		return fmt.Errorf("send comment notification: %w", err)
	}
	return nil
}

func (d *notificationDispatcher) entryLink(instanteID string) string {
	return fmt.Sprintf("%s/instantes/%s", d.baseURL, instanteID)
}

// excerpt truncates content for email bodies, rune-safe
func excerpt(content string) string {
	if utf8.RuneCountInString(content) <= excerptLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:excerptLen]) + "…"
}
