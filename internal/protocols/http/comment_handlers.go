package http

import (
	"github.com/gin-gonic/gin"

	"diario/pkg/models"
)

// createComment posts a comment (or reply) on a public instante
func (s *Server) createComment(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(401, models.ErrorResponse("unauthorized"))
		return
	}

	instanteID := c.Param("id")
	if instanteID == "" {
		c.JSON(400, models.ErrorResponse("instante id is required"))
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("invalid request body"))
		return
	}

	comment, err := s.commentSvc.Create(c.Request.Context(), instanteID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(201, models.SuccessResponse("comment created successfully", comment))
}

// getCommentThread returns the threaded comment view of an instante.
// Public: moderation status never hides a comment here.
func (s *Server) getCommentThread(c *gin.Context) {
	instanteID := c.Param("id")
	if instanteID == "" {
		c.JSON(400, models.ErrorResponse("instante id is required"))
		return
	}

	thread, err := s.commentSvc.GetThread(c.Request.Context(), instanteID)
	if err != nil {
		respondError(c, err)
		return
	}
	if thread == nil {
		thread = []*models.ThreadedComment{}
	}

	c.JSON(200, models.SuccessResponse("", gin.H{"comments": thread}))
}

// updateComment replaces a comment's content; author only
func (s *Server) updateComment(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(401, models.ErrorResponse("unauthorized"))
		return
	}

	commentID := c.Param("id")
	if commentID == "" {
		c.JSON(400, models.ErrorResponse("comment id is required"))
		return
	}

	var req models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("invalid request body"))
		return
	}

	comment, err := s.commentSvc.Update(c.Request.Context(), commentID, userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("comment updated successfully", comment))
}

// deleteComment soft-deletes a comment; author only
func (s *Server) deleteComment(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(401, models.ErrorResponse("unauthorized"))
		return
	}

	commentID := c.Param("id")
	if commentID == "" {
		c.JSON(400, models.ErrorResponse("comment id is required"))
		return
	}

	if err := s.commentSvc.Delete(c.Request.Context(), commentID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("comment deleted successfully", nil))
}

// moderateComment assigns a moderation status. Allowed for global
// admins and for the owner of the instante the comment sits on.
func (s *Server) moderateComment(c *gin.Context) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(401, models.ErrorResponse("unauthorized"))
		return
	}

	commentID := c.Param("id")
	if commentID == "" {
		c.JSON(400, models.ErrorResponse("comment id is required"))
		return
	}

	var req models.ModerateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("invalid request body"))
		return
	}

	if err := s.commentSvc.Moderate(c.Request.Context(), commentID, user, req.Action); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("comment moderated successfully", nil))
}
