package http

import (
	"github.com/gin-gonic/gin"

	"diario/pkg/models"
)

// listPendingComments returns the moderation queue, newest first.
// Accepts ?instante_id= to narrow the queue to one entry.
func (s *Server) listPendingComments(c *gin.Context) {
	instanteID := c.Query("instante_id")

	pending, err := s.commentSvc.ListPending(c.Request.Context(), instanteID)
	if err != nil {
		respondError(c, err)
		return
	}
	if pending == nil {
		pending = []*models.Comment{}
	}

	c.JSON(200, models.SuccessResponse("", gin.H{"comments": pending}))
}

// createInvite mints a new single-use registration code
func (s *Server) createInvite(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(401, models.ErrorResponse("unauthorized"))
		return
	}

	invite, err := s.inviteSvc.Generate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(201, models.SuccessResponse("invite created successfully", invite))
}

// listInvites returns every invite with its redemption state
func (s *Server) listInvites(c *gin.Context) {
	invites, err := s.inviteSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if invites == nil {
		invites = []models.Invite{}
	}

	c.JSON(200, models.SuccessResponse("", gin.H{"invites": invites}))
}

// updateUserRole changes a user's role between user and admin
func (s *Server) updateUserRole(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(400, models.ErrorResponse("user id is required"))
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("invalid request body"))
		return
	}

	if err := s.authSvc.UpdateUserRole(c.Request.Context(), userID, req.Role); err != nil {
		respondError(c, err)
		return
	}

	user, err := s.authSvc.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(500, models.ErrorResponse("role updated but failed to fetch user"))
		return
	}

	c.JSON(200, models.SuccessResponse("user role updated successfully", gin.H{"user": user}))
}
