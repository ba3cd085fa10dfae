package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"diario/pkg/models"
)

// createInstante creates a journal entry for the authenticated user
func (s *Server) createInstante(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(401, models.ErrorResponse("unauthorized"))
		return
	}

	var req models.CreateInstanteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("invalid request body"))
		return
	}

	instante, err := s.instanteSvc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(201, models.SuccessResponse("instante created successfully", instante))
}

// getInstante returns one entry, honoring its visibility. Anonymous
// callers and non-owners see private entries as missing.
func (s *Server) getInstante(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(400, models.ErrorResponse("instante id is required"))
		return
	}

	callerID, _ := GetUserID(c) // empty for anonymous readers

	instante, err := s.instanteSvc.Get(c.Request.Context(), id, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("", instante))
}

// updateInstante applies a partial edit to an owned entry
func (s *Server) updateInstante(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(401, models.ErrorResponse("unauthorized"))
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(400, models.ErrorResponse("instante id is required"))
		return
	}

	var req models.UpdateInstanteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("invalid request body"))
		return
	}

	instante, err := s.instanteSvc.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("instante updated successfully", instante))
}

// deleteInstante removes an owned entry along with its comments
func (s *Server) deleteInstante(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(401, models.ErrorResponse("unauthorized"))
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(400, models.ErrorResponse("instante id is required"))
		return
	}

	if err := s.instanteSvc.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("instante deleted successfully", nil))
}

// listOwnInstantes returns the caller's dashboard list, drafts included
func (s *Server) listOwnInstantes(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(401, models.ErrorResponse("unauthorized"))
		return
	}

	limit, offset := parsePagination(c)

	result, err := s.instanteSvc.ListOwn(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("", result))
}

// listUserBlog returns another user's public entries by username
func (s *Server) listUserBlog(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(400, models.ErrorResponse("username is required"))
		return
	}

	limit, offset := parsePagination(c)

	result, err := s.instanteSvc.ListPublicBlog(c.Request.Context(), username, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("", result))
}

// getUserStats returns per-life-area counts for a user's public blog
func (s *Server) getUserStats(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(400, models.ErrorResponse("username is required"))
		return
	}

	stats, err := s.instanteSvc.PublicStats(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("", gin.H{"areas": stats}))
}

// parsePagination reads page/limit query params with sane bounds
func parsePagination(c *gin.Context) (limit, offset int) {
	page := 1
	limit = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	return limit, (page - 1) * limit
}
