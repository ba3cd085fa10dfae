package http

import (
	"github.com/gin-gonic/gin"

	"diario/pkg/models"
)

// register handles user registration. When invites are required the
// request must carry an unused code.
func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		c.JSON(400, models.ErrorResponse("username and password are required"))
		return
	}

	user, err := s.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(201, models.SuccessResponse("user registered successfully", gin.H{"user": user}))
}

// login handles user authentication
func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		c.JSON(400, models.ErrorResponse("username and password are required"))
		return
	}

	resp, err := s.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(401, models.ErrorResponse("invalid credentials"))
		return
	}

	c.JSON(200, models.SuccessResponse("login successful", resp))
}
