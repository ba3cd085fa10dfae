package http

import (
	"github.com/gin-gonic/gin"

	"diario/pkg/models"
)

// subscribeNewsletter starts the double opt-in flow. The response is
// the same whether the address was new or already known, so the
// endpoint leaks nothing about the subscriber list.
func (s *Server) subscribeNewsletter(c *gin.Context) {
	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("invalid request body"))
		return
	}

	if err := s.newsletterSvc.Subscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(202, models.SuccessResponse("revisa tu correo para confirmar la suscripción", nil))
}

// confirmNewsletter redeems the emailed confirmation token
func (s *Server) confirmNewsletter(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(400, models.ErrorResponse("token is required"))
		return
	}

	if err := s.newsletterSvc.Confirm(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("suscripción confirmada", nil))
}

// unsubscribeNewsletter redeems an opt-out token from a newsletter footer
func (s *Server) unsubscribeNewsletter(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(400, models.ErrorResponse("token is required"))
		return
	}

	if err := s.newsletterSvc.Unsubscribe(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("suscripción cancelada", nil))
}

// sendNewsletterIssue mails an issue to every confirmed subscriber
func (s *Server) sendNewsletterIssue(c *gin.Context) {
	var req models.SendIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.ErrorResponse("subject and body are required"))
		return
	}

	sent, err := s.newsletterSvc.SendIssue(c.Request.Context(), req.Subject, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, models.SuccessResponse("newsletter issue sent", gin.H{"sent": sent}))
}
