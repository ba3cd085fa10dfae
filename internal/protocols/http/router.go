package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"diario/internal/core"
	"diario/internal/protocols/websocket"
	"diario/pkg/config"
	"diario/pkg/models"
)

// Server manages the HTTP REST API
type Server struct {
	router        *gin.Engine
	config        *config.Config
	authSvc       core.AuthService
	instanteSvc   core.InstanteService
	commentSvc    core.CommentService
	newsletterSvc core.NewsletterService
	inviteSvc     core.InviteService
	wsHandler     *websocket.Handler
	commentRL     *ipRateLimiter
}

// NewServer creates a new HTTP server with all handlers
func NewServer(
	cfg *config.Config,
	authSvc core.AuthService,
	instanteSvc core.InstanteService,
	commentSvc core.CommentService,
	newsletterSvc core.NewsletterService,
	inviteSvc core.InviteService,
	wsHandler *websocket.Handler,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	s := &Server{
		router:        router,
		config:        cfg,
		authSvc:       authSvc,
		instanteSvc:   instanteSvc,
		commentSvc:    commentSvc,
		newsletterSvc: newsletterSvc,
		inviteSvc:     inviteSvc,
		wsHandler:     wsHandler,
		commentRL:     newIPRateLimiter(cfg.RateLimit.CommentsPerMinute, cfg.RateLimit.Burst),
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", s.register)
			auth.POST("/login", s.login)
		}

		// Public reads. Visibility of a single instante depends on the
		// caller, so token parsing is optional there.
		v1.GET("/instantes/:id", OptionalAuthMiddleware(s.authSvc), s.getInstante)
		v1.GET("/instantes/:id/comments", s.getCommentThread)
		v1.GET("/users/:username/instantes", s.listUserBlog)
		v1.GET("/users/:username/stats", s.getUserStats)

		// Newsletter double opt-in (public; links arrive by email)
		newsletter := v1.Group("/newsletter")
		{
			newsletter.POST("/subscribe", s.subscribeNewsletter)
			newsletter.GET("/confirm", s.confirmNewsletter)
			newsletter.GET("/unsubscribe", s.unsubscribeNewsletter)
		}

		// Authenticated dashboard routes
		protected := v1.Group("", AuthMiddleware(s.authSvc))
		{
			protected.GET("/instantes", s.listOwnInstantes)
			protected.POST("/instantes", s.createInstante)
			protected.PUT("/instantes/:id", s.updateInstante)
			protected.DELETE("/instantes/:id", s.deleteInstante)

			protected.POST("/instantes/:id/comments", rateLimitMiddleware(s.commentRL), s.createComment)
			protected.PATCH("/comments/:id", s.updateComment)
			protected.DELETE("/comments/:id", s.deleteComment)
			protected.POST("/comments/:id/moderate", s.moderateComment)
		}

		// Admin routes
		admin := v1.Group("/admin", AuthMiddleware(s.authSvc), AdminMiddleware())
		{
			admin.GET("/comments/pending", s.listPendingComments)
			admin.POST("/invites", s.createInvite)
			admin.GET("/invites", s.listInvites)
			admin.PUT("/users/:id/role", s.updateUserRole)
			admin.POST("/newsletter/send", s.sendNewsletterIssue)
		}
	}

	// Live comment stream (public, read-only)
	ws := s.router.Group("/ws")
	{
		ws.GET("/instantes/:id/comments", s.wsHandler.StreamComments)
		ws.GET("/instantes/:id/status", s.wsHandler.RoomStatus)
	}
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router returns the gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// respondError maps a service error onto the JSON envelope. Internal
// failures get a generic message so storage details stay out of
// responses.
func respondError(c *gin.Context, err error) {
	status := models.HTTPStatus(err)
	msg := err.Error()
	if status == 500 {
		msg = "internal server error"
	}
	c.JSON(status, models.ErrorResponse(msg))
}
