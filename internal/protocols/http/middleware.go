package http

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"diario/internal/core"
	"diario/pkg/logger"
	"diario/pkg/models"
)

// AuthMiddleware validates the Bearer token and sets user context.
// The user row is re-read on every request, so role changes take
// effect without waiting for the token to expire.
func AuthMiddleware(authSvc core.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(401, models.ErrorResponse("missing or malformed authorization header"))
			c.Abort()
			return
		}

		user, err := authSvc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(401, models.ErrorResponse("unauthorized"))
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

// OptionalAuthMiddleware sets user context when a valid token is
// present and lets anonymous requests through. Used on reads whose
// visibility depends on who is asking.
func OptionalAuthMiddleware(authSvc core.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := authSvc.ValidateToken(c.Request.Context(), token); err == nil {
				c.Set("user_id", user.ID)
				c.Set("user", user)
			}
		}
		c.Next()
	}
}

// AdminMiddleware ensures the authenticated user has the admin role
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUser(c)
		if !exists {
			c.JSON(401, models.ErrorResponse("unauthorized"))
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			c.JSON(403, models.ErrorResponse("forbidden: admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetUser retrieves the full authenticated user from the context
func GetUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	u, ok := user.(*models.User)
	return u, ok
}

// requestLogger logs each request through the structured logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.HTTP(
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			int(time.Since(start).Milliseconds()),
		)
	}
}

// ipRateLimiter hands out one token bucket per client IP
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(perMinute, burst int) *ipRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = perMinute
	}
	rl := &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
	go rl.cleanup()
	return rl
}

func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// cleanup drops buckets idle long enough to have fully refilled
func (rl *ipRateLimiter) cleanup() {
	for {
		time.Sleep(3 * time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// rateLimitMiddleware throttles comment creation per client IP
func rateLimitMiddleware(rl *ipRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.JSON(429, models.ErrorResponse("too many comments, slow down"))
			c.Abort()
			return
		}
		c.Next()
	}
}
