package server

import (
	"strings"
	"time"

	auth "voicebid/internal/authService"
	"voicebid/services/auction/helpers"
	"voicebid/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// AuthRequired validates the bearer token and stores the caller's profile in
// the request context under helpers.ContextProfileKey.
func AuthRequired(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))

		profile, err := authService.Authenticate(token)
		if err != nil {
			utils.JSONError(c, 401, err, "not authenticated")
			utils.Warn("AuthRequired: rejected request", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Abort()
			return
		}

		c.Set(helpers.ContextProfileKey, profile)
		c.Next()
	}
}
