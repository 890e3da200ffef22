package middleware

import (
	"net/http"
	"strings"

	"github.com/contactbook/api/internal/constants"
	"github.com/contactbook/api/internal/service"
	ctxutil "github.com/contactbook/api/pkg/context"
	"github.com/contactbook/api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	tokens   *service.TokenService
	sessions *service.SessionCache
}

func NewAuthMiddleware(tokens *service.TokenService, sessions *service.SessionCache) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		sessions: sessions,
	}
}

// RequireAuth validates the bearer access token, resolves the account
// through the session cache and stores it in the gin context. Every
// failure gets the same 401 body so the response leaks nothing about
// which check failed.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.GetLogger().Warn("Missing Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortUnauthorized(c)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.GetLogger().Warn("Invalid Authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortUnauthorized(c)
			return
		}

		email, err := m.tokens.Decode(tokenParts[1], service.ScopeAccess)
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired access token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			abortUnauthorized(c)
			return
		}

		user, err := m.sessions.Resolve(c.Request.Context(), email)
		if err != nil {
			logger.GetLogger().Warn("Failed to resolve authenticated user",
				zap.String("path", c.Request.URL.Path),
				zap.String("email", email),
				zap.Error(err))
			abortUnauthorized(c)
			return
		}

		ctx := ctxutil.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Set(constants.GinKeyCurrentUser, user)
		c.Set(constants.GinKeyUserID, user.ID)
		c.Set(constants.GinKeyUserEmail, user.Email)

		logger.GetLogger().Debug("User authenticated successfully",
			zap.Uint("user_id", user.ID),
			zap.String("email", user.Email),
			zap.String("path", c.Request.URL.Path))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"message": constants.MsgUnauthorized,
	})
	c.Abort()
}
