package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mangasync/internal/common"
	"github.com/dmitrijs2005/mangasync/internal/logging"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userKey         = "user"
	requestIDHeader = "X-Request-ID"
)

// AuthMiddleware resolves the bearer token into a user and stores it in the
// gin context. Requests without a valid token are rejected with 401 before
// any handler runs.
func AuthMiddleware(users Users, l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(common.AuthorizationHeaderName)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("missing authorization header"))
			return
		}

		token, ok := strings.CutPrefix(authHeader, common.BearerPrefix)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid authorization header format"))
			return
		}

		user, err := users.UserByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) {
				l.Debug(c.Request.Context(), "token rejected", "error", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid token"))
				return
			}
			l.Error(c.Request.Context(), "token lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal error"))
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))

		c.Next()

		l.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// RateLimit rejects requests over the per-IP budget with 429.
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody("too many requests"))
			return
		}
		c.Next()
	}
}
