package middleware

import (
	"net/http"
	"strings"

	"motorent/internal/domain"
	"motorent/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	actorKey = "actor"
	roleKey  = "userRole"
)

// TokenParser validates a bearer token.
type TokenParser interface {
	ParseToken(raw string) (services.Claims, error)
}

// Auth requires a valid bearer token and stores the actor on the context.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "ログインが必要です")
			return
		}
		claims, err := parser.ParseToken(raw)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "認証トークンが無効です")
			return
		}
		actor := claims.Actor()
		c.Set(actorKey, actor)
		c.Set(roleKey, actor.Role)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// GetActor returns the authenticated actor set by Auth.
func GetActor(c *gin.Context) (domain.Actor, bool) {
	if c == nil {
		return domain.Actor{}, false
	}
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	a, ok := v.(domain.Actor)
	return a, ok
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"code":       code,
		"message":    message,
		"request_id": GetRequestID(c),
	})
}
