package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireRoles only lets through actors whose role is listed. It must run after Auth.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetString(roleKey)))
		if role == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "ログインが必要です")
			return
		}
		if _, ok := allowed[role]; !ok {
			abortJSON(c, http.StatusForbidden, "forbidden", "この操作を行う権限がありません")
			return
		}
		c.Next()
	}
}
