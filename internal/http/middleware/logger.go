package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger prints minimal request log including request_id and the acting user.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		actor := "-"
		if a, ok := GetActor(c); ok {
			actor = a.String()
		}

		log.Printf("[HTTP] request_id=%s method=%s path=%s status=%d latency_ms=%.3f ip=%s actor=%s",
			GetRequestID(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			float64(latency.Microseconds())/1000.0,
			c.ClientIP(),
			actor,
		)
	}
}

// LogError records an unexpected handler error against the request.
func LogError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	log.Printf("[HTTP] request_id=%s path=%s error=%v", GetRequestID(c), c.Request.URL.Path, err)
}
