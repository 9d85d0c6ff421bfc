package handlers

import (
	"errors"
	"net/http"
	"sync"

	"motorent/internal/booking/status"
	intconfig "motorent/internal/config"
	"motorent/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func requestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "motorent api running"})
}

func DBCheck(c *gin.Context) {
	err := intconfig.EnsureDB(c.Request.Context(), current().Reservations.DB)
	switch {
	case errors.Is(err, intconfig.ErrNotConnected):
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "データベースに接続されていません", nil)
		return
	case err != nil:
		middleware.LogError(c, err)
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "データベースに接続できません", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "router_not_ready", "router not ready", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method": rt.Method,
			"path":   rt.Path,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}

type statusInfo struct {
	Value    status.Status   `json:"value"`
	Label    string          `json:"label"`
	Terminal bool            `json:"terminal"`
	Next     []status.Status `json:"next"`
}

// Statuses returns the transition table with display labels, in lifecycle order.
func Statuses(c *gin.Context) {
	table := status.Table()
	all := status.All()
	out := make([]statusInfo, 0, len(all))
	for _, st := range all {
		out = append(out, statusInfo{
			Value:    st,
			Label:    st.Label(),
			Terminal: st.IsTerminal(),
			Next:     table[st],
		})
	}
	c.JSON(http.StatusOK, gin.H{"statuses": out})
}
