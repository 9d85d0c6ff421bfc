package handlers

import (
	"sync"
	"time"

	"motorent/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps are the services the handlers call. They are wired once at startup.
type Deps struct {
	Reservations services.ReservationService
	Auth         services.AuthService
	Docs         services.DocsService
	Export       services.ExportService
	Location     *time.Location
}

var (
	depsMu sync.RWMutex
	deps   Deps
)

func Configure(d Deps) {
	depsMu.Lock()
	defer depsMu.Unlock()
	deps = d
}

func current() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

func reservationService(c *gin.Context) services.ReservationService {
	return current().Reservations.WithRequestID(requestID(c))
}

func authService(c *gin.Context) services.AuthService {
	svc := current().Auth
	svc.RequestID = requestID(c)
	return svc
}

func docsService(c *gin.Context) services.DocsService {
	d := current()
	svc := d.Docs
	svc.Reservations = d.Reservations
	svc.RequestID = requestID(c)
	return svc
}

func location() *time.Location {
	return current().Location
}
