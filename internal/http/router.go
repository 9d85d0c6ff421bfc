package api

import (
	"log"
	stdhttp "net/http"

	"motorent/internal/domain"
	h "motorent/internal/http/handlers"
	"motorent/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Options carries what the router needs beyond the handler deps.
type Options struct {
	CORSOrigins []string
	Tokens      middleware.TokenParser
}

func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(opts.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	authed := middleware.Auth(opts.Tokens)
	customer := middleware.RequireRoles(domain.RoleCustomer)
	vendor := middleware.RequireRoles(domain.RoleVendor)
	admin := middleware.RequireRoles(domain.RoleAdmin)
	anyRole := middleware.RequireRoles(domain.RoleCustomer, domain.RoleVendor, domain.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)
		api.GET("/statuses", h.Statuses)

		api.POST("/auth/login", h.Login)
		api.GET("/auth/me", authed, anyRole, h.Me)

		api.GET("/bikes", h.GetBikes)
		api.GET("/bikes/:id", h.GetBike)
		api.GET("/bikes/:id/availability", h.GetBikeAvailability)

		bookings := api.Group("/bookings")
		bookings.POST("/validate", h.ValidateBooking)
		bookings.POST("", authed, customer, h.CreateBooking)

		booking := bookings.Group("/:id", authed, anyRole)
		booking.GET("", h.GetBooking)
		booking.GET("/next-statuses", h.GetBookingNextStatuses)
		booking.PATCH("/status", h.UpdateBookingStatus)
		booking.GET("/history", h.GetBookingHistory)
		booking.GET("/receipt", h.GetBookingReceipt)

		api.GET("/me/bookings", authed, customer, h.ListBookings)

		vendorGroup := api.Group("/vendor", authed, vendor)
		vendorGroup.GET("/bookings", h.ListBookings)
		vendorGroup.GET("/bookings/export", h.ExportBookings)
		vendorGroup.GET("/reports/status", h.GetStatusReport)
		vendorGroup.PATCH("/bikes/:id/status", h.UpdateBikeStatus)

		adminGroup := api.Group("/admin", authed, admin)
		adminGroup.GET("/bookings", h.ListBookings)
		adminGroup.GET("/bookings/export", h.ExportBookings)
		adminGroup.GET("/reports/status", h.GetStatusReport)
		adminGroup.PATCH("/bikes/:id/status", h.UpdateBikeStatus)
	}

	h.SetRouter(r)
	return r
}
