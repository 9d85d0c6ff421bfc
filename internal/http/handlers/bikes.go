package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"motorent/internal/domain"
	"motorent/internal/domain/models"
	"motorent/internal/services"
	"motorent/internal/utils"

	"github.com/gin-gonic/gin"
)

type bikeStatusPayload struct {
	Status Stringish `json:"status"`
}

func bikeService(c *gin.Context) services.BikeService {
	return services.BikeService{Reservations: reservationService(c)}
}

// GET /api/bikes?vendorId=2&status=available&q=CB&page=1&pageSize=20
func GetBikes(c *gin.Context) {
	f := models.BikeFilter{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Query:  utils.NormalizeInput(c.Query("q")),
	}
	if raw := c.Query("vendorId"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			RespondDomainError(c, domain.ValidationError{Field: "vendorId", Msg: "IDが正しくありません"})
			return
		}
		f.VendorID = id
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.PageSize, _ = strconv.Atoi(c.Query("pageSize"))

	list, err := bikeService(c).Catalog(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bikes": list})
}

// GET /api/bikes/:id
func GetBike(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := bikeService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/bikes/:id/availability?start=2026-10-21T10:00&end=2026-10-21T14:00
func GetBikeAvailability(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	start, err := queryTime(c, "start", location())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	end, err := queryTime(c, "end", location())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out, err := bikeService(c).Availability(c.Request.Context(), id, start, end)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PATCH /api/vendor/bikes/:id/status, PATCH /api/admin/bikes/:id/status
func UpdateBikeStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload bikeStatusPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	st := strings.ToLower(strings.TrimSpace(payload.Status.String()))
	b, err := bikeService(c).SetStatus(c.Request.Context(), actor, id, st)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
