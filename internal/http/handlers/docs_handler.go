package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/bookings/:id/receipt
func GetBookingReceipt(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	pdf, filename, err := docsService(c).GenerateReceipt(c.Request.Context(), actor, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
