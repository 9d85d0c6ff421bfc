package handlers

import (
	"net/http"

	"motorent/internal/domain"
	"motorent/internal/services"
	"motorent/internal/utils"

	"github.com/gin-gonic/gin"
)

// GetStatusReport returns the per-status breakdown for ?from=&to= (and ?vendorId= for admins).
func GetStatusReport(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var (
		rf  services.ReportFilter
		err error
	)
	if rf.From, err = queryTime(c, "from", location()); err != nil {
		RespondDomainError(c, err)
		return
	}
	if rf.To, err = queryTime(c, "to", location()); err != nil {
		RespondDomainError(c, err)
		return
	}
	if actor.Role == domain.RoleAdmin && c.Query("vendorId") != "" {
		id, ok := utils.ParseID(c.Query("vendorId"))
		if !ok {
			RespondDomainError(c, domain.ValidationError{Field: "vendorId", Msg: "IDが正しくありません"})
			return
		}
		rf.VendorID = id
	}

	svc := services.ReportsService{Reservations: reservationService(c)}
	report, err := svc.StatusSummary(c.Request.Context(), actor, rf)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
