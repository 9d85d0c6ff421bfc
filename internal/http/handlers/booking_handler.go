package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"motorent/internal/booking/status"
	"motorent/internal/booking/validation"
	"motorent/internal/domain"
	"motorent/internal/domain/models"
	"motorent/internal/utils"

	"github.com/gin-gonic/gin"
)

// bookingPayload accepts the booking form in camelCase or snake_case, with ids
// sent either as strings or numbers.
type bookingPayload struct {
	BikeID        Stringish `json:"bikeId"`
	BikeIDSnake   Stringish `json:"bike_id"`
	VendorID      Stringish `json:"vendorId"`
	VendorIDSnake Stringish `json:"vendor_id"`
	StartDatetime Stringish `json:"startDatetime"`
	StartSnake    Stringish `json:"start_datetime"`
	EndDatetime   Stringish `json:"endDatetime"`
	EndSnake      Stringish `json:"end_datetime"`
	Note          Stringish `json:"note"`
}

func firstNonEmpty(vals ...Stringish) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

func (p bookingPayload) form() validation.BookingForm {
	return validation.BookingForm{
		BikeID:        firstNonEmpty(p.BikeID, p.BikeIDSnake),
		VendorID:      firstNonEmpty(p.VendorID, p.VendorIDSnake),
		StartDatetime: firstNonEmpty(p.StartDatetime, p.StartSnake),
		EndDatetime:   firstNonEmpty(p.EndDatetime, p.EndSnake),
		Note:          p.Note.String(),
	}
}

type statusOption struct {
	Value status.Status `json:"value"`
	Label string        `json:"label"`
}

func statusOptions(list []status.Status) []statusOption {
	out := make([]statusOption, 0, len(list))
	for _, st := range list {
		out = append(out, statusOption{Value: st, Label: st.Label()})
	}
	return out
}

// POST /api/bookings/validate
func ValidateBooking(c *gin.Context) {
	var p bookingPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	c.JSON(http.StatusOK, reservationService(c).Validate(p.form()))
}

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var p bookingPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	res, err := reservationService(c).Create(c.Request.Context(), actor, p.form())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": res})
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := reservationService(c).Get(c.Request.Context(), actor, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": res})
}

// GET /api/bookings/:id/next-statuses
func GetBookingNextStatuses(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	next, err := reservationService(c).NextStatuses(c.Request.Context(), actor, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"next": statusOptions(next)})
}

type statusRequest struct {
	Status string `json:"status"`
}

// PATCH /api/bookings/:id/status
func UpdateBookingStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := reservationService(c).Transition(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": res})
}

// GET /api/bookings/:id/history
func GetBookingHistory(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	events, err := reservationService(c).History(c.Request.Context(), actor, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": events})
}

// ListBookings serves /me, /vendor and /admin listings. The service narrows the
// result to what the actor owns.
func ListBookings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	f, err := bookingFilter(c, actor)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	p := domain.Pagination{Page: f.Page, PageSize: f.PageSize}.Normalize()
	f.Page, f.PageSize = p.Page, p.PageSize

	list, total, err := reservationService(c).List(c.Request.Context(), actor, f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	p.Total = total
	c.JSON(http.StatusOK, gin.H{"bookings": list, "pagination": p})
}

// ExportBookings streams the filtered listing as CSV for the dashboards.
func ExportBookings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	f, err := bookingFilter(c, actor)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	f.Page, f.PageSize = 0, 0

	list, _, err := reservationService(c).List(c.Request.Context(), actor, f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	export := current().Export
	if export.Location == nil {
		export.Location = location()
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, list); err != nil {
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}
	utils.LogEventf(requestID(c), "export", "bookings_csv", "rows=%d actor=%s", len(list), actor)
	c.Header("Content-Disposition", `attachment; filename="`+export.ExportFilename(time.Now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func bookingFilter(c *gin.Context, actor domain.Actor) (models.ReservationFilter, error) {
	f, err := reservationFilter(c, location())
	if err != nil {
		return f, err
	}
	// only admins may pick a vendor; everyone else is scoped by the service
	if actor.Role == domain.RoleAdmin {
		if raw := c.Query("vendorId"); raw != "" {
			id, ok := utils.ParseID(raw)
			if !ok {
				return f, domain.ValidationError{Field: "vendorId", Msg: "IDが正しくありません"}
			}
			f.VendorID = id
		}
	}
	return f, nil
}
