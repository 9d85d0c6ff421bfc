package services

import (
	"context"
	"time"

	"motorent/internal/booking/status"
	"motorent/internal/domain"
	"motorent/internal/domain/models"
)

// ReportFilter bounds a dashboard report by reservation start time.
type ReportFilter struct {
	VendorID int64
	From     time.Time
	To       time.Time
}

// StatusReport is the per-status breakdown shown on the vendor and admin dashboards.
type StatusReport struct {
	Rows     []models.StatusSummary `json:"rows"`
	Total    int                    `json:"total"`
	Revenue  int64                  `json:"revenue"`
	Upcoming int64                  `json:"upcoming"`
}

type ReportsService struct {
	Reservations ReservationService
}

// StatusSummary returns every status in lifecycle order, zero-filled. Revenue
// counts completed rentals; Upcoming is what pending, confirmed and in-use
// reservations will bring in.
func (s ReportsService) StatusSummary(ctx context.Context, actor domain.Actor, rf ReportFilter) (StatusReport, error) {
	f, err := scopeFilter(actor, models.ReservationFilter{VendorID: rf.VendorID, From: rf.From, To: rf.To})
	if err != nil {
		return StatusReport{}, err
	}
	rows, err := s.Reservations.reservations().SummarizeByStatus(ctx, f)
	if err != nil {
		return StatusReport{}, domain.InternalError{Err: err}
	}

	byStatus := make(map[status.Status]models.StatusSummary, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r
	}

	var report StatusReport
	for _, st := range status.All() {
		row := byStatus[st]
		row.Status = st
		row.Label = st.Label()
		report.Rows = append(report.Rows, row)
		report.Total += row.Count
		switch st {
		case status.Completed:
			report.Revenue += row.Revenue
		case status.Pending, status.Confirmed, status.InUse:
			report.Upcoming += row.Revenue
		}
	}
	return report, nil
}
