package services

import (
	"context"
	"testing"

	"motorent/internal/booking/status"
	"motorent/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestReportsServiceStatusSummary(t *testing.T) {
	conn, mock := newServiceMock(t)
	svc := ReportsService{Reservations: newReservationService(conn, nil)}

	mock.ExpectQuery(`FROM reservations r WHERE r.vendor_id = \? GROUP BY r.status`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "sum"}).
			AddRow("completed", 3, 27000).
			AddRow("confirmed", 2, 12000).
			AddRow("pending", 1, 3000).
			AddRow("cancelled", 4, 24000))

	// a vendor asking for another shop still only sees its own
	report, err := svc.StatusSummary(context.Background(), vendor2, ReportFilter{VendorID: 9})
	if err != nil {
		t.Fatalf("StatusSummary error: %v", err)
	}
	if len(report.Rows) != 6 {
		t.Fatalf("expected every status, got %d rows", len(report.Rows))
	}
	if report.Rows[0].Status != status.Pending || report.Rows[0].Label != "承認待ち" {
		t.Fatalf("rows must follow lifecycle order, got %+v", report.Rows[0])
	}
	if report.Rows[5].Status != status.NoShow || report.Rows[5].Count != 0 {
		t.Fatalf("missing statuses must be zero-filled, got %+v", report.Rows[5])
	}
	if report.Total != 10 || report.Revenue != 27000 || report.Upcoming != 15000 {
		t.Fatalf("unexpected totals %+v", report)
	}
}

func TestReportsServiceRejectsUnknownRole(t *testing.T) {
	svc := ReportsService{}
	if _, err := svc.StatusSummary(context.Background(), domain.Actor{Role: "guest"}, ReportFilter{}); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
