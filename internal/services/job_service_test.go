package services

import (
	"context"
	"testing"
	"time"

	"motorent/internal/booking/status"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestJobServiceExpireStalePending(t *testing.T) {
	conn, mock := newServiceMock(t)
	notifier := &recordingNotifier{}
	jobs := &JobService{Reservations: newReservationService(conn, notifier), PendingTTL: 24 * time.Hour}
	now := fixedNow.UTC()

	mock.ExpectQuery(`SELECT id FROM reservations WHERE status = \? AND \(created_at < \? OR start_datetime < \?\)`).
		WithArgs("pending", now.Add(-24*time.Hour), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4).AddRow(8))

	mock.ExpectQuery("FROM reservations r").WithArgs(int64(4)).WillReturnRows(reservationRow(4, status.Pending))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reservations").WithArgs("cancelled", now, int64(4), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reservation_status_events").
		WithArgs(int64(4), "pending", "cancelled", "system", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// confirmed by the vendor after the scan
	mock.ExpectQuery("FROM reservations r").WithArgs(int64(8)).WillReturnRows(reservationRow(8, status.Confirmed))

	res, err := jobs.ExpireStalePending(context.Background())
	if err != nil {
		t.Fatalf("ExpireStalePending error: %v", err)
	}
	if res.Moved != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(notifier.changes) != 1 || notifier.changes[0].to != status.Cancelled {
		t.Fatalf("unexpected notifications %+v", notifier.changes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobServiceMarkNoShows(t *testing.T) {
	conn, mock := newServiceMock(t)
	jobs := &JobService{Reservations: newReservationService(conn, nil), NoShowGrace: 2 * time.Hour}
	now := fixedNow.UTC()

	mock.ExpectQuery(`SELECT id FROM reservations WHERE status = \? AND start_datetime < \?`).
		WithArgs("confirmed", now.Add(-2*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery("FROM reservations r").WithArgs(int64(5)).WillReturnRows(reservationRow(5, status.Confirmed))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reservations").WithArgs("no_show", now, int64(5), "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	res, err := jobs.MarkNoShows(context.Background())
	if err != nil {
		t.Fatalf("MarkNoShows error: %v", err)
	}
	if res.Moved != 0 || res.Skipped != 1 {
		t.Fatalf("lost race should be skipped, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobServiceStartRejectsBadSchedule(t *testing.T) {
	jobs := &JobService{}
	if err := jobs.Start("not a schedule"); err == nil {
		t.Fatalf("expected schedule parse error")
	}
	jobs.Stop()
}

func TestJobServiceStartStop(t *testing.T) {
	jobs := &JobService{}
	if err := jobs.Start("@every 1h"); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := jobs.Start("@every 1h"); err != nil {
		t.Fatalf("second Start should be a no-op: %v", err)
	}
	jobs.Stop()
	jobs.Stop()
}
