package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"motorent/internal/booking/status"
	intconfig "motorent/internal/config"
	"motorent/internal/domain"
	"motorent/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var reservationColumns = []string{
	"id", "customer_id", "bike_id", "vendor_id",
	"start_datetime", "end_datetime", "status", "total_price",
	"note", "created_at", "updated_at",
	"bike_name", "customer_name", "customer_email", "customer_phone", "vendor_name",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func sampleReservation() models.Reservation {
	start := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)
	return models.Reservation{
		CustomerID:    7,
		BikeID:        3,
		VendorID:      2,
		StartDatetime: start,
		EndDatetime:   start.Add(4 * time.Hour),
		Status:        status.Pending,
		TotalPrice:    6000,
		CreatedAt:     start.Add(-time.Hour),
		UpdatedAt:     start.Add(-time.Hour),
	}
}

func TestReservationCreateMySQL(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewReservationRepository(conn, intconfig.DriverMySQL)

	res := sampleReservation()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(int64(7), int64(3), int64(2), res.StartDatetime, res.EndDatetime, "pending", int64(6000), nil, res.CreatedAt, res.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(42, 1))

	if err := repo.Create(context.Background(), &res); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if res.ID != 42 {
		t.Fatalf("expected id 42, got %d", res.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReservationCreatePostgresUsesReturning(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewReservationRepository(conn, intconfig.DriverPostgres)

	res := sampleReservation()
	mock.ExpectQuery(`INSERT INTO reservations .*VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10\) RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	if err := repo.Create(context.Background(), &res); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if res.ID != 9 {
		t.Fatalf("expected id 9, got %d", res.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReservationGetByID(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewReservationRepository(conn, intconfig.DriverMySQL)

	res := sampleReservation()
	mock.ExpectQuery("FROM reservations r").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(reservationColumns).AddRow(
			5, 7, 3, 2, res.StartDatetime, res.EndDatetime, "confirmed", 6000,
			"helmet x2", res.CreatedAt, res.UpdatedAt,
			"CB400", "Taro", "taro@example.com", "+8190", "Shibuya Moto",
		))

	got, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Status != status.Confirmed || got.BikeName != "CB400" || got.Note != "helmet x2" {
		t.Fatalf("unexpected reservation %+v", got)
	}
}

func TestReservationGetByIDNotFound(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewReservationRepository(conn, intconfig.DriverMySQL)

	mock.ExpectQuery("FROM reservations r").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(reservationColumns))

	_, err := repo.GetByID(context.Background(), 5)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReservationUpdateStatusCompareAndSet(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewReservationRepository(conn, intconfig.DriverMySQL)
	at := time.Now()

	mock.ExpectExec(`UPDATE reservations SET status = \?, updated_at = \? WHERE id = \? AND status = \?`).
		WithArgs("confirmed", at, int64(5), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE reservations").
		WithArgs("confirmed", at, int64(5), "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateStatus(context.Background(), 5, status.Pending, status.Confirmed, at); err != nil {
		t.Fatalf("first update error: %v", err)
	}
	err := repo.UpdateStatus(context.Background(), 5, status.Pending, status.Confirmed, at)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict on lost race, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReservationCountOverlapping(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewReservationRepository(conn, intconfig.DriverMySQL)
	start := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations`).
		WithArgs(int64(3), int64(0), "pending", "confirmed", "in_use", end, start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountOverlapping(context.Background(), 3, start, end, 0)
	if err != nil {
		t.Fatalf("CountOverlapping error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 overlap, got %d", n)
	}
}

func TestReservationListFilterAndPaging(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewReservationRepository(conn, intconfig.DriverMySQL)

	mock.ExpectQuery(`WHERE r.vendor_id = \? AND r.status IN \(\?,\?\) ORDER BY .* LIMIT \? OFFSET \?`).
		WithArgs(int64(2), "pending", "confirmed", 20, 20).
		WillReturnRows(sqlmock.NewRows(reservationColumns))

	list, err := repo.List(context.Background(), models.ReservationFilter{
		VendorID: 2,
		Statuses: []status.Status{status.Pending, status.Confirmed},
		Page:     2,
		PageSize: 20,
	})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReservationListStalePending(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewReservationRepository(conn, intconfig.DriverPostgres)
	createdBefore := time.Now().Add(-24 * time.Hour)
	now := time.Now()

	mock.ExpectQuery(`WHERE status = \$1 AND \(created_at < \$2 OR start_datetime < \$3\)`).
		WithArgs("pending", createdBefore, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4).AddRow(8))

	ids, err := repo.ListStalePending(context.Background(), createdBefore, now)
	if err != nil {
		t.Fatalf("ListStalePending error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 8 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestReservationSummarizeByStatus(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewReservationRepository(conn, intconfig.DriverPostgres)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT r.status, COUNT\(\*\), COALESCE\(SUM\(r.total_price\), 0\) FROM reservations r WHERE r.vendor_id = \$1 AND r.start_datetime >= \$2 GROUP BY r.status`).
		WithArgs(int64(2), from).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "sum"}).
			AddRow("completed", 3, 27000).
			AddRow("cancelled", 1, 6000))

	rows, err := repo.SummarizeByStatus(context.Background(), models.ReservationFilter{VendorID: 2, From: from, PageSize: 10})
	if err != nil {
		t.Fatalf("SummarizeByStatus error: %v", err)
	}
	if len(rows) != 2 || rows[0].Status != status.Completed || rows[0].Count != 3 || rows[0].Revenue != 27000 {
		t.Fatalf("unexpected summary %+v", rows)
	}
}
