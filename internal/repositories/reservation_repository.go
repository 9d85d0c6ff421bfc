package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"motorent/internal/booking/status"
	intconfig "motorent/internal/config"
	intdb "motorent/internal/db"
	"motorent/internal/domain"
	"motorent/internal/domain/models"
)

// activeStatuses hold a bike for their time window.
var activeStatuses = []status.Status{status.Pending, status.Confirmed, status.InUse}

type ReservationRepository struct {
	base
}

func NewReservationRepository(conn *sql.DB, driver string) ReservationRepository {
	return ReservationRepository{base{DB: conn, Driver: driver}}
}

// WithTx returns a copy bound to tx.
func (r ReservationRepository) WithTx(tx *sql.Tx) ReservationRepository {
	r.tx = tx
	return r
}

const reservationSelect = `
	SELECT
		r.id, r.customer_id, r.bike_id, r.vendor_id,
		r.start_datetime, r.end_datetime, r.status, r.total_price,
		COALESCE(r.note, ''), r.created_at, r.updated_at,
		COALESCE(b.name, ''), COALESCE(u.name, ''), COALESCE(u.email, ''),
		COALESCE(u.phone, ''), COALESCE(v.name, '')
	FROM reservations r
	LEFT JOIN bikes b ON b.id = r.bike_id
	LEFT JOIN users u ON u.id = r.customer_id
	LEFT JOIN vendors v ON v.id = r.vendor_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (models.Reservation, error) {
	var (
		res models.Reservation
		st  string
	)
	err := s.Scan(
		&res.ID, &res.CustomerID, &res.BikeID, &res.VendorID,
		&res.StartDatetime, &res.EndDatetime, &st, &res.TotalPrice,
		&res.Note, &res.CreatedAt, &res.UpdatedAt,
		&res.BikeName, &res.CustomerName, &res.CustomerEmail,
		&res.CustomerPhone, &res.VendorName,
	)
	res.Status = status.Status(st)
	return res, err
}

// Create inserts res and fills its ID.
func (r ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	query := `
		INSERT INTO reservations
			(customer_id, bike_id, vendor_id, start_datetime, end_datetime, status, total_price, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{
		res.CustomerID, res.BikeID, res.VendorID,
		res.StartDatetime, res.EndDatetime, string(res.Status), res.TotalPrice,
		intdb.NullIfEmpty(res.Note), res.CreatedAt, res.UpdatedAt,
	}

	if r.usesReturning() {
		if err := r.conn().QueryRowContext(ctx, r.q(query+" RETURNING id"), args...).Scan(&res.ID); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		return nil
	}

	result, err := r.conn().ExecContext(ctx, r.q(query), args...)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "reservation", Err: err}
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert reservation id: %w", err)
	}
	res.ID = id
	return nil
}

func (r ReservationRepository) usesReturning() bool {
	return r.driver() == intconfig.DriverPostgres
}

func (r ReservationRepository) GetByID(ctx context.Context, id int64) (models.Reservation, error) {
	if id <= 0 {
		return models.Reservation{}, domain.ValidationError{Field: "id", Msg: "invalid reservation id"}
	}
	row := r.conn().QueryRowContext(ctx, r.q(reservationSelect+" WHERE r.id = ?"), id)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reservation{}, domain.NotFoundError{Resource: "reservation", Err: err}
		}
		return models.Reservation{}, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return res, nil
}

func buildFilter(f models.ReservationFilter) (string, []any) {
	clauses := []string{}
	args := []any{}
	if f.VendorID > 0 {
		clauses = append(clauses, "r.vendor_id = ?")
		args = append(args, f.VendorID)
	}
	if f.CustomerID > 0 {
		clauses = append(clauses, "r.customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.BikeID > 0 {
		clauses = append(clauses, "r.bike_id = ?")
		args = append(args, f.BikeID)
	}
	if len(f.Statuses) > 0 {
		clauses = append(clauses, "r.status IN ("+intdb.Placeholders(len(f.Statuses))+")")
		for _, st := range f.Statuses {
			args = append(args, string(st))
		}
	}
	if !f.From.IsZero() {
		clauses = append(clauses, "r.start_datetime >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		clauses = append(clauses, "r.start_datetime < ?")
		args = append(args, f.To)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns reservations newest start first. PageSize 0 returns everything.
func (r ReservationRepository) List(ctx context.Context, f models.ReservationFilter) ([]models.Reservation, error) {
	where, args := buildFilter(f)
	query := reservationSelect + where + " ORDER BY r.start_datetime DESC, r.id DESC"
	if f.PageSize > 0 {
		p := domain.Pagination{Page: f.Page, PageSize: f.PageSize}.Normalize()
		query += " LIMIT ? OFFSET ?"
		args = append(args, p.PageSize, p.Offset())
	}

	rows, err := r.conn().QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	list := []models.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return list, nil
}

func (r ReservationRepository) Count(ctx context.Context, f models.ReservationFilter) (int, error) {
	where, args := buildFilter(f)
	var n int
	if err := r.conn().QueryRowContext(ctx, r.q("SELECT COUNT(*) FROM reservations r"+where), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return n, nil
}

// UpdateStatus moves a reservation only if it is still in from. A lost race
// surfaces as a ConflictError.
func (r ReservationRepository) UpdateStatus(ctx context.Context, id int64, from, to status.Status, at time.Time) error {
	result, err := r.conn().ExecContext(ctx,
		r.q(`UPDATE reservations SET status = ?, updated_at = ? WHERE id = ? AND status = ?`),
		string(to), at, id, string(from),
	)
	if err != nil {
		return fmt.Errorf("update reservation %d status: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation %d status: %w", id, err)
	}
	if n == 0 {
		return domain.ConflictError{Resource: "reservation", Msg: fmt.Sprintf("status is no longer %s", from)}
	}
	return nil
}

// CountOverlapping counts active reservations of bikeID intersecting [start, end).
func (r ReservationRepository) CountOverlapping(ctx context.Context, bikeID int64, start, end time.Time, excludeID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM reservations
		WHERE bike_id = ?
		  AND id <> ?
		  AND status IN (` + intdb.Placeholders(len(activeStatuses)) + `)
		  AND start_datetime < ?
		  AND end_datetime > ?`
	args := []any{bikeID, excludeID}
	for _, st := range activeStatuses {
		args = append(args, string(st))
	}
	args = append(args, end, start)

	var n int
	if err := r.conn().QueryRowContext(ctx, r.q(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count overlapping reservations: %w", err)
	}
	return n, nil
}

// ListStalePending returns pending reservations created before createdBefore or
// whose start has already passed startBefore.
func (r ReservationRepository) ListStalePending(ctx context.Context, createdBefore, startBefore time.Time) ([]int64, error) {
	return r.listIDs(ctx,
		`SELECT id FROM reservations WHERE status = ? AND (created_at < ? OR start_datetime < ?) ORDER BY id`,
		string(status.Pending), createdBefore, startBefore,
	)
}

// ListNoShowCandidates returns confirmed reservations whose start is before startBefore.
func (r ReservationRepository) ListNoShowCandidates(ctx context.Context, startBefore time.Time) ([]int64, error) {
	return r.listIDs(ctx,
		`SELECT id FROM reservations WHERE status = ? AND start_datetime < ? ORDER BY id`,
		string(status.Confirmed), startBefore,
	)
}

func (r ReservationRepository) listIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.conn().QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query reservation ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reservation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation ids: %w", err)
	}
	return ids, nil
}

// SummarizeByStatus counts reservations and sums their price per status.
// Paging fields of f are ignored.
func (r ReservationRepository) SummarizeByStatus(ctx context.Context, f models.ReservationFilter) ([]models.StatusSummary, error) {
	where, args := buildFilter(f)
	rows, err := r.conn().QueryContext(ctx,
		r.q("SELECT r.status, COUNT(*), COALESCE(SUM(r.total_price), 0) FROM reservations r"+where+" GROUP BY r.status"),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize reservations: %w", err)
	}
	defer rows.Close()

	out := []models.StatusSummary{}
	for rows.Next() {
		var (
			row models.StatusSummary
			st  string
		)
		if err := rows.Scan(&st, &row.Count, &row.Revenue); err != nil {
			return nil, fmt.Errorf("scan reservation summary: %w", err)
		}
		row.Status = status.Status(st)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation summary: %w", err)
	}
	return out, nil
}
