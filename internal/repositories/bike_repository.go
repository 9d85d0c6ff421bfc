package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "motorent/internal/config"
	"motorent/internal/domain"
	"motorent/internal/domain/models"
)

type BikeRepository struct {
	base
}

func NewBikeRepository(conn *sql.DB, driver string) BikeRepository {
	return BikeRepository{base{DB: conn, Driver: driver}}
}

const bikeSelect = `SELECT id, vendor_id, name, COALESCE(plate_number, ''), hourly_price, daily_price, status FROM bikes`

func scanBike(s rowScanner) (models.Bike, error) {
	var b models.Bike
	err := s.Scan(&b.ID, &b.VendorID, &b.Name, &b.PlateNumber, &b.HourlyPrice, &b.DailyPrice, &b.Status)
	return b, err
}

func (r BikeRepository) GetByID(ctx context.Context, id int64) (models.Bike, error) {
	b, err := scanBike(r.conn().QueryRowContext(ctx, r.q(bikeSelect+" WHERE id = ?"), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bike{}, domain.NotFoundError{Resource: "bike", Err: err}
		}
		return models.Bike{}, fmt.Errorf("get bike %d: %w", id, err)
	}
	return b, nil
}

func (r BikeRepository) WithTx(tx *sql.Tx) BikeRepository {
	r.tx = tx
	return r
}

// LockForBooking takes a row lock on the bike for the rest of the transaction so
// two overlapping bookings cannot both pass the overlap check. sqlite already
// serializes writers and has no FOR UPDATE.
func (r BikeRepository) LockForBooking(ctx context.Context, id int64) error {
	if r.driver() == intconfig.DriverSQLite {
		return nil
	}
	var locked int64
	err := r.conn().QueryRowContext(ctx, r.q(`SELECT id FROM bikes WHERE id = ? FOR UPDATE`), id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "bike", Err: err}
		}
		return fmt.Errorf("lock bike %d: %w", id, err)
	}
	return nil
}

// List returns the catalog ordered by vendor then name.
func (r BikeRepository) List(ctx context.Context, f models.BikeFilter) ([]models.Bike, error) {
	clauses := []string{}
	args := []any{}
	if f.VendorID > 0 {
		clauses = append(clauses, "vendor_id = ?")
		args = append(args, f.VendorID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		clauses = append(clauses, "(name LIKE ? OR plate_number LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}

	query := bikeSelect
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY vendor_id, name, id"
	if f.PageSize > 0 {
		p := domain.Pagination{Page: f.Page, PageSize: f.PageSize}.Normalize()
		query += " LIMIT ? OFFSET ?"
		args = append(args, p.PageSize, p.Offset())
	}

	rows, err := r.conn().QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list bikes: %w", err)
	}
	defer rows.Close()

	list := []models.Bike{}
	for rows.Next() {
		b, err := scanBike(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bike: %w", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bikes: %w", err)
	}
	return list, nil
}

func (r BikeRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.conn().ExecContext(ctx, r.q(`UPDATE bikes SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("update bike %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bike %d status: %w", id, err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "bike"}
	}
	return nil
}
