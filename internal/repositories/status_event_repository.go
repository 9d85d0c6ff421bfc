package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"motorent/internal/booking/status"
	intdb "motorent/internal/db"
	"motorent/internal/domain/models"
)

// StatusEventRepository stores the audit trail of reservation status changes.
type StatusEventRepository struct {
	base
}

func NewStatusEventRepository(conn *sql.DB, driver string) StatusEventRepository {
	return StatusEventRepository{base{DB: conn, Driver: driver}}
}

func (r StatusEventRepository) WithTx(tx *sql.Tx) StatusEventRepository {
	r.tx = tx
	return r
}

func (r StatusEventRepository) Insert(ctx context.Context, ev models.StatusEvent) error {
	_, err := r.conn().ExecContext(ctx,
		r.q(`INSERT INTO reservation_status_events (reservation_id, from_status, to_status, actor, created_at) VALUES (?, ?, ?, ?, ?)`),
		ev.ReservationID, intdb.NullIfEmpty(string(ev.FromStatus)), string(ev.ToStatus), ev.Actor, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status event for reservation %d: %w", ev.ReservationID, err)
	}
	return nil
}

// ListByReservation returns the history oldest first.
func (r StatusEventRepository) ListByReservation(ctx context.Context, reservationID int64) ([]models.StatusEvent, error) {
	rows, err := r.conn().QueryContext(ctx,
		r.q(`SELECT id, reservation_id, COALESCE(from_status, ''), to_status, actor, created_at
			FROM reservation_status_events
			WHERE reservation_id = ?
			ORDER BY created_at, id`),
		reservationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	defer rows.Close()

	events := []models.StatusEvent{}
	for rows.Next() {
		var (
			ev       models.StatusEvent
			from, to string
		)
		if err := rows.Scan(&ev.ID, &ev.ReservationID, &from, &to, &ev.Actor, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		ev.FromStatus = status.Status(from)
		ev.ToStatus = status.Status(to)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status events: %w", err)
	}
	return events, nil
}
