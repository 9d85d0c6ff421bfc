package config

import (
	"context"
	"database/sql"
	"errors"
	"log"
)

// RequiredTables are the tables the booking workflow reads and writes.
var RequiredTables = []string{"users", "vendors", "bikes", "reservations", "reservation_status_events"}

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func HasTable(ctx context.Context, q QueryRower, driver, table string) bool {
	var query string
	switch driver {
	case DriverSQLite:
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1`
	case DriverPostgres:
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = ? LIMIT 1`
	default:
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name = ? LIMIT 1`
	}

	var name sql.NullString
	if err := q.QueryRowContext(ctx, Rebind(driver, query), table).Scan(&name); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[DB] schema probe %s failed: %v", table, err)
		}
		return false
	}
	return name.Valid && name.String != ""
}

// MissingTables returns the required tables that are not present.
func MissingTables(ctx context.Context, q QueryRower, driver string) []string {
	var missing []string
	for _, t := range RequiredTables {
		if !HasTable(ctx, q, driver, t) {
			missing = append(missing, t)
		}
	}
	return missing
}
