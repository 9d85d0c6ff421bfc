package config

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMissingTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	for _, table := range RequiredTables {
		q := mock.ExpectQuery(`FROM sqlite_master`).WithArgs(table)
		if table == "vendors" {
			q.WillReturnError(sql.ErrNoRows)
			continue
		}
		q.WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(table))
	}

	missing := MissingTables(context.Background(), conn, DriverSQLite)
	if len(missing) != 1 || missing[0] != "vendors" {
		t.Fatalf("missing = %v", missing)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHasTablePostgresBinds(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery(`current_schema\(\) AND table_name = \$1`).WithArgs("bikes").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("bikes"))

	if !HasTable(context.Background(), conn, DriverPostgres, "bikes") {
		t.Fatalf("expected bikes to exist")
	}
}

func TestEnsureDB(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectPing()
	if err := EnsureDB(context.Background(), conn); err != nil {
		t.Fatalf("EnsureDB: %v", err)
	}

	mock.ExpectPing().WillReturnError(sql.ErrConnDone)
	if err := EnsureDB(context.Background(), conn); err == nil {
		t.Fatalf("expected ping failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureDBNotConnected(t *testing.T) {
	if DB != nil {
		t.Skip("shared DB already connected")
	}
	if err := EnsureDB(context.Background(), nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}
