package repositories

import (
	"database/sql"

	intconfig "motorent/internal/config"
	intdb "motorent/internal/db"
)

// base carries the connection, driver and optional transaction shared by all repositories.
type base struct {
	DB     *sql.DB
	Driver string
	tx     *sql.Tx
}

func (b base) conn() intdb.DBTX {
	if b.tx != nil {
		return b.tx
	}
	if b.DB != nil {
		return b.DB
	}
	return intconfig.DB
}

func (b base) driver() string {
	if b.Driver != "" {
		return b.Driver
	}
	return intconfig.DBDriver
}

func (b base) q(query string) string {
	return intconfig.Rebind(b.driver(), query)
}
