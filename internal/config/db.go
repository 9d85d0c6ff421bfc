package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrNotConnected is returned before ConnectDB has run.
var ErrNotConnected = errors.New("database not connected")

var (
	DB       *sql.DB
	DBDriver = DriverMySQL
	dbMu     sync.Mutex
)

const defaultMySQLDSN = "root:@tcp(127.0.0.1:3306)/motorent?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"

// ConnectDB initializes the shared DB connection (idempotent).
func ConnectDB(env Env) *sql.DB {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		return DB
	}

	driver, dsn, err := dataSource(env)
	if err != nil {
		log.Fatalf("[DB] %v", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Fatalf("[DB] open %s failed: %v", driver, err)
	}

	if driver == DriverSQLite {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("[DB] ping %s failed: %v", driver, err)
	}

	DB = db
	DBDriver = driver
	log.Printf("[DB] connected driver=%s", driver)
	return DB
}

func dataSource(env Env) (driver, dsn string, err error) {
	driver = env.DBDriver
	dsn = strings.TrimSpace(env.DatabaseURL)
	switch driver {
	case DriverMySQL:
		if dsn == "" {
			dsn = defaultMySQLDSN
		}
	case DriverPostgres:
		if dsn == "" {
			return "", "", fmt.Errorf("DATABASE_URL is required for postgres")
		}
	case DriverSQLite:
		if dsn == "" {
			dsn = "file:motorent.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
	default:
		return "", "", fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	return driver, dsn, nil
}

// EnsureDB pings conn, or the shared DB when conn is nil.
func EnsureDB(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		dbMu.Lock()
		conn = DB
		dbMu.Unlock()
	}
	if conn == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return conn.PingContext(ctx)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}

// Rebind rewrites "?" placeholders into the driver's bind style.
// Quoted literals are left untouched.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
