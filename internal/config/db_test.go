package config

import "testing"

func TestRebindPostgres(t *testing.T) {
	got := Rebind(DriverPostgres, "SELECT id FROM reservations WHERE status = ? AND note <> '?' AND bike_id = ?")
	want := "SELECT id FROM reservations WHERE status = $1 AND note <> '?' AND bike_id = $2"
	if got != want {
		t.Fatalf("Rebind = %q, want %q", got, want)
	}
}

func TestRebindKeepsQuestionMarksForOtherDrivers(t *testing.T) {
	q := "SELECT 1 FROM bikes WHERE id = ?"
	for _, d := range []string{DriverMySQL, DriverSQLite} {
		if got := Rebind(d, q); got != q {
			t.Fatalf("Rebind(%s) = %q", d, got)
		}
	}
}

func TestDataSource(t *testing.T) {
	if _, dsn, err := dataSource(Env{DBDriver: DriverMySQL}); err != nil || dsn != defaultMySQLDSN {
		t.Fatalf("mysql default dsn = %q, %v", dsn, err)
	}
	if _, _, err := dataSource(Env{DBDriver: DriverPostgres}); err == nil {
		t.Fatalf("postgres without DATABASE_URL should fail")
	}
	if _, _, err := dataSource(Env{DBDriver: "oracle"}); err == nil {
		t.Fatalf("unsupported driver should fail")
	}
}

func TestEnvNormalize(t *testing.T) {
	e := Env{DBDriver: " MySQL ", CORSAllowedOrigins: []string{" http://a ", ""}}.normalize()
	if e.AppAddr != ":8080" || e.DBDriver != DriverMySQL {
		t.Fatalf("unexpected env %+v", e)
	}
	if len(e.CORSAllowedOrigins) != 1 || e.CORSAllowedOrigins[0] != "http://a" {
		t.Fatalf("origins = %v", e.CORSAllowedOrigins)
	}
	if e.JWTSecret == "" {
		t.Fatalf("jwt secret fallback missing")
	}
}
