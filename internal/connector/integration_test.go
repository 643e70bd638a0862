package connector_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/filmvault/filmvault/internal/connector"
	"github.com/filmvault/filmvault/internal/connector/mssql"
	"github.com/filmvault/filmvault/internal/connector/mysql"
	"github.com/filmvault/filmvault/internal/connector/postgres"
)

// integrationDSN skips the test unless FILMVAULT_INTEGRATION is set and the
// named variable holds a DSN.
func integrationDSN(t *testing.T, env string) string {
	t.Helper()
	if os.Getenv("FILMVAULT_INTEGRATION") == "" {
		t.Skip("set FILMVAULT_INTEGRATION=1 to run integration tests")
	}
	dsn := os.Getenv(env)
	if dsn == "" {
		t.Skipf("%s not set", env)
	}
	return dsn
}

// runConnectorSuite migrates a scratch database and round-trips one movie
// through the dialect builders.
func runConnectorSuite(t *testing.T, conn connector.Connector, cfg connector.ConnectionConfig) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := conn.Connect(cfg); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Disconnect()

	t.Run("Ping", func(t *testing.T) {
		if err := conn.Ping(ctx); err != nil {
			t.Fatalf("Ping failed: %v", err)
		}
	})

	t.Run("Migrate", func(t *testing.T) {
		for _, stmt := range conn.Migrations() {
			if _, err := conn.DB().ExecContext(ctx, stmt); err != nil {
				t.Fatalf("migration failed: %v\nSQL: %s", err, stmt)
			}
		}
	})

	t.Run("InsertSelectDelete", func(t *testing.T) {
		code := fmt.Sprintf("it%d", time.Now().UnixNano()%1_000_000_000)
		q, args, err := conn.BuildInsert(ctx, connector.InsertRequest{
			Table: "movies",
			Record: map[string]interface{}{
				"title": "Integration", "release_year": 2001, "duration": 90,
				"description": nil, "imdb_code": code, "rating": nil,
			},
		})
		if err != nil {
			t.Fatalf("BuildInsert: %v", err)
		}
		if _, err := conn.DB().ExecContext(ctx, q, args...); err != nil {
			t.Fatalf("insert: %v", err)
		}

		_, err = conn.DB().ExecContext(ctx, q, args...)
		if err == nil || !conn.IsUniqueViolation(err) {
			t.Errorf("duplicate insert should be a unique violation, got %v", err)
		}

		filter := conn.QuoteIdentifier("imdb_code") + " = ?"
		q, args, err = conn.BuildCount(ctx, connector.CountRequest{Table: "movies", Filter: filter, FilterArgs: []interface{}{code}})
		if err != nil {
			t.Fatalf("BuildCount: %v", err)
		}
		var n int
		if err := conn.DB().GetContext(ctx, &n, q, args...); err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 1 {
			t.Errorf("count = %d, want 1", n)
		}

		q, args, _ = conn.BuildDelete(ctx, connector.DeleteRequest{Table: "movies", Filter: filter, FilterArgs: []interface{}{code}})
		if _, err := conn.DB().ExecContext(ctx, q, args...); err != nil {
			t.Fatalf("delete: %v", err)
		}
	})
}

func TestPostgresIntegration(t *testing.T) {
	dsn := integrationDSN(t, "FILMVAULT_POSTGRES_DSN")
	runConnectorSuite(t, postgres.New(), connector.ConnectionConfig{
		Driver: "postgres",
		DSN:    connector.SanitizeDSN("postgres", dsn),
	})
}

func TestMySQLIntegration(t *testing.T) {
	dsn := integrationDSN(t, "FILMVAULT_MYSQL_DSN")
	runConnectorSuite(t, mysql.New(), connector.ConnectionConfig{
		Driver: "mysql",
		DSN:    connector.SanitizeDSN("mysql", dsn),
	})
}

func TestMSSQLIntegration(t *testing.T) {
	dsn := integrationDSN(t, "FILMVAULT_MSSQL_DSN")
	runConnectorSuite(t, mssql.New(), connector.ConnectionConfig{
		Driver: "mssql",
		DSN:    connector.SanitizeDSN("mssql", dsn),
	})
}
