package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/filmvault/filmvault/internal/connector"
)

// SQLiteConnector implements connector.Connector for SQLite databases.
type SQLiteConnector struct {
	connector.Dialect
	db *sqlx.DB
}

// New creates a new SQLiteConnector with default settings.
func New() connector.Connector {
	return &SQLiteConnector{
		Dialect: connector.Dialect{
			BindType:   sqlx.QUESTION,
			Quote:      quoteIdentifier,
			Pagination: connector.LimitOffset,
			Returning:  connector.ReturningClause,
		},
	}
}

// Connect opens the SQLite database named by the DSN: a file path, or
// ":memory:" (also the empty DSN) for an in-memory database. Foreign keys are
// switched on for every pooled connection. An in-memory database lives in a
// single connection, so the pool is pinned to one.
func (c *SQLiteConnector) Connect(cfg connector.ConnectionConfig) error {
	dsn := cfg.DSN
	memory := dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sqlx.Connect("sqlite", withForeignKeys(dsn))
	if err != nil {
		return fmt.Errorf("sqlite connect: %w", err)
	}
	connector.Configure(db, cfg)
	if memory {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	c.Schema = cfg.SchemaName
	c.db = db
	return nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Disconnect closes the database connection.
func (c *SQLiteConnector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (c *SQLiteConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *SQLiteConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for SQLite.
func (c *SQLiteConnector) DriverName() string { return "sqlite" }

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double quotes.
func (c *SQLiteConnector) QuoteIdentifier(name string) string {
	return quoteIdentifier(name)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func (c *SQLiteConnector) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// CallProcedure always fails: SQLite has no stored procedures.
func (c *SQLiteConnector) CallProcedure(_ context.Context, _ connector.Querier, name string, _ []interface{}) ([]connector.ResultSet, error) {
	return nil, fmt.Errorf("call procedure %q: %w", name, connector.ErrProceduresUnsupported)
}
