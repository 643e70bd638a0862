package mssql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/filmvault/filmvault/internal/connector"
)

// SQL Server error numbers for duplicate keys: constraint and unique index.
const (
	errUniqueConstraint = 2627
	errUniqueIndex      = 2601
)

// MSSQLConnector implements connector.Connector for SQL Server databases.
type MSSQLConnector struct {
	connector.Dialect
	db *sqlx.DB
}

// New creates a new MSSQLConnector with default settings.
func New() connector.Connector {
	return &MSSQLConnector{
		Dialect: connector.Dialect{
			BindType:   sqlx.AT,
			Schema:     "dbo",
			Quote:      quoteIdentifier,
			Pagination: connector.OffsetFetch,
			Returning:  connector.ReturningOutput,
		},
	}
}

// Connect establishes a connection to SQL Server. The schema defaults to dbo.
func (c *MSSQLConnector) Connect(cfg connector.ConnectionConfig) error {
	db, err := sqlx.Connect("sqlserver", cfg.DSN)
	if err != nil {
		return fmt.Errorf("mssql connect: %w", err)
	}
	connector.Configure(db, cfg)

	if cfg.SchemaName != "" {
		c.Schema = cfg.SchemaName
	}
	c.db = db
	return nil
}

// Disconnect closes the database connection pool.
func (c *MSSQLConnector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (c *MSSQLConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *MSSQLConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for SQL Server.
func (c *MSSQLConnector) DriverName() string { return "mssql" }

// QuoteIdentifier wraps a SQL identifier in square brackets, escaping any
// embedded closing brackets.
func (c *MSSQLConnector) QuoteIdentifier(name string) string {
	return quoteIdentifier(name)
}

func quoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// sqlError is implemented by mssql.Error, whether returned by value or
// by pointer.
type sqlError interface {
	SQLErrorNumber() int32
}

// IsUniqueViolation reports whether err is a duplicate key error.
func (c *MSSQLConnector) IsUniqueViolation(err error) bool {
	var se sqlError
	if !errors.As(err, &se) {
		return false
	}
	n := se.SQLErrorNumber()
	return n == errUniqueConstraint || n == errUniqueIndex
}

// CallProcedure runs EXEC name @p1, ... on q and drains every result set.
func (c *MSSQLConnector) CallProcedure(ctx context.Context, q connector.Querier, name string, args []interface{}) ([]connector.ResultSet, error) {
	if name == "" {
		return nil, fmt.Errorf("procedure name is required")
	}

	query := "EXEC " + c.Table(name)
	if len(args) > 0 {
		query += " " + connector.Placeholders(len(args))
	}
	rows, err := q.QueryContext(ctx, c.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("call procedure %q: %w", name, err)
	}
	return connector.CollectResultSets(rows)
}
