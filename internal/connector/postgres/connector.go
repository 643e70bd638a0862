package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/connector"
)

// uniqueViolation is SQLSTATE unique_violation.
const uniqueViolation = "23505"

// PostgresConnector implements connector.Connector for PostgreSQL databases.
type PostgresConnector struct {
	connector.Dialect
	db *sqlx.DB
}

// New creates a new PostgresConnector with default settings.
func New() connector.Connector {
	return &PostgresConnector{
		Dialect: connector.Dialect{
			BindType:   sqlx.DOLLAR,
			Quote:      quoteIdentifier,
			Pagination: connector.LimitOffset,
			Returning:  connector.ReturningClause,
		},
	}
}

// Connect establishes a connection through the pgx stdlib driver. Tables are
// left unqualified (search_path decides) unless cfg.SchemaName is set.
func (c *PostgresConnector) Connect(cfg connector.ConnectionConfig) error {
	db, err := sqlx.Connect("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	connector.Configure(db, cfg)

	c.Schema = cfg.SchemaName
	c.db = db
	return nil
}

// Disconnect closes the database connection pool.
func (c *PostgresConnector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (c *PostgresConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *PostgresConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for PostgreSQL.
func (c *PostgresConnector) DriverName() string { return "postgres" }

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double quotes.
func (c *PostgresConnector) QuoteIdentifier(name string) string {
	return quoteIdentifier(name)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func (c *PostgresConnector) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CallProcedure invokes a set-returning function with SELECT * FROM name(...).
// PostgreSQL procedures invoked with CALL cannot return result sets, so the
// catalogue's routines are expected to be functions here.
func (c *PostgresConnector) CallProcedure(ctx context.Context, q connector.Querier, name string, args []interface{}) ([]connector.ResultSet, error) {
	if name == "" {
		return nil, fmt.Errorf("procedure name is required")
	}

	query := c.Rebind(fmt.Sprintf("SELECT * FROM %s(%s)", c.Table(name), connector.Placeholders(len(args))))
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("call procedure %q: %w", name, err)
	}
	return connector.CollectResultSets(rows)
}
