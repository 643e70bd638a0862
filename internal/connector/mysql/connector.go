package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/connector"
)

// errDuplicateEntry is ER_DUP_ENTRY.
const errDuplicateEntry = 1062

// MySQLConnector implements connector.Connector for MySQL databases.
type MySQLConnector struct {
	connector.Dialect
	db *sqlx.DB
}

// New creates a new MySQLConnector with default settings.
func New() connector.Connector {
	return newConnector()
}

// Wrap returns a connector around an already-open pool.
func Wrap(db *sqlx.DB, schemaName string) *MySQLConnector {
	c := newConnector()
	c.db = db
	c.Schema = schemaName
	return c
}

func newConnector() *MySQLConnector {
	return &MySQLConnector{
		Dialect: connector.Dialect{
			BindType:   sqlx.QUESTION,
			Quote:      quoteIdentifier,
			Pagination: connector.LimitOffset,
			Returning:  connector.ReturningNone,
		},
	}
}

// Connect establishes a connection to the MySQL database. Tables are only
// schema-qualified when cfg.SchemaName is set; otherwise the DSN's database
// is used.
func (c *MySQLConnector) Connect(cfg connector.ConnectionConfig) error {
	db, err := sqlx.Connect("mysql", cfg.DSN)
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	connector.Configure(db, cfg)

	c.Schema = cfg.SchemaName
	c.db = db
	return nil
}

// Disconnect closes the database connection pool.
func (c *MySQLConnector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (c *MySQLConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *MySQLConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for MySQL.
func (c *MySQLConnector) DriverName() string { return "mysql" }

// QuoteIdentifier wraps a SQL identifier in backticks, escaping any
// embedded backticks to prevent SQL injection.
func (c *MySQLConnector) QuoteIdentifier(name string) string {
	return quoteIdentifier(name)
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// IsUniqueViolation reports whether err is a duplicate-key error.
func (c *MySQLConnector) IsUniqueViolation(err error) bool {
	var me *mysqldriver.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}

// CallProcedure runs CALL name(?, ...) on q and drains every result set the
// procedure produces.
func (c *MySQLConnector) CallProcedure(ctx context.Context, q connector.Querier, name string, args []interface{}) ([]connector.ResultSet, error) {
	if name == "" {
		return nil, fmt.Errorf("procedure name is required")
	}

	query := fmt.Sprintf("CALL %s(%s)", c.Table(name), connector.Placeholders(len(args)))
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("call procedure %q: %w", name, err)
	}
	return connector.CollectResultSets(rows)
}
