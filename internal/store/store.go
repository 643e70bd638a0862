// Package store is the data access layer of the catalogue. Every repository
// method takes the Session it runs on, so callers decide the transaction
// boundary.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/connector"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write collides with a unique key.
var ErrDuplicate = errors.New("duplicate key")

// Session is the scoped handle repository calls run on: *sqlx.DB or *sqlx.Tx.
type Session interface {
	sqlx.ExtContext
}

// Store owns the connection and the repositories.
type Store struct {
	conn   connector.Connector
	db     *sqlx.DB
	logger *slog.Logger

	Movies    *MovieRepo
	Directors *DirectorRepo
	Actors    *ActorRepo
	Facts     *FactRepo
}

// New creates a Store on an already-connected connector.
func New(conn connector.Connector, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{conn: conn, db: conn.DB(), logger: logger}
	s.Movies = &MovieRepo{s: s}
	s.Directors = &DirectorRepo{s: s}
	s.Actors = &ActorRepo{s: s}
	s.Facts = &FactRepo{s: s}
	return s
}

// DB returns the connection pool.
func (s *Store) DB() *sqlx.DB { return s.db }

// Connector returns the database connector.
func (s *Store) Connector() connector.Connector { return s.conn }

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.conn.Ping(ctx) }

// Close disconnects from the database.
func (s *Store) Close() error { return s.conn.Disconnect() }

// Migrate creates the catalogue tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := s.conn.Migrations()
	for _, m := range stmts {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	s.logger.Info("catalogue schema ready", "driver", s.conn.DriverName(), "statements", len(stmts))
	return nil
}

// Counts returns the row count of every catalogue table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(connector.CatalogTables))
	for _, name := range connector.CatalogTables {
		n, err := s.count(ctx, s.db, table{name: name})
		if err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, nil
}

// InTx runs fn in a transaction. The transaction is committed when fn
// returns nil and rolled back when it returns an error or panics.
func (s *Store) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("rollback failed", "error", rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("commit transaction: %w", cErr)
		}
	}()

	return fn(tx)
}

// table describes a catalogue table for the generic helpers below.
type table struct {
	name    string
	key     string
	columns []string
}

// eq returns "c1 = ? AND c2 = ?" over quoted column names.
func (s *Store) eq(cols ...string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = s.conn.QuoteIdentifier(c) + " = ?"
	}
	return strings.Join(parts, " AND ")
}

// col returns alias.column for hand-written joins.
func (s *Store) col(alias, name string) string {
	return alias + "." + s.conn.QuoteIdentifier(name)
}

func (s *Store) cols(alias string, names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = s.col(alias, n)
	}
	return strings.Join(out, ", ")
}

func (s *Store) get(ctx context.Context, q Session, dest interface{}, t table, id int64) error {
	query, args, err := s.conn.BuildSelect(ctx, connector.SelectRequest{
		Table:      t.name,
		Fields:     t.columns,
		Filter:     s.eq(t.key),
		FilterArgs: []interface{}{id},
	})
	if err != nil {
		return err
	}
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get %s %d: %w", t.name, id, err)
	}
	return nil
}

// match is eq with nil arguments turned into IS NULL tests.
func (s *Store) match(cols []string, args []interface{}) (string, []interface{}) {
	parts := make([]string, len(cols))
	kept := make([]interface{}, 0, len(args))
	for i, c := range cols {
		if args[i] == nil {
			parts[i] = s.conn.QuoteIdentifier(c) + " IS NULL"
			continue
		}
		parts[i] = s.conn.QuoteIdentifier(c) + " = ?"
		kept = append(kept, args[i])
	}
	return strings.Join(parts, " AND "), kept
}

// findFirst loads the lowest-keyed row matching all of where. A nil
// argument matches NULL.
func (s *Store) findFirst(ctx context.Context, q Session, dest interface{}, t table, where []string, args []interface{}) error {
	filter, fargs := s.match(where, args)
	query, qargs, err := s.conn.BuildSelect(ctx, connector.SelectRequest{
		Table:      t.name,
		Fields:     t.columns,
		Filter:     filter,
		FilterArgs: fargs,
		Order:      s.conn.QuoteIdentifier(t.key),
		Page:       &connector.Page{Limit: 1},
	})
	if err != nil {
		return err
	}
	if err := sqlx.GetContext(ctx, q, dest, query, qargs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("find %s: %w", t.name, err)
	}
	return nil
}

func (s *Store) list(ctx context.Context, q Session, dest interface{}, t table, offset, limit int) error {
	query, args, err := s.conn.BuildSelect(ctx, connector.SelectRequest{
		Table:  t.name,
		Fields: t.columns,
		Order:  s.conn.QuoteIdentifier(t.key),
		Page:   &connector.Page{Limit: limit, Offset: offset},
	})
	if err != nil {
		return err
	}
	if err := sqlx.SelectContext(ctx, q, dest, query, args...); err != nil {
		return fmt.Errorf("list %s: %w", t.name, err)
	}
	return nil
}

func (s *Store) count(ctx context.Context, q Session, t table) (int64, error) {
	query, args, err := s.conn.BuildCount(ctx, connector.CountRequest{Table: t.name})
	if err != nil {
		return 0, err
	}
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

// insert writes record and returns the generated key, or 0 for tables
// without one.
func (s *Store) insert(ctx context.Context, q Session, t table, record map[string]interface{}) (int64, error) {
	query, args, err := s.conn.BuildInsert(ctx, connector.InsertRequest{
		Table:     t.name,
		Record:    record,
		Returning: t.key,
	})
	if err != nil {
		return 0, err
	}

	if t.key != "" && s.conn.SupportsReturning() {
		var id int64
		if err := q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, s.writeErr("insert "+t.name, err)
		}
		return id, nil
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.writeErr("insert "+t.name, err)
	}
	if t.key == "" {
		return 0, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: last insert id: %w", t.name, err)
	}
	return id, nil
}

func (s *Store) update(ctx context.Context, q Session, t table, id int64, record map[string]interface{}) error {
	query, args, err := s.conn.BuildUpdate(ctx, connector.UpdateRequest{
		Table:      t.name,
		Record:     record,
		Filter:     s.eq(t.key),
		FilterArgs: []interface{}{id},
	})
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return s.writeErr(fmt.Sprintf("update %s %d", t.name, id), err)
	}
	return nil
}

// remove deletes the rows matching where and returns ErrNotFound when there
// were none.
func (s *Store) remove(ctx context.Context, q Session, tableName string, where []string, args []interface{}) error {
	query, qargs, err := s.conn.BuildDelete(ctx, connector.DeleteRequest{
		Table:      tableName,
		Filter:     s.eq(where...),
		FilterArgs: args,
	})
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, query, qargs...)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", tableName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: rows affected: %w", tableName, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) writeErr(op string, err error) error {
	if s.conn.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
