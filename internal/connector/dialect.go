package connector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Pagination selects how a dialect spells an offset window.
type Pagination int

const (
	// LimitOffset is LIMIT n OFFSET m (MySQL, PostgreSQL, SQLite).
	LimitOffset Pagination = iota
	// OffsetFetch is OFFSET m ROWS FETCH NEXT n ROWS ONLY (SQL Server).
	OffsetFetch
)

// Returning selects how a dialect hands back generated keys on insert.
type Returning int

const (
	ReturningNone   Returning = iota // use LastInsertId
	ReturningClause                  // INSERT ... RETURNING col
	ReturningOutput                  // INSERT ... OUTPUT INSERTED.col VALUES ...
)

// Dialect builds SQL for one database flavour. Drivers embed it and fill in
// the fields that differ; statements are written with ? placeholders and
// rebound to BindType before they are returned.
type Dialect struct {
	BindType   int
	Schema     string
	Quote      func(string) string
	Pagination Pagination
	Returning  Returning
}

// Rebind converts ? placeholders to the dialect's bind style.
func (d *Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.BindType, query)
}

// Table returns the quoted, schema-qualified table name.
func (d *Dialect) Table(name string) string {
	if d.Schema == "" {
		return d.Quote(name)
	}
	return d.Quote(d.Schema) + "." + d.Quote(name)
}

// SupportsReturning reports whether inserts can return the generated key.
func (d *Dialect) SupportsReturning() bool {
	return d.Returning != ReturningNone
}

// BuildSelect constructs a SELECT query from the given request.
func (d *Dialect) BuildSelect(_ context.Context, req SelectRequest) (string, []interface{}, error) {
	if req.Table == "" {
		return "", nil, fmt.Errorf("table name is required")
	}

	var b strings.Builder
	var args []interface{}

	b.WriteString("SELECT ")
	if len(req.Fields) > 0 {
		b.WriteString(d.quoteList(req.Fields))
	} else {
		b.WriteString("*")
	}

	b.WriteString(" FROM ")
	b.WriteString(d.Table(req.Table))

	if req.Filter != "" {
		b.WriteString(" WHERE ")
		b.WriteString(req.Filter)
		args = append(args, req.FilterArgs...)
	}

	order := req.Order
	if order == "" && req.Page != nil && d.Pagination == OffsetFetch {
		// OFFSET/FETCH is only valid after an ORDER BY.
		order = "(SELECT NULL)"
	}
	if order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	}

	if req.Page != nil {
		switch d.Pagination {
		case OffsetFetch:
			b.WriteString(" OFFSET ? ROWS FETCH NEXT ? ROWS ONLY")
			args = append(args, req.Page.Offset, req.Page.Limit)
		default:
			b.WriteString(" LIMIT ? OFFSET ?")
			args = append(args, req.Page.Limit, req.Page.Offset)
		}
	}

	return d.Rebind(b.String()), args, nil
}

// BuildInsert constructs a single-row INSERT. Columns are written in sorted
// order so the statement text is stable.
func (d *Dialect) BuildInsert(_ context.Context, req InsertRequest) (string, []interface{}, error) {
	if req.Table == "" {
		return "", nil, fmt.Errorf("table name is required")
	}
	if len(req.Record) == 0 {
		return "", nil, fmt.Errorf("at least one column is required")
	}

	columns := sortedKeys(req.Record)
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		args[i] = req.Record[col]
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.Table(req.Table))
	b.WriteString(" (")
	b.WriteString(d.quoteList(columns))
	b.WriteString(")")

	if req.Returning != "" && d.Returning == ReturningOutput {
		b.WriteString(" OUTPUT INSERTED.")
		b.WriteString(d.Quote(req.Returning))
	}

	b.WriteString(" VALUES (")
	b.WriteString(Placeholders(len(columns)))
	b.WriteString(")")

	if req.Returning != "" && d.Returning == ReturningClause {
		b.WriteString(" RETURNING ")
		b.WriteString(d.Quote(req.Returning))
	}

	return d.Rebind(b.String()), args, nil
}

// BuildUpdate constructs an UPDATE with parameterized SET values. A filter is
// mandatory.
func (d *Dialect) BuildUpdate(_ context.Context, req UpdateRequest) (string, []interface{}, error) {
	if req.Table == "" {
		return "", nil, fmt.Errorf("table name is required")
	}
	if len(req.Record) == 0 {
		return "", nil, fmt.Errorf("at least one field to update is required")
	}
	if req.Filter == "" {
		return "", nil, fmt.Errorf("filter required for update (refusing to update all rows)")
	}

	columns := sortedKeys(req.Record)
	args := make([]interface{}, 0, len(columns)+len(req.FilterArgs))

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(d.Table(req.Table))
	b.WriteString(" SET ")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Quote(col))
		b.WriteString(" = ?")
		args = append(args, req.Record[col])
	}

	b.WriteString(" WHERE ")
	b.WriteString(req.Filter)
	args = append(args, req.FilterArgs...)

	return d.Rebind(b.String()), args, nil
}

// BuildDelete constructs a DELETE. A filter is mandatory.
func (d *Dialect) BuildDelete(_ context.Context, req DeleteRequest) (string, []interface{}, error) {
	if req.Table == "" {
		return "", nil, fmt.Errorf("table name is required")
	}
	if req.Filter == "" {
		return "", nil, fmt.Errorf("filter required for delete (refusing to delete all rows)")
	}

	query := "DELETE FROM " + d.Table(req.Table) + " WHERE " + req.Filter
	var args []interface{}
	args = append(args, req.FilterArgs...)
	return d.Rebind(query), args, nil
}

// BuildCount constructs a SELECT COUNT(*) query with optional filtering.
func (d *Dialect) BuildCount(_ context.Context, req CountRequest) (string, []interface{}, error) {
	if req.Table == "" {
		return "", nil, fmt.Errorf("table name is required")
	}

	query := "SELECT COUNT(*) FROM " + d.Table(req.Table)
	var args []interface{}
	if req.Filter != "" {
		query += " WHERE " + req.Filter
		args = append(args, req.FilterArgs...)
	}
	return d.Rebind(query), args, nil
}

// ExpandDDL replaces {table} tokens in stmts with qualified table names.
func (d *Dialect) ExpandDDL(stmts []string, tables ...string) []string {
	pairs := make([]string, 0, 2*len(tables))
	for _, t := range tables {
		pairs = append(pairs, "{"+t+"}", d.Table(t))
	}
	r := strings.NewReplacer(pairs...)

	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = r.Replace(s)
	}
	return out
}

func (d *Dialect) quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.Quote(n)
	}
	return strings.Join(quoted, ", ")
}

// Placeholders returns n comma-separated ? placeholders.
func Placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CatalogTables lists the catalogue tables in creation order.
var CatalogTables = []string{"movies", "directors", "actors", "movie_actors", "movie_directors", "movie_facts"}
