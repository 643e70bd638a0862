package connector

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

// mockConnector implements Connector for testing without a real database.
type mockConnector struct {
	Dialect
	connected bool
	cfg       ConnectionConfig
}

func newMock() Connector {
	return &mockConnector{Dialect: Dialect{BindType: sqlx.QUESTION, Quote: func(s string) string { return `"` + s + `"` }}}
}

func (m *mockConnector) Connect(cfg ConnectionConfig) error {
	if cfg.DSN == "fail" {
		return fmt.Errorf("mock connect failure")
	}
	m.connected = true
	m.cfg = cfg
	return nil
}
func (m *mockConnector) Disconnect() error               { m.connected = false; return nil }
func (m *mockConnector) Ping(_ context.Context) error    { return nil }
func (m *mockConnector) DB() *sqlx.DB                    { return nil }
func (m *mockConnector) Migrations() []string            { return nil }
func (m *mockConnector) DriverName() string              { return "mock" }
func (m *mockConnector) QuoteIdentifier(s string) string { return m.Quote(s) }
func (m *mockConnector) IsUniqueViolation(error) bool    { return false }
func (m *mockConnector) CallProcedure(context.Context, Querier, string, []interface{}) ([]ResultSet, error) {
	return nil, ErrProceduresUnsupported
}

func TestOpen(t *testing.T) {
	r := NewRegistry()
	r.RegisterDriver("mock", newMock)

	conn, err := r.Open(ConnectionConfig{Driver: "mock", DSN: "test-dsn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mc := conn.(*mockConnector)
	if !mc.connected {
		t.Error("connector should be connected")
	}
	if mc.cfg.DSN != "test-dsn" {
		t.Errorf("expected DSN test-dsn, got %s", mc.cfg.DSN)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	r := NewRegistry()
	r.RegisterDriver("mock", newMock)

	_, err := r.Open(ConnectionConfig{Driver: "oracle"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if !strings.Contains(err.Error(), "mock") {
		t.Errorf("error should list available drivers: %v", err)
	}
}

func TestOpenConnectFailure(t *testing.T) {
	r := NewRegistry()
	r.RegisterDriver("mock", newMock)

	if _, err := r.Open(ConnectionConfig{Driver: "mock", DSN: "fail"}); err == nil {
		t.Fatal("expected error for connection failure")
	}
}

func TestDrivers(t *testing.T) {
	r := NewRegistry()
	r.RegisterDriver("sqlite", newMock)
	r.RegisterDriver("mysql", newMock)

	if got := r.Drivers(); !reflect.DeepEqual(got, []string{"mysql", "sqlite"}) {
		t.Errorf("Drivers() = %v", got)
	}
}

func TestSanitizeDSN(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		in     string
		want   string
	}{
		{
			name:   "mysql adds tcp wrapper and parseTime",
			driver: "mysql",
			in:     "root:secret@localhost:3306/movies",
			want:   "root:secret@tcp(localhost:3306)/movies?parseTime=true",
		},
		{
			name:   "mysql missing tcp keyword",
			driver: "mysql",
			in:     "root:secret@(db:3306)/movies",
			want:   "root:secret@tcp(db:3306)/movies?parseTime=true",
		},
		{
			name:   "mysql already correct",
			driver: "mysql",
			in:     "root:secret@tcp(db:3306)/movies?parseTime=true",
			want:   "root:secret@tcp(db:3306)/movies?parseTime=true",
		},
		{
			name:   "postgres password with specials",
			driver: "postgres",
			in:     "postgres://fv:p#ss@db:5432/movies?sslmode=disable",
			want:   "postgres://fv:p%23ss@db:5432/movies?sslmode=disable",
		},
		{
			name:   "postgres already encoded",
			driver: "postgres",
			in:     "postgres://fv:p%23ss@db:5432/movies",
			want:   "postgres://fv:p%23ss@db:5432/movies",
		},
		{
			name:   "sqlite untouched",
			driver: "sqlite",
			in:     ":memory:",
			want:   ":memory:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeDSN(tt.driver, tt.in); got != tt.want {
				t.Errorf("SanitizeDSN(%q, %q)\n  got:  %s\n  want: %s", tt.driver, tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandDDL(t *testing.T) {
	d := &Dialect{Schema: "fv", Quote: func(s string) string { return "`" + s + "`" }}
	got := d.ExpandDDL([]string{"CREATE TABLE {movie_facts} (x INT REFERENCES {movies} (movie_id))"}, CatalogTables...)
	want := "CREATE TABLE `fv`.`movie_facts` (x INT REFERENCES `fv`.`movies` (movie_id))"
	if got[0] != want {
		t.Errorf("ExpandDDL\n  got:  %s\n  want: %s", got[0], want)
	}
}

func TestCollectResultSets(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("CALL").WillReturnRows(
		sqlmock.NewRows([]string{"a"}),
		sqlmock.NewRows([]string{"status", "n"}).AddRow([]byte("ok"), int64(10)),
	)

	rows, err := db.QueryContext(context.Background(), "CALL p()")
	if err != nil {
		t.Fatal(err)
	}
	sets, err := CollectResultSets(rows)
	if err != nil {
		t.Fatalf("CollectResultSets: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("got %d sets, want 2", len(sets))
	}
	if !sets[0].Empty() {
		t.Error("first set should be empty")
	}
	if !reflect.DeepEqual(sets[1].Rows[0], []interface{}{"ok", int64(10)}) {
		t.Errorf("row = %#v", sets[1].Rows[0])
	}
}

func TestNew(t *testing.T) {
	r := NewRegistry()
	r.RegisterDriver("mock", newMock)

	conn, err := r.New("mock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn.(*mockConnector).connected {
		t.Error("New should not connect")
	}
	if _, err := r.New("oracle"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
