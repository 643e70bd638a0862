package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/filmvault/filmvault/internal/config"
	"github.com/filmvault/filmvault/internal/connector"
	"github.com/filmvault/filmvault/internal/connector/mssql"
	"github.com/filmvault/filmvault/internal/connector/mysql"
	"github.com/filmvault/filmvault/internal/connector/postgres"
	"github.com/filmvault/filmvault/internal/connector/sqlite"
	"github.com/filmvault/filmvault/internal/service"
	"github.com/filmvault/filmvault/internal/store"
	"github.com/filmvault/filmvault/internal/telemetry"
)

// newRegistry creates a connector registry with all supported database drivers registered.
func newRegistry() *connector.Registry {
	registry := connector.NewRegistry()
	registry.RegisterDriver("postgres", postgres.New)
	registry.RegisterDriver("mysql", mysql.New)
	registry.RegisterDriver("mssql", mssql.New)
	registry.RegisterDriver("sqlite", sqlite.New)
	return registry
}

// newLogger builds the process logger. Logs go to w so stdout stays free for
// command output and the MCP stdio transport.
func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore connects to the configured database and, when auto_migrate is
// on, creates the catalogue tables.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	lifetime, idle, err := cfg.Database.Pool.Lifetimes()
	if err != nil {
		return nil, err
	}
	conn, err := newRegistry().Open(connector.ConnectionConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		SchemaName:      cfg.Database.Schema,
		MaxOpenConns:    cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:    cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetime: lifetime,
		ConnMaxIdleTime: idle,
	})
	if err != nil {
		return nil, err
	}
	st := store.New(conn, logger)
	logger.Info("connected to database", "driver", cfg.Database.Driver, "dsn", redactDSN(cfg.Database.DSN))

	if cfg.Database.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
	}
	return st, nil
}

// services holds the service layer built over one store.
type services struct {
	catalog *service.Catalog
	procs   *service.ProcedureService
}

func newServices(cfg *config.Config, st *store.Store, metrics *telemetry.Metrics, logger *slog.Logger) (*services, error) {
	policy, err := service.ParseDuplicatePolicy(cfg.Catalog.DuplicateKey)
	if err != nil {
		return nil, err
	}
	p := cfg.Procedures
	names := service.ProcedureNames{
		Aggregate:       p.Aggregate,
		AggregateTable:  p.AggregateTable,
		AggregateColumn: p.AggregateColumn,
		BatchInsert:     p.BatchInsert,
		RandomSplit:     p.RandomSplit,
		LinkActor:       p.LinkActor,
		AddAward:        p.AddAward,
	}
	return &services{
		catalog: service.NewCatalog(st, service.Options{DuplicateKey: policy, Logger: logger}),
		procs:   service.NewProcedureService(st, names, metrics, logger),
	}, nil
}

// redactDSN hides the password of URL and MySQL style DSNs.
func redactDSN(dsn string) string {
	if strings.Contains(dsn, "://") {
		if u, err := url.Parse(dsn); err == nil {
			return u.Redacted()
		}
		return dsn
	}
	at := strings.LastIndex(dsn, "@")
	colon := strings.Index(dsn, ":")
	if at > 0 && colon >= 0 && colon < at {
		return dsn[:colon+1] + "xxxxx" + dsn[at:]
	}
	return dsn
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// versionString returns a display version string.
func (a *app) versionString() string {
	if a.version == "" || a.version == "dev" {
		return "dev"
	}
	if strings.HasPrefix(a.version, "v") {
		return a.version
	}
	return "v" + a.version
}

// stderr is where logs go; tests replace it.
var stderr io.Writer = os.Stderr

// bootstrap loads the config, opens the store and builds the services.
// The caller closes the returned store.
func (a *app) bootstrap(ctx context.Context, metrics *telemetry.Metrics) (*config.Config, *store.Store, *services, *slog.Logger, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger := newLogger(cfg.Logging, stderr)
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	svc, err := newServices(cfg, st, metrics, logger)
	if err != nil {
		st.Close()
		return nil, nil, nil, nil, err
	}
	return cfg, st, svc, logger, nil
}
