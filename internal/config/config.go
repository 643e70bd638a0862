package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/filmvault/filmvault/internal/query"
)

// Config represents the top-level filmvault configuration file.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Procedures ProceduresConfig `yaml:"procedures"`
	MCP        MCPConfig        `yaml:"mcp"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig controls the HTTP server behavior.
type ServerConfig struct {
	Host               string     `yaml:"host"`
	Port               int        `yaml:"port"`
	BaseURL            string     `yaml:"base_url,omitempty"`
	MaxBodySize        string     `yaml:"max_body_size"`
	ShutdownTimeout    string     `yaml:"shutdown_timeout"`
	RateLimitPerMinute int        `yaml:"rate_limit_per_minute"`
	CORS               CORSConfig `yaml:"cors"`
}

// CORSConfig controls cross-origin resource sharing settings.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// DatabaseConfig selects the driver and connection of the catalogue database.
type DatabaseConfig struct {
	Driver      string     `yaml:"driver"`
	DSN         string     `yaml:"dsn"`
	Schema      string     `yaml:"schema,omitempty"`
	AutoMigrate bool       `yaml:"auto_migrate"`
	Pool        PoolConfig `yaml:"pool"`
}

// PoolConfig controls the connection pool.
type PoolConfig struct {
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
}

// CatalogConfig tunes the catalogue services.
type CatalogConfig struct {
	DuplicateKey    string `yaml:"duplicate_key"`
	DefaultPageSize int    `yaml:"default_page_size"`
}

// ProceduresConfig names the stored procedures the API dispatches to.
type ProceduresConfig struct {
	Aggregate       string `yaml:"aggregate"`
	AggregateTable  string `yaml:"aggregate_table"`
	AggregateColumn string `yaml:"aggregate_column"`
	BatchInsert     string `yaml:"batch_insert"`
	RandomSplit     string `yaml:"random_split"`
	LinkActor       string `yaml:"link_actor"`
	AddAward        string `yaml:"add_award"`
}

// MCPConfig controls the MCP (Model Context Protocol) server.
type MCPConfig struct {
	Transport string `yaml:"transport"`
	Port      int    `yaml:"port"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses a YAML configuration file on top of Default.
// Environment variables referenced as ${VAR_NAME} in the file are expanded
// before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns a Config pre-filled with sensible defaults: an embedded
// SQLite catalogue next to the binary.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxBodySize:     "1MB",
			ShutdownTimeout: "30s",
			CORS: CORSConfig{
				Origins: []string{"*"},
			},
		},
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "filmvault.db",
			AutoMigrate: true,
			Pool: PoolConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: "5m",
				ConnMaxIdleTime: "1m",
			},
		},
		Catalog: CatalogConfig{
			DuplicateKey:    "imdb",
			DefaultPageSize: 100,
		},
		Procedures: ProceduresConfig{
			Aggregate:       "sp_call_agg_function_in_select",
			AggregateTable:  "movies",
			AggregateColumn: "duration",
			BatchInsert:     "sp_insert_10_nonames_actors",
			RandomSplit:     "sp_random_split_movies",
			LinkActor:       "sp_link_actor_movie",
			AddAward:        "sp_insert_award",
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      3001,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var (
	validDrivers    = []string{"mysql", "postgres", "mssql", "sqlite"}
	validLevels     = []string{"debug", "info", "warn", "error"}
	validFormats    = []string{"text", "json"}
	validTransports = []string{"stdio", "http"}
)

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if _, err := c.Server.BodyLimit(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Server.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("server.rate_limit_per_minute must not be negative"))
	}
	if !oneOf(c.Database.Driver, validDrivers) {
		errs = append(errs, fmt.Errorf("database.driver %q must be one of %s", c.Database.Driver, strings.Join(validDrivers, ", ")))
	}
	if c.Database.DSN == "" && c.Database.Driver != "sqlite" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if _, err := parseDuration("database.pool.conn_max_lifetime", c.Database.Pool.ConnMaxLifetime); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDuration("database.pool.conn_max_idle_time", c.Database.Pool.ConnMaxIdleTime); err != nil {
		errs = append(errs, err)
	}
	switch c.Catalog.DuplicateKey {
	case "", "imdb", "natural":
	default:
		errs = append(errs, fmt.Errorf("catalog.duplicate_key %q must be imdb or natural", c.Catalog.DuplicateKey))
	}
	if c.Catalog.DefaultPageSize < 0 {
		errs = append(errs, errors.New("catalog.default_page_size must not be negative"))
	}
	errs = append(errs, c.Procedures.validate()...)
	if !oneOf(c.MCP.Transport, validTransports) {
		errs = append(errs, fmt.Errorf("mcp.transport %q must be stdio or http", c.MCP.Transport))
	}
	if !oneOf(strings.ToLower(c.Logging.Level), validLevels) {
		errs = append(errs, fmt.Errorf("logging.level %q must be one of %s", c.Logging.Level, strings.Join(validLevels, ", ")))
	}
	if !oneOf(strings.ToLower(c.Logging.Format), validFormats) {
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// validate checks the names that end up inside CALL statements. Empty names
// fall back to the built-in defaults.
func (p ProceduresConfig) validate() []error {
	var errs []error
	for _, f := range []struct {
		key, name string
	}{
		{"procedures.aggregate", p.Aggregate},
		{"procedures.batch_insert", p.BatchInsert},
		{"procedures.random_split", p.RandomSplit},
		{"procedures.link_actor", p.LinkActor},
		{"procedures.add_award", p.AddAward},
	} {
		if f.name == "" {
			continue
		}
		if err := query.ValidateQualified(f.name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.key, err))
		}
	}
	for _, f := range []struct {
		key, name string
	}{
		{"procedures.aggregate_table", p.AggregateTable},
		{"procedures.aggregate_column", p.AggregateColumn},
	} {
		if f.name == "" {
			continue
		}
		if err := query.ValidateIdentifier(f.name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.key, err))
		}
	}
	return errs
}

// BodyLimit parses max_body_size ("512KB", "1MB", "1048576").
func (s ServerConfig) BodyLimit() (int64, error) {
	n, err := ParseSize(s.MaxBodySize)
	if err != nil {
		return 0, fmt.Errorf("server.max_body_size: %w", err)
	}
	return n, nil
}

// Shutdown parses shutdown_timeout; empty means 30s.
func (s ServerConfig) Shutdown() (time.Duration, error) {
	if s.ShutdownTimeout == "" {
		return 30 * time.Second, nil
	}
	return parseDuration("server.shutdown_timeout", s.ShutdownTimeout)
}

// Lifetimes parses the pool durations. Empty values are zero.
func (p PoolConfig) Lifetimes() (maxLifetime, maxIdleTime time.Duration, err error) {
	if maxLifetime, err = parseDuration("database.pool.conn_max_lifetime", p.ConnMaxLifetime); err != nil {
		return 0, 0, err
	}
	if maxIdleTime, err = parseDuration("database.pool.conn_max_idle_time", p.ConnMaxIdleTime); err != nil {
		return 0, 0, err
	}
	return maxLifetime, maxIdleTime, nil
}

// ParseSize parses a byte size with an optional B, KB, MB or GB suffix.
// An empty string means no limit (0).
func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	mult := int64(1)
	for _, u := range []struct {
		suffix string
		mult   int64
	}{{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}, {"B", 1}} {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			mult = u.mult
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n * mult, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault writes the default configuration to a YAML file. An existing
// file is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := Default().Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
