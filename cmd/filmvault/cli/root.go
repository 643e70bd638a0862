package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/filmvault/filmvault/internal/config"
)

// app carries the state shared by every subcommand of one root command.
type app struct {
	cfgFile string
	dev     bool

	// env holds FILMVAULT_* variables and bound flags. It never reads the
	// config file, so IsSet is true only for explicit overrides.
	env *viper.Viper

	version string
	commit  string
	date    string
}

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	return newRootCmd(version, commit, date).Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	a := &app{
		env:     viper.New(),
		version: version,
		commit:  commit,
		date:    date,
	}
	a.env.SetEnvPrefix("FILMVAULT")
	a.env.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.env.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "filmvault",
		Short: "REST API over a movie catalogue",
		Long: `FilmVault serves a catalogue of movies, directors, actors and movie facts
as a JSON REST API, and wraps the catalogue database's stored procedures.

It runs on MySQL, PostgreSQL, SQL Server or an embedded SQLite file, and ships
an MCP server so AI agents can browse the catalogue.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./filmvault.yaml or ~/.filmvault/filmvault.yaml)")
	cmd.PersistentFlags().BoolVar(&a.dev, "dev", false, "Development mode (debug logging)")
	cmd.PersistentFlags().String("dsn", "", "Database DSN (overrides database.dsn)")
	cmd.PersistentFlags().String("driver", "", "Database driver: mysql, postgres, mssql or sqlite")
	a.env.BindPFlag("database.dsn", cmd.PersistentFlags().Lookup("dsn"))
	a.env.BindPFlag("database.driver", cmd.PersistentFlags().Lookup("driver"))

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newSeedCmd(a))
	cmd.AddCommand(newMCPCmd(a))
	cmd.AddCommand(newOpenAPICmd(a))
	cmd.AddCommand(newProcCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd(a))

	return cmd
}

// configPath returns the file named by --config, or the first filmvault.yaml
// found in the working directory or ~/.filmvault. Empty means none.
func (a *app) configPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	v := viper.New()
	v.SetConfigName("filmvault")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.filmvault")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("locate config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then FILMVAULT_* environment variables and flags.
func (a *app) loadConfig() (*config.Config, error) {
	path, err := a.configPath()
	if err != nil {
		return nil, err
	}
	cfg := config.Default()
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	a.applyOverrides(cfg)
	if a.dev {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) applyOverrides(cfg *config.Config) {
	str := func(key string, dst *string) {
		if a.env.IsSet(key) {
			*dst = a.env.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if a.env.IsSet(key) {
			*dst = a.env.GetInt(key)
		}
	}

	str("server.host", &cfg.Server.Host)
	num("server.port", &cfg.Server.Port)
	str("server.base_url", &cfg.Server.BaseURL)
	str("server.max_body_size", &cfg.Server.MaxBodySize)
	num("server.rate_limit_per_minute", &cfg.Server.RateLimitPerMinute)
	str("database.driver", &cfg.Database.Driver)
	str("database.dsn", &cfg.Database.DSN)
	if a.env.IsSet("database.auto_migrate") {
		cfg.Database.AutoMigrate = a.env.GetBool("database.auto_migrate")
	}
	str("catalog.duplicate_key", &cfg.Catalog.DuplicateKey)
	num("catalog.default_page_size", &cfg.Catalog.DefaultPageSize)
	str("mcp.transport", &cfg.MCP.Transport)
	num("mcp.port", &cfg.MCP.Port)
	str("logging.level", &cfg.Logging.Level)
	str("logging.format", &cfg.Logging.Format)
}
