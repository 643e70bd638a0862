package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filmvault/filmvault/internal/server"
	"github.com/filmvault/filmvault/internal/telemetry"
)

const banner = `
 ___ _ _       __   __         _ _
| __(_) |_ __  \ \ / /_ _ _  _| | |_
| _|| | | '  \  \ V / _' | || | |  _|
|_| |_|_|_|_|_|  \_/\__,_|\_,_|_|\__|
`

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the FilmVault API server",
		Long:  "Start the HTTP server that exposes the movie catalogue and its stored procedures as a REST API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "HTTP listen port")
	cmd.Flags().String("host", "0.0.0.0", "HTTP listen host")
	a.env.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	a.env.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	metrics := telemetry.New()
	cfg, st, svc, logger, err := a.bootstrap(cmd.Context(), metrics)
	if err != nil {
		return err
	}
	if err := metrics.RegisterCatalog(st.Counts); err != nil {
		st.Close()
		return fmt.Errorf("register catalogue metrics: %w", err)
	}

	bodyLimit, err := cfg.Server.BodyLimit()
	if err != nil {
		st.Close()
		return err
	}
	shutdown, err := cfg.Server.Shutdown()
	if err != nil {
		st.Close()
		return err
	}

	srv := server.New(server.Config{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		ShutdownTimeout:    shutdown,
		CORSOrigins:        cfg.Server.CORS.Origins,
		MaxBodySize:        bodyLimit,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		DefaultPageSize:    cfg.Catalog.DefaultPageSize,
		BaseURL:            cfg.Server.BaseURL,
		Version:            a.versionString(),
	}, server.Deps{
		Store:      st,
		Catalog:    svc.catalog,
		Procedures: svc.procs,
		Metrics:    metrics,
	}, logger)

	out := cmd.OutOrStdout()
	fmt.Fprint(out, banner)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "→ FilmVault %s\n", a.versionString())
	fmt.Fprintf(out, "→ Listening on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Fprintf(out, "→ API:        http://%s:%d/api/v1\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Fprintf(out, "→ OpenAPI:    http://%s:%d/openapi.json\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Fprintf(out, "→ Health:     http://%s:%d/healthz\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Fprintf(out, "→ Database:   %s (%s)\n", cfg.Database.Driver, redactDSN(cfg.Database.DSN))
	fmt.Fprintln(out)

	// The server closes the store on shutdown.
	return srv.ListenAndServe()
}
