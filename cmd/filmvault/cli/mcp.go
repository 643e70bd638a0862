package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	fmcp "github.com/filmvault/filmvault/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol (MCP) server that exposes the movie catalogue
as tools and resources for AI agents. Supports stdio (default) and HTTP transports.

In stdio mode, the MCP server communicates over stdin/stdout using JSON-RPC,
suitable for direct integration with desktop MCP clients. Logs go to stderr.

In HTTP mode, the server listens on the specified port for streamable HTTP connections.`,
		Example: `  filmvault mcp                               # stdio mode
  filmvault mcp --transport http --port 3001  # HTTP mode`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMCP(cmd)
		},
	}

	cmd.Flags().String("transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().Int("port", 3001, "HTTP port (only used with --transport http)")
	a.env.BindPFlag("mcp.transport", cmd.Flags().Lookup("transport"))
	a.env.BindPFlag("mcp.port", cmd.Flags().Lookup("port"))

	return cmd
}

func (a *app) runMCP(cmd *cobra.Command) error {
	cfg, st, svc, logger, err := a.bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer st.Close()

	mcpSrv := fmcp.NewMCPServer(svc.catalog, svc.procs, st, a.versionString(), logger)

	switch cfg.MCP.Transport {
	case "stdio":
		return mcpSrv.ServeStdio()
	case "http":
		addr := fmt.Sprintf(":%d", cfg.MCP.Port)
		logger.Info("starting MCP HTTP server", "addr", addr)
		return mcpSrv.ServeHTTP(addr)
	default:
		return fmt.Errorf("unsupported transport %q; use 'stdio' or 'http'", cfg.MCP.Transport)
	}
}
