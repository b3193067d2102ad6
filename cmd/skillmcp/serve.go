package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jingkaihe/skillmcp/pkg/config"
	"github.com/jingkaihe/skillmcp/pkg/logger"
	"github.com/jingkaihe/skillmcp/pkg/mcp"
	"github.com/jingkaihe/skillmcp/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server exposing the skills in the skills directory as tools:

  get_available_skills     list every skill with its name, description and path
  get_skill_details        read a skill's SKILL.md and list its files
  get_skill_related_file   read one file inside a skill directory

With the stdio transport the server speaks JSON-RPC on stdin/stdout and logs to
stderr. With the sse (or http) transport it listens on --host:--port and serves
/sse and /message until interrupted with Ctrl+C.

Examples:
  skillmcp serve --skills-dir ./skills
  skillmcp serve -s ./skills --transport sse --port 8000
  SKILLS_DIR=./skills MCP_TRANSPORT=sse skillmcp serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServeCommand(cmd.Context(), appConfig, newPresenter(cmd))
	},
}

func init() {
	defaults := viper.New()
	config.SetDefaults(defaults)

	serveCmd.Flags().StringP("transport", "t", defaults.GetString("mcp.transport"), "MCP transport (stdio, sse, http)")
	serveCmd.Flags().String("host", defaults.GetString("mcp.host"), "Host to listen on for sse/http transports")
	serveCmd.Flags().IntP("port", "p", defaults.GetInt("mcp.port"), "Port to listen on for sse/http transports")
	serveCmd.Flags().String("base-url", "", "Externally visible base URL advertised to SSE clients")

	viper.BindPFlag("mcp.transport", serveCmd.Flags().Lookup("transport"))
	viper.BindPFlag("mcp.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("mcp.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("mcp.base_url", serveCmd.Flags().Lookup("base-url"))

	rootCmd.AddCommand(withTracing(serveCmd))
}

func runServeCommand(ctx context.Context, cfg config.Config, p presenter.Presenter) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid server configuration")
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	server := mcp.NewServer(registry)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.G(ctx).
		WithField("skills_dir", registry.Root()).
		WithField("transport", cfg.MCP.Transport).
		WithField("skills", len(registry.Discover(ctx))).
		Info("starting skill server")

	if cfg.MCP.Transport == config.TransportStdio {
		// stdout carries the protocol, so nothing else may be printed to it
		return server.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
	return serveSSE(ctx, server, cfg.MCP, p)
}

func serveSSE(ctx context.Context, server *mcp.Server, cfg config.MCPConfig, p presenter.Presenter) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	sse := server.NewSSEServer(addr, cfg.BaseURL)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- sse.Start(ctx)
	}()

	p.Success("MCP server started successfully")
	p.Info("SSE endpoint: http://" + addr + "/sse")
	p.Info("Press Ctrl+C to stop the server")

	select {
	case err := <-serverErr:
		if err != nil {
			logger.G(ctx).WithError(err).Error("MCP server error")
			return err
		}
	case <-ctx.Done():
		p.Info("Shutdown signal received, stopping server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := sse.Shutdown(shutdownCtx); err != nil {
			logger.G(ctx).WithError(err).Error("failed to shutdown MCP server gracefully")
			return err
		}
	}

	p.Info("MCP server stopped")
	return nil
}
