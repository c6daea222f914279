package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/providers/strava"
	"github.com/sandevgo/stravamcp/internal/service/activities"
	"github.com/sandevgo/stravamcp/internal/transport/mcp"
	"github.com/sandevgo/stravamcp/pkg/log"
	"github.com/sandevgo/stravamcp/pkg/srv"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	host      string
	port      int
	transport string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the activity tools over MCP",
	Long: `Starts the MCP server exposing get_recent_activities and get_activities,
over streamable HTTP (default) or stdio.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env := loadEnv(envFile)

		// stdout carries the protocol on stdio
		out := os.Stdout
		if resolveTransport(cmd) == config.TransportStdio {
			out = os.Stderr
		}

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, out)
		defer flushLog()
		env.log(ctx)

		serverCfg := config.NewServerConfig(ctx)
		applyServeFlags(cmd, serverCfg)
		if err := serverCfg.Validate(); err != nil {
			return err
		}
		stravaCfg := config.NewStravaConfig(ctx)

		logger := log.FromCtx(ctx)
		logger.Info().
			Str("version", rootCmd.Version).
			Str("transport", string(serverCfg.Transport)).
			Msg("starting strava mcp server")

		if err := srv.Run(ctx, NewServices(ctx, serverCfg, stravaCfg)); err != nil {
			return err
		}

		logger.Info().Msg("strava mcp server has been shut down gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "listen host (SERVER_HOST)")
	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 0, "listen port (SERVER_PORT)")
	serveCmd.Flags().StringVarP(&serveFlags.transport, "transport", "t", "", "MCP transport: http or stdio (MCP_TRANSPORT)")
	rootCmd.AddCommand(serveCmd)
}

func resolveTransport(cmd *cobra.Command) config.Transport {
	if cmd.Flags().Changed("transport") {
		return config.Transport(serveFlags.transport)
	}
	return config.Transport(os.Getenv("MCP_TRANSPORT"))
}

// applyServeFlags lets explicit flags override the environment.
func applyServeFlags(cmd *cobra.Command, cfg *config.ServerConfig) {
	if cmd.Flags().Changed("host") {
		cfg.Host = serveFlags.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = serveFlags.port
	}
	if cmd.Flags().Changed("transport") {
		cfg.Transport = config.Transport(serveFlags.transport)
	}
}

func NewServices(ctx context.Context, serverCfg *config.ServerConfig, stravaCfg *config.StravaConfig) []srv.Service {
	logger := log.FromCtx(ctx)

	if stravaCfg.RefreshToken == "" {
		logger.Warn().Msg("STRAVA_REFRESH_TOKEN is not set, tool calls will fail until you run 'stravamcp auth'")
	}
	logger.Debug().
		Str("client_id", stravaCfg.ClientID).
		Str("client_secret", log.Mask(stravaCfg.ClientSecret)).
		Str("refresh_token", log.Mask(stravaCfg.RefreshToken)).
		Str("api", stravaCfg.APIURL).
		Msg("strava config")

	// 1. Strava provider
	client := strava.NewHTTPClient(stravaCfg.RequestTimeout)
	refresher := strava.NewRefresher(stravaCfg, client)
	fetcher := strava.NewFetcher(stravaCfg, client)

	// 2. Tool entry point
	svc := activities.NewService(refresher, fetcher)
	mcpServer := mcp.NewServer(mcp.NewActivityTools(svc))

	services := []srv.Service{
		srv.NewCleanup("strava http client", func() error {
			client.CloseIdleConnections()
			return nil
		}),
	}

	// 3. Transport
	switch serverCfg.Transport {
	case config.TransportStdio:
		services = append(services, mcp.NewStdioService(mcpServer, os.Stdin, os.Stdout))
	default:
		services = append(services, mcp.NewHTTPService(serverCfg, mcpServer))
	}

	return services
}
