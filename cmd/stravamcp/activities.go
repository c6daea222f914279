package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/core"
	"github.com/sandevgo/stravamcp/internal/providers/mcp"
	mcpsrv "github.com/sandevgo/stravamcp/internal/transport/mcp"
	"github.com/sandevgo/stravamcp/pkg/log"
	"github.com/spf13/cobra"
)

var activitiesFlags struct {
	count int
	all   bool
	url   string
	spawn bool
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List activities through an MCP server",
	Long: `Calls get_recent_activities on a running server (--url, default from
SERVER_HOST/SERVER_PORT) or on a child 'serve --transport stdio' (--spawn)
and prints the JSON result.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := loadEnv(envFile)

		ctx, flushLog := setupLogger(cmd.Context(), os.Stderr)
		defer flushLog()
		env.log(ctx)

		logger := log.FromCtx(ctx)

		serverCfg, err := clientConfig()
		if err != nil {
			return err
		}
		if serverCfg.URL == "" && !activitiesFlags.spawn {
			serverCfg.URL = config.NewServerConfig(ctx).GetEndpointURL()
		}

		cli, err := mcp.Connect(ctx, serverCfg)
		if err != nil {
			return err
		}
		defer cli.Close()

		cli.OnMessage(func(level mcpproto.LoggingLevel, message string) {
			logger.Warn().Str("level", string(level)).Msg(message)
		})

		out, err := cli.CallTool(ctx, mcpsrv.ToolGetRecentActivities, map[string]any{
			"num_activities": activitiesFlags.count,
			"all_activities": activitiesFlags.all,
		})
		if err != nil {
			return err
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, []byte(out), "", "  "); err != nil {
			// not JSON, print as is
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
		return nil
	},
}

func init() {
	activitiesCmd.Flags().IntVarP(&activitiesFlags.count, "num", "n", core.DefaultActivityCount, "number of activities")
	activitiesCmd.Flags().BoolVar(&activitiesFlags.all, "all", false, "fetch the complete activity history")
	activitiesCmd.Flags().StringVar(&activitiesFlags.url, "url", "", "MCP endpoint URL of a running server")
	activitiesCmd.Flags().BoolVar(&activitiesFlags.spawn, "spawn", false, "run a private stdio server instead of connecting to one")
	activitiesCmd.MarkFlagsMutuallyExclusive("url", "spawn")
	rootCmd.AddCommand(activitiesCmd)
}

func clientConfig() (mcp.ServerConfig, error) {
	if !activitiesFlags.spawn {
		return mcp.ServerConfig{URL: activitiesFlags.url}, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return mcp.ServerConfig{}, fmt.Errorf("locate executable: %w", err)
	}

	args := []string{"serve", "--transport", string(config.TransportStdio), "--env-file", envFile}
	if debug {
		args = append(args, "--debug")
	}
	return mcp.ServerConfig{Command: exe, Args: args}, nil
}
