package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/providers/strava"
	"github.com/sandevgo/stravamcp/internal/service/authorizer"
	"github.com/sandevgo/stravamcp/internal/service/ui"
	"github.com/sandevgo/stravamcp/pkg/log"
	"github.com/spf13/cobra"
)

var noBrowser bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize with Strava and save a refresh token",
	Long: `Runs the one-time OAuth consent flow: opens the Strava authorization page,
reads back the redirect URL, exchanges the code for tokens and writes
STRAVA_CLIENT_ID, STRAVA_CLIENT_SECRET and STRAVA_REFRESH_TOKEN to the env file.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := loadEnv(envFile)

		// the wizard owns stdout
		ctx, flushLog := setupLogger(cmd.Context(), os.Stderr)
		defer flushLog()
		env.log(ctx)

		logger := log.FromCtx(ctx)
		logger.Debug().Str("env_file", envFile).Msg("starting strava authorization")

		stravaCfg := config.NewStravaConfig(ctx)
		client := strava.NewHTTPClient(stravaCfg.RequestTimeout)
		defer client.CloseIdleConnections()

		state, err := authorizer.RunWizard(ctx, authorizer.Options{
			Config:    stravaCfg,
			Client:    client,
			EnvPath:   envFile,
			NoBrowser: noBrowser,
		})
		if err != nil {
			return err
		}

		printAuthSummary(cmd.OutOrStdout(), state)
		return nil
	},
}

func init() {
	authCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the consent URL instead of opening a browser")
	rootCmd.AddCommand(authCmd)
}

func printAuthSummary(w io.Writer, state *authorizer.AuthState) {
	fmt.Fprintln(w, ui.TitleStyle.Render("Strava authorization complete"))

	fmt.Fprintf(w, "Refresh token:  %s\n", ui.SecretStyle.Render(state.Grant.RefreshToken))
	fmt.Fprintf(w, "Access token:   %s (expires %s)\n",
		log.Mask(state.Grant.AccessToken), state.Grant.ExpiresAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Granted scope:  %s\n", state.Scope)
	fmt.Fprintf(w, "Saved to:       %s (%s)\n", state.EnvPath, strings.Join([]string{
		authorizer.EnvClientID, authorizer.EnvClientSecret, authorizer.EnvRefreshToken,
	}, ", "))

	for _, warning := range state.Warnings {
		fmt.Fprintln(w, ui.WarnStyle.Render("warning: ")+warning)
	}

	fmt.Fprintln(w, ui.DescStyle.Render("\nRun 'stravamcp serve' to start the MCP server."))
}
