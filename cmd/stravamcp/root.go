package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/core"
	"github.com/sandevgo/stravamcp/internal/service/ui"
	"github.com/sandevgo/stravamcp/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug   bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:     "stravamcp",
	Short:   "Strava activities as MCP tools",
	Long:    `stravamcp serves the authenticated athlete's Strava activities to MCP clients.`,
	Version: core.AppVersion,
}

func Execute() {
	CustomizeHelp(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.GetEnvFilePath(), "dotenv file holding the Strava credentials")
}

// envResult is the outcome of loading the env file, logged once the logger
// exists.
type envResult struct {
	path   string
	loaded bool
	err    error
}

// loadEnv preloads the env file. A missing file is not an error; variables
// already set in the environment win.
func loadEnv(path string) envResult {
	if path == "" {
		return envResult{}
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return envResult{path: path}
		}
		return envResult{path: path, err: err}
	}
	if err := godotenv.Load(path); err != nil {
		return envResult{path: path, err: err}
	}
	return envResult{path: path, loaded: true}
}

func (r envResult) log(ctx context.Context) {
	logger := log.FromCtx(ctx)
	switch {
	case r.err != nil:
		logger.Warn().Err(r.err).Str("path", r.path).Msg("failed to load .env file")
	case r.loaded:
		logger.Debug().Str("path", r.path).Msg("loaded .env file")
	}
}

func setupLogger(ctx context.Context, out io.Writer) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug, out)
}

func CustomizeHelp(rootCmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleTitle", func(s string) string { return ui.TitleStyle.Render(s) })
	cobra.AddTemplateFunc("StyleUsage", func(s string) string { return ui.UsageStyle.Render(s) })
	cobra.AddTemplateFunc("StyleFlag", func(s string) string { return ui.FlagStyle.Render(s) })
	cobra.AddTemplateFunc("StyleDesc", func(s string) string { return ui.DescStyle.Render(s) })

	template := `
{{StyleTitle "USAGE"}}
  {{StyleUsage .UseLine}}
{{if gt (len .Commands) 0}}{{StyleTitle "AVAILABLE COMMANDS"}}
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding}} {{StyleDesc .Short}}{{end}}
{{end}}{{end}}
{{if .HasAvailableLocalFlags}}{{StyleTitle "FLAGS"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}{{StyleTitle "GLOBAL FLAGS"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
`
	rootCmd.SetHelpTemplate(template)
}
