package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// main is the entry point for the image bridge.
func main() {
	if err := NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewCLI builds the command tree. Running the binary without a subcommand serves.
func NewCLI() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "imagebridge",
		Short: "OpenAI-compatible chat completions front end for image generation",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	serveCmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the gateway",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models [prefix]",
		Short: "List known models",
		Long:  "List the models the gateway knows about and the provider each one routes to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listModels(cmd.OutOrStdout(), args)
		},
	}

	rootCmd.AddCommand(serveCmd, modelsCmd)
	return rootCmd
}

func newLogger(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
