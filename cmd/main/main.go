// Command emotegen renders emote variants from species declarations.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	config     *Config
	logger     *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "emotegen",
		Short: "Render emote variants from species declarations",
		Long: `emotegen renders every variant of a species declaration into SVG files.

A species is a directory with a species.toml (or .yaml/.json) descriptor and
templates/, variants/ and assets/ subdirectories. Variants are Go text
templates that can pull in other variants, assets and partials, including
those of the species they inherit from.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "emotegen.json", "Config file path (JSON)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides the config")

	cmd.AddCommand(
		a.generateCmd(),
		a.listCmd(),
		a.snuggleCmd(),
		a.cleanCmd(),
		a.runsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return nil
			},
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "emotegen %s (commit %s, built %s)\n", Version, Commit, BuildDate)
			},
		},
	)
	return cmd
}

// load loads the configuration and builds the logger.
func (a *app) load() error {
	config, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		config.Generator.LogLevel = a.logLevel
	}
	a.config = config
	a.logger = newLogger(os.Stderr, config.Generator.LogLevel)
	return nil
}
