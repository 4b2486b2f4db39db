package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/stella/internal/config"
	errUtils "github.com/StinkyLord/stella/internal/errors"
)

const toolVersion = "1.0.0"

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "stella",
	Short: "Meta-build generator for C++ components",
	Long: `stella reads a component's stella.yaml, fetches its dependencies
into deps/, merges their sources and headers into the component and writes
a build.ninja that builds everything from source in one pass.

Each dependency is fetched once no matter how many components declare it.
A dependency without its own stella.yaml can be described inline by the
component that depends on it (the stella-yaml key).`,
	Version:           toolVersion,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringP(config.KeyDir, "d", ".", "Path to the component root (the directory holding stella.yaml)")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "Log level: debug, info, warn or error")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	v, err := config.Viper(cmd.Flags())
	if err != nil {
		return err
	}

	cfg, err = config.Load(v)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.LogLevel)
	log.Debug("Loaded configuration", "workspace", cfg.Workspace, "profile", cfg.Profile)
	return nil
}

// Execute runs the root command. An interrupt cancels in-flight fetches.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errUtils.Format(err))
		os.Exit(1)
	}
}
