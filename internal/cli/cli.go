package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/aqua-events/internal/config"
	"github.com/pfrederiksen/aqua-events/internal/logger"
	"github.com/pfrederiksen/aqua-events/internal/pipeline"
	"github.com/pfrederiksen/aqua-events/internal/storage"
	"github.com/pfrederiksen/aqua-events/internal/store/mongostore"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aqua-events",
		Short: "Clean up the aquatic events calendar",
		Long: `A CLI tool that audits the events collection of the aquatic events calendar.
It flags scraped garbage and incomplete events, removes duplicates and fixes
misplaced cities. Every run can be rehearsed with --dry-run or against a
local snapshot before anything is written.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file (default $AQUA_EVENTS_CONFIG)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(
		newCleanCmd(),
		newExportCmd(),
		newDiffCmd(),
		newHistoryCmd(),
		newProfilesCmd(),
	)

	return cmd
}

// loadConfig reads the configuration and points the default logger at the
// command's stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	level := logger.LevelDebug
	if !flagVerbose {
		if level, err = logger.ParseLevel(cfg.Run.LogLevel); err != nil {
			return nil, fmt.Errorf("run.logLevel: %w", err)
		}
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	if cfg.Path != "" {
		logger.Debug("configuration loaded", logger.Fields{"path": cfg.Path})
	}
	return cfg, nil
}

// openStore returns the snapshot store when snapshot is set, MongoDB otherwise.
// The returned close function is never nil.
func openStore(ctx context.Context, cfg *config.Config, snapshot string) (pipeline.Store, func(), error) {
	if snapshot != "" {
		s, err := storage.New(snapshot)
		if err != nil {
			return nil, nil, fmt.Errorf("opening snapshot: %w", err)
		}
		logger.Info("using snapshot store", logger.Fields{"path": s.Path()})
		return s, func() {}, nil
	}

	if err := cfg.RequireMongo(); err != nil {
		return nil, nil, err
	}
	s, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := s.Close(context.Background()); err != nil {
			logger.Warn("closing mongodb connection", logger.Fields{"error": err.Error()})
		}
	}
	return s, closeFn, nil
}

func stdout(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
