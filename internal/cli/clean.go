package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/aqua-events/internal/archive"
	"github.com/pfrederiksen/aqua-events/internal/cities"
	"github.com/pfrederiksen/aqua-events/internal/config"
	"github.com/pfrederiksen/aqua-events/internal/dedup"
	"github.com/pfrederiksen/aqua-events/internal/fixes"
	"github.com/pfrederiksen/aqua-events/internal/logger"
	"github.com/pfrederiksen/aqua-events/internal/metrics"
	"github.com/pfrederiksen/aqua-events/internal/pipeline"
	"github.com/pfrederiksen/aqua-events/internal/report"
	"github.com/pfrederiksen/aqua-events/internal/rules"
)

var (
	flagProfile     string
	flagDryRun      bool
	flagConfirm     bool
	flagGrace       time.Duration
	flagSnapshot    string
	flagArchive     string
	flagMetricsFile string
	flagSamples     int
	flagFormat      string
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Analyze the events collection and apply a cleanup profile",
		Long: `Analyze every event with the rules of a profile, group duplicates and
propose field corrections. With --dry-run nothing is written. Otherwise the
deletions and corrections are committed after --confirm and a grace period
during which an interrupt aborts the run.`,
		Example: `  # Rehearse the full profile
  aqua-events clean --dry-run

  # Commit the duplicates profile and archive what gets deleted
  aqua-events clean --profile duplicates --confirm --archive ~/.aqua-events/archive.db

  # Work on a local export instead of MongoDB
  aqua-events clean --snapshot events.json --confirm --grace 0`,
		Args: cobra.NoArgs,
		RunE: runClean,
	}

	cmd.Flags().StringVarP(&flagProfile, "profile", "p", "", "Cleanup profile (default from config, then \"full\")")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&flagConfirm, "confirm", false, "Allow writes to the collection")
	cmd.Flags().DurationVar(&flagGrace, "grace", -1, "Pause before the first write (default from config, then 5s)")
	cmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "Use a JSON snapshot file instead of MongoDB")
	cmd.Flags().StringVar(&flagArchive, "archive", "", "SQLite file receiving deleted documents")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	cmd.Flags().IntVar(&flagSamples, "samples", 0, "Samples per report bucket (negative disables)")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	if flagDryRun && flagConfirm {
		return errors.New("--dry-run and --confirm are mutually exclusive")
	}

	format, err := report.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	profile, err := cfg.Profile(flagProfile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	log := logger.Default().With(logger.Fields{"run_id": runID})

	deps, err := buildDeps(profile)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, flagSnapshot)
	if err != nil {
		return err
	}
	defer closeStore()
	deps.Store = store

	archivePath := firstNonEmpty(flagArchive, cfg.Run.Archive)
	if archivePath != "" && !flagDryRun {
		a, err := archive.Open(archivePath)
		if err != nil {
			return err
		}
		defer a.Close()
		deps.Archiver = a
		log.Debug("archive opened", logger.Fields{"path": archivePath})
	}

	grace := cfg.Run.Grace
	if flagGrace >= 0 {
		grace = flagGrace
	}
	deps.Gate = &pipeline.ConfirmGate{
		Confirmed: flagConfirm,
		Grace:     grace,
		Out:       cmd.ErrOrStderr(),
	}

	m := metrics.New(profile.Name, flagDryRun)

	started := time.Now()
	runner := pipeline.NewRunner(deps, pipeline.Options{
		DryRun:  flagDryRun,
		RunID:   runID,
		Profile: profile.Name,
	})
	plan, runErr := runner.Run(ctx)
	finished := time.Now()

	if plan != nil {
		samples := cfg.Run.Samples
		if flagSamples != 0 {
			samples = flagSamples
		}
		summary := report.Summarize(plan, report.Options{
			Samples:      samples,
			Descriptions: descriptions(rules.DefaultTable(), deps.Classifier.Active()),
		})
		if err := report.Write(stdout(cmd), summary, format); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		m.ObservePlan(plan)
	}
	m.ObserveRun(started, finished, runErr)

	metricsPath := firstNonEmpty(flagMetricsFile, cfg.Run.MetricsFile)
	if err := m.WriteTextfile(metricsPath); err != nil {
		log.Warn("failed to write metrics file", logger.Fields{"path": metricsPath, "error": err.Error()})
	}

	return runErr
}

// buildDeps turns a profile into the analysis collaborators of a run.
func buildDeps(profile config.Profile) (pipeline.Deps, error) {
	codes, err := profile.Codes()
	if err != nil {
		return pipeline.Deps{}, err
	}
	strategies, err := profile.Strategies()
	if err != nil {
		return pipeline.Deps{}, err
	}
	correctors, err := fixes.New(profile.Correctors, cities.Known)
	if err != nil {
		return pipeline.Deps{}, err
	}

	params := profile.Params()
	params.Now = time.Now().UTC()

	logger.Debug("profile selected", logger.Fields{
		"profile":    profile.Name,
		"rules":      len(codes),
		"correctors": len(correctors),
		"dedup":      len(strategies),
	})

	return pipeline.Deps{
		Classifier: rules.NewClassifier(rules.DefaultTable(), codes, params),
		Correctors: correctors,
		Grouper:    dedup.New(strategies...),
		Clock:      time.Now,
	}, nil
}

// descriptions maps the active codes and the duplicate reason to report text.
func descriptions(table rules.Table, active []rules.Code) map[rules.Code]string {
	out := map[rules.Code]string{rules.Duplicate: "superseded by a newer copy"}
	for _, code := range active {
		if r, ok := table.Lookup(code); ok {
			out[code] = r.Description
		}
	}
	return out
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
