package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/aqua-events/internal/logger"
	"github.com/pfrederiksen/aqua-events/internal/storage"
)

var flagOut string

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the events collection to a JSON snapshot",
		Long: `Read every event from MongoDB and write it to a JSON snapshot file.
The snapshot can be passed to clean --snapshot to rehearse a profile offline.`,
		Example: `  aqua-events export --out events.json`,
		Args:    cobra.NoArgs,
		RunE:    runExport,
	}

	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Snapshot file to write")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	if flagOut == "" {
		return errors.New("--out is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	store, closeStore, err := openStore(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}

	source := cfg.Mongo.Database + "." + cfg.Mongo.Collection
	if err := storage.WriteSnapshot(flagOut, records, source, time.Now()); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	logger.Info("snapshot written", logger.Fields{"path": flagOut, "events": len(records)})
	fmt.Fprintf(stdout(cmd), "Exported %d events to %s\n", len(records), flagOut)
	return nil
}
