package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/aqua-events/internal/report"
	"github.com/pfrederiksen/aqua-events/internal/storage"
)

var (
	flagDiffBefore string
	flagDiffAfter  string
	flagDiffFormat string
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare two event snapshots",
		Long: `Compare two snapshots by event id and list removed and added events and
changed fields. Export before and after a committed run to review what it did.`,
		Example: `  aqua-events export --out before.json
  aqua-events clean --confirm
  aqua-events export --out after.json
  aqua-events diff --before before.json --after after.json`,
		Args: cobra.NoArgs,
		RunE: runDiff,
	}

	cmd.Flags().StringVar(&flagDiffBefore, "before", "", "Snapshot taken before the run")
	cmd.Flags().StringVar(&flagDiffAfter, "after", "", "Snapshot taken after the run")
	cmd.Flags().StringVarP(&flagDiffFormat, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	if flagDiffBefore == "" || flagDiffAfter == "" {
		return errors.New("--before and --after are required")
	}
	format, err := report.ParseFormat(flagDiffFormat)
	if err != nil {
		return err
	}

	before, err := loadExisting(flagDiffBefore)
	if err != nil {
		return err
	}
	after, err := loadExisting(flagDiffAfter)
	if err != nil {
		return err
	}

	d := storage.Diff(before, after)
	if format == report.FormatJSON {
		return writeJSON(stdout(cmd), d)
	}
	return writeDiff(stdout(cmd), d)
}

// loadExisting loads a snapshot that must exist; LoadSnapshot alone treats a
// missing file as empty.
func loadExisting(path string) (*storage.Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	s, err := storage.LoadSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s, nil
}

func writeDiff(w io.Writer, d *storage.DiffResult) error {
	if d.Empty() {
		_, err := fmt.Fprintln(w, "No differences.")
		return err
	}

	fmt.Fprintf(w, "Removed: %d  Added: %d  Changed fields: %d\n", len(d.Removed), len(d.Added), len(d.Changes))
	for _, id := range d.Removed {
		fmt.Fprintf(w, "  - %s\n", id)
	}
	for _, id := range d.Added {
		fmt.Fprintf(w, "  + %s\n", id)
	}
	for _, c := range d.Changes {
		if _, err := fmt.Fprintf(w, "  ~ %s %s: %q -> %q\n", c.EventID, c.Field, c.Old, c.New); err != nil {
			return err
		}
	}
	return nil
}
