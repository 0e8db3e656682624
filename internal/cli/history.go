package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/aqua-events/internal/archive"
	"github.com/pfrederiksen/aqua-events/internal/report"
)

var (
	flagHistoryArchive string
	flagHistoryRun     string
	flagHistoryFormat  string
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs and documents kept in the deletion archive",
		Example: `  # Runs, newest first
  aqua-events history --archive archive.db

  # Documents deleted by one run
  aqua-events history --archive archive.db --run 4f6c0e1a-...`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().StringVar(&flagHistoryArchive, "archive", "", "SQLite archive file (default from config)")
	cmd.Flags().StringVar(&flagHistoryRun, "run", "", "Show the documents of one run")
	cmd.Flags().StringVarP(&flagHistoryFormat, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(flagHistoryFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := firstNonEmpty(flagHistoryArchive, cfg.Run.Archive)
	if path == "" {
		return errors.New("no archive configured (use --archive or run.archive)")
	}

	a, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)
	w := stdout(cmd)

	if flagHistoryRun == "" {
		runs, err := a.Runs(ctx)
		if err != nil {
			return err
		}
		if format == report.FormatJSON {
			return writeJSON(w, runs)
		}
		return writeRuns(w, runs)
	}

	entries, err := a.Entries(ctx, flagHistoryRun)
	if err != nil {
		return err
	}
	if format == report.FormatJSON {
		return writeJSON(w, entries)
	}
	return writeEntries(w, flagHistoryRun, entries)
}

func writeRuns(w io.Writer, runs []archive.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No archived runs.")
		return err
	}
	for _, r := range runs {
		if _, err := fmt.Fprintf(w, "%s  %s  %d deleted\n",
			r.ArchivedAt.Format("2006-01-02 15:04:05"), r.RunID, r.Count); err != nil {
			return err
		}
	}
	return nil
}

func writeEntries(w io.Writer, runID string, entries []archive.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "No documents archived for run %s.\n", runID)
		return err
	}
	fmt.Fprintf(w, "Run %s: %d deleted\n\n", runID, len(entries))
	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		if _, err := fmt.Fprintf(w, "  %s  %q  [%s]\n", e.EventID, title, strings.Join(e.Reasons, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
