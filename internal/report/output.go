package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(name)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", name)
	}
	return format, nil
}

// Write writes the summary in the specified format
func Write(w io.Writer, s *Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatText:
		return writeText(w, s)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, s *Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

// writeText outputs the summary as human-readable text
func writeText(w io.Writer, s *Summary) error {
	mode := "COMMIT"
	if s.DryRun {
		mode = "DRY RUN"
	}
	fmt.Fprintf(w, "%s  run %s  profile %s  rules %s  (%s)\n", mode, s.RunID, s.Profile, s.RulesVersion, s.State)

	t := s.Totals
	if t.Records == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	fmt.Fprintf(w, "\nRecords analyzed: %d\n", t.Records)
	fmt.Fprintf(w, "  keep:        %d\n", t.Keep)
	fmt.Fprintf(w, "  delete:      %d\n", t.Delete)
	fmt.Fprintf(w, "  duplicates:  %d\n", t.Duplicates)
	fmt.Fprintf(w, "  fixes:       %d", t.Fixes)
	if t.FixesSkipped > 0 {
		fmt.Fprintf(w, " (%d skipped on deleted records)", t.FixesSkipped)
	}
	fmt.Fprintln(w)

	if len(s.Reasons) > 0 {
		fmt.Fprintln(w, "\nReasons:")
		for _, r := range s.Reasons {
			if r.Description != "" {
				fmt.Fprintf(w, "  %-30s %6d  %s\n", r.Code, r.Count, r.Description)
			} else {
				fmt.Fprintf(w, "  %-30s %6d\n", r.Code, r.Count)
			}
		}
	}

	if len(s.Samples) > 0 {
		fmt.Fprintln(w, "\nSamples:")
		for _, r := range s.Reasons {
			samples := s.Samples[r.Code]
			if len(samples) == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s:\n", r.Code)
			for _, sm := range samples {
				fmt.Fprintf(w, "    - [%s] %s\n", sm.ID, quote(sm.Title))
				if sm.City != "" || sm.Date != "" {
					fmt.Fprintf(w, "        city: %s  date: %s\n", orDash(sm.City), orDash(sm.Date))
				}
			}
		}
	}

	if len(s.KeepSamples) > 0 {
		fmt.Fprintln(w, "\nKeeping:")
		for _, sm := range s.KeepSamples {
			fmt.Fprintf(w, "  - [%s] %s\n", sm.ID, quote(sm.Title))
			if sm.City != "" || sm.Date != "" {
				fmt.Fprintf(w, "      city: %s  date: %s\n", orDash(sm.City), orDash(sm.Date))
			}
		}
	}

	if len(s.FixSamples) > 0 {
		fmt.Fprintln(w, "\nFixes:")
		for _, c := range s.FixSamples {
			fmt.Fprintf(w, "  - [%s] %s: %s -> %s  %s\n", c.RecordID, c.Field, quote(c.From), quote(c.To), quote(c.Title))
		}
	}

	if len(s.DuplicateSamples) > 0 {
		fmt.Fprintln(w, "\nDuplicates:")
		for _, d := range s.DuplicateSamples {
			fmt.Fprintf(w, "  - %s: kept %s, removed %s  %s\n", d.Strategy, d.Survivor, strings.Join(d.Losers, ", "), quote(d.Title))
		}
	}

	fmt.Fprintf(w, "\nBefore: %d events, %d with contact\n", s.Before.Total, s.Before.WithContact)
	if s.After != nil {
		fmt.Fprintf(w, "After:  %d events, %d with contact\n", s.After.Total, s.After.WithContact)
	}
	if s.Commit != nil {
		fmt.Fprintf(w, "Written: %d deleted, %d updated\n", s.Commit.Deleted, s.Commit.Updated)
	}
	if v := s.Verification; v != nil {
		if v.OK {
			fmt.Fprintf(w, "Verification: ok (expected %d)\n", v.ExpectedTotal)
		} else {
			fmt.Fprintf(w, "Verification: MISMATCH (expected %d, found %d)\n", v.ExpectedTotal, v.AfterTotal)
		}
	}
	if s.DryRun {
		fmt.Fprintln(w, "\nDry run: no changes were written. Re-run with --confirm to apply.")
	}

	return nil
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
