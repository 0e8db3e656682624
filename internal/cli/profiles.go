package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the available cleanup profiles",
		Args:  cobra.NoArgs,
		RunE:  runProfiles,
	}
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := stdout(cmd)
	for _, name := range cfg.ProfileNames() {
		p, err := cfg.Profile(name)
		if err != nil {
			return err
		}
		marker := " "
		if name == cfg.Run.Profile {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-12s %s\n", marker, name, p.Description)
		if len(p.Rules) > 0 {
			fmt.Fprintf(w, "    rules:      %s\n", strings.Join(p.Rules, ", "))
		}
		if len(p.Correctors) > 0 {
			fmt.Fprintf(w, "    correctors: %s\n", strings.Join(p.Correctors, ", "))
		}
		if len(p.Dedup) > 0 {
			fmt.Fprintf(w, "    dedup:      %s\n", strings.Join(p.Dedup, ", "))
		}
	}
	return nil
}
