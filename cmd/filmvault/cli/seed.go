package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/filmvault/filmvault/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load a YAML catalogue fixture",
		Long: `Load directors, actors, movies, their links and facts from a YAML file.
Rows that already exist are skipped, so seeding the same file twice is safe.`,
		Example: `  filmvault seed catalog.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSeed(cmd, args[0])
		},
	}
	return cmd
}

func (a *app) runSeed(cmd *cobra.Command, path string) error {
	fixture, err := seed.Load(path)
	if err != nil {
		return err
	}

	_, st, svc, logger, err := a.bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer st.Close()

	rep, err := seed.New(svc.catalog, logger).Apply(cmd.Context(), fixture)
	if rep != nil {
		printReport(cmd, rep)
	}
	return err
}

func printReport(cmd *cobra.Command, rep *seed.Report) {
	out := cmd.OutOrStdout()
	kinds := make(map[string]bool)
	for k := range rep.Created {
		kinds[k] = true
	}
	for k := range rep.Skipped {
		kinds[k] = true
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%-16s %8s %8s\n", "KIND", "CREATED", "SKIPPED")
	for _, k := range names {
		fmt.Fprintf(out, "%-16s %8d %8d\n", k, rep.Created[k], rep.Skipped[k])
	}
}
