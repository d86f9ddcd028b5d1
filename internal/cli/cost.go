package cli

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netscore/pkg/cost"
	"github.com/matzehuels/netscore/pkg/pipeline"
)

func (c *CLI) costCommand() *cobra.Command {
	var (
		deps    bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "cost <package> <version>",
		Short: "Compute the install cost of a package version",
		Long: `Compute the standalone and transitive install cost of an npm package
version in megabytes. With --deps every package in the dependency closure
is listed.`,
		Example: `  netscore cost express 4.18.2
  netscore cost express 4.18.2 --deps --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, _, err := c.runner(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			prog := newProgress(loggerFromContext(ctx))
			id, entries, err := r.Costs.CostOf(ctx, args[0], args[1], deps)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Costed %s@%s", args[0], args[1]))

			rows := costRows(cmd, r, id, entries)
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
			}
			printCostTable(cmd.OutOrStdout(), rows)
			if !deps {
				fmt.Fprintln(cmd.OutOrStdout())
				printNextStep(cmd.OutOrStdout(), "List every dependency", fmt.Sprintf("%s cost %s %s --deps", appName, args[0], args[1]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&deps, "deps", "d", false, "include every package in the dependency closure")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON instead of a table")

	return cmd
}

type costRow struct {
	ID      cost.ID `json:"id"`
	Package string  `json:"package"`
	cost.Entry
}

// costRows labels entries as name@version, root first and the rest sorted.
func costRows(cmd *cobra.Command, r *pipeline.Runner, root cost.ID, entries map[cost.ID]cost.Entry) []costRow {
	rows := make([]costRow, 0, len(entries))
	for id, e := range entries {
		label := id.String()
		if pkg, err := r.Packages.Lookup(cmd.Context(), id); err == nil {
			label = pkg.Name + "@" + pkg.Version
		}
		rows = append(rows, costRow{ID: id, Package: label, Entry: e})
	}
	slices.SortFunc(rows, func(a, b costRow) int {
		switch {
		case a.ID == root:
			return -1
		case b.ID == root:
			return 1
		}
		return cmp.Compare(a.Package, b.Package)
	})
	return rows
}

func printCostTable(w io.Writer, rows []costRow) {
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%-24s %13s   %13s", "package", "standalone", "total")))
	for _, row := range rows {
		printCostRow(w, row.Package, row.StandaloneCost, row.TotalCost, row.Failed)
	}
	if len(rows) > 1 {
		printKeyValue(w, "packages", fmt.Sprint(len(rows)))
	}
}
