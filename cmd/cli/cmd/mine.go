// Package cmd - mine command
package cmd

import (
	"github.com/spf13/cobra"

	"basket-rules/adapters/storage"
	"basket-rules/core/output"
	"basket-rules/core/ui"
)

type mineOptions struct {
	mining miningFlags
	format string
	limit  int
	save   bool
}

// newMineCmd represents the mine command
func newMineCmd(a *app) *cobra.Command {
	o := &mineOptions{}
	cmd := &cobra.Command{
		Use:   "mine [csv]",
		Short: "Mine association rules from a transactions CSV",
		Long: `Group transactions into monthly baskets, find frequent service sets and
print the association rules that pass the metric threshold, best lift first.

The CSV needs the columns UserId, ServiceId, CategoryId and CreateDate. Use
'-' to read from standard input.

Examples:
  basket-rules mine transactions.csv
  basket-rules mine --min-support 0.05 --metric confidence --min-threshold 0.6 transactions.csv
  basket-rules mine --format json --limit 20 transactions.csv
  basket-rules mine --save transactions.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(cmd, args, a, o)
		},
	}

	o.mining.register(cmd)
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format (cli, json, markdown, csv)")
	cmd.Flags().IntVarP(&o.limit, "limit", "l", 0, "print at most this many rules (0 = all)")
	cmd.Flags().BoolVar(&o.save, "save", false, "store the rules as a snapshot")
	return cmd
}

func runMine(cmd *cobra.Command, args []string, a *app, o *mineOptions) error {
	o.mining.apply(cmd, a)
	if cmd.Flags().Changed("limit") {
		a.cfg.Output.Limit = o.limit
	}

	result, err := a.run(cmd, args)
	if err != nil {
		return err
	}

	f, err := a.formatter(o.format, 0)
	if err != nil {
		return err
	}
	if err := f.RenderRules(cmd.OutOrStdout(), output.NewRulesReport(result)); err != nil {
		return err
	}

	if !o.save {
		return nil
	}

	store, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	snap := storage.FromResult(result)
	if err := store.Save(cmd.Context(), snap); err != nil {
		return err
	}

	w := ui.NewWriter(cmd.ErrOrStderr(), a.cfg.Output.NoColor)
	w.Success("saved snapshot %s (%d rules)", snap.ID, snap.RuleCount)
	w.Debug("store: %s", a.cfg.Store.Path)
	return nil
}
