// Package cmd - recommend command
package cmd

import (
	"github.com/spf13/cobra"

	"basket-rules/core/output"
	"basket-rules/core/recommend"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
)

type recommendOptions struct {
	mining    miningFlags
	service   string
	count     int
	format    string
	fromStore bool
	snapshot  string
}

// newRecommendCmd represents the recommend command
func newRecommendCmd(a *app) *cobra.Command {
	o := &recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend [csv]",
		Short: "Recommend services bought together with a service",
		Long: `Print the consequent service sets of the rules whose antecedents contain
--service, ordered by lift. Rules are mined from the CSV, or read from the
snapshot store with --from-store.

Examples:
  basket-rules recommend --service 2_0 transactions.csv
  basket-rules recommend -s 2_0 -n 3 transactions.csv
  basket-rules recommend -s 2_0 --from-store
  basket-rules recommend -s 2_0 --from-store --snapshot 3f1c...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, args, a, o)
		},
	}

	o.mining.register(cmd)
	cmd.Flags().StringVarP(&o.service, "service", "s", "", "query service as ServiceId_CategoryId [REQUIRED]")
	cmd.Flags().IntVarP(&o.count, "count", "n", 0, "number of recommendations (default recommend.count, 1)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format (cli, json, markdown, csv)")
	cmd.Flags().BoolVar(&o.fromStore, "from-store", false, "use a stored snapshot instead of mining")
	cmd.Flags().StringVar(&o.snapshot, "snapshot", "", "snapshot ID for --from-store (default latest)")
	cmd.MarkFlagRequired("service")
	return cmd
}

func runRecommend(cmd *cobra.Command, args []string, a *app, o *recommendOptions) error {
	count := a.cfg.Recommend.Count
	if cmd.Flags().Changed("count") {
		count = o.count
	}
	if count < 1 {
		return errors.Newf(errors.TypeInput, "--count must be at least 1, got %d", count)
	}

	var ruleset []types.Rule
	if o.fromStore || o.snapshot != "" {
		snap, err := a.loadSnapshot(cmd.Context(), o.snapshot)
		if err != nil {
			return err
		}
		ruleset = snap.Rules
	} else {
		o.mining.apply(cmd, a)
		result, err := a.run(cmd, args)
		if err != nil {
			return err
		}
		ruleset = result.Rules
	}

	service := types.ServiceCategory(o.service)
	matched, err := recommend.New(ruleset).RecommendRules(service, count)
	if err != nil {
		return err
	}

	f, err := a.formatter(o.format, 0)
	if err != nil {
		return err
	}
	return f.RenderRecommendations(cmd.OutOrStdout(), &output.RecommendationReport{
		Service: service,
		Count:   count,
		Rules:   matched,
	})
}
