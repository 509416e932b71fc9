// Package cmd - serve command
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"basket-rules/api"
	"basket-rules/internal/logging"
)

type serveOptions struct {
	mining    miningFlags
	addr      string
	fromStore bool
	snapshot  string
}

// newServeCmd represents the serve command
func newServeCmd(a *app) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve [csv]",
		Short: "Serve recommendations over HTTP",
		Long: `Mine the CSV (or load a stored snapshot) once, then answer read-only
queries:

  GET /health
  GET /version
  GET /rules?limit=N
  GET /recommend?service=S&count=N

Examples:
  basket-rules serve transactions.csv
  basket-rules serve --addr 127.0.0.1:9000 --from-store`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, a, o)
		},
	}

	o.mining.register(cmd)
	cmd.Flags().StringVar(&o.addr, "addr", "", "listen address (default server.addr, :8080)")
	cmd.Flags().BoolVar(&o.fromStore, "from-store", false, "serve a stored snapshot instead of mining")
	cmd.Flags().StringVar(&o.snapshot, "snapshot", "", "snapshot ID for --from-store (default latest)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string, a *app, o *serveOptions) error {
	if o.addr != "" {
		a.cfg.Server.Addr = o.addr
	}

	var ruleSet *api.RuleSet
	if o.fromStore || o.snapshot != "" {
		snap, err := a.loadSnapshot(cmd.Context(), o.snapshot)
		if err != nil {
			return err
		}
		ruleSet = api.RuleSetFromSnapshot(snap)
	} else {
		o.mining.apply(cmd, a)
		result, err := a.run(cmd, args)
		if err != nil {
			return err
		}
		ruleSet = api.RuleSetFromResult(result)
	}

	logging.Info("Serving rule set",
		zap.String("id", ruleSet.ID),
		zap.Int("rules", len(ruleSet.Rules)))

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	return api.NewServer(Version, ruleSet, a.cfg.Recommend.Count).ListenAndServe(ctx, a.cfg.Server.Addr)
}
