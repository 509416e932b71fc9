package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"basket-rules/adapters/csv"
	"basket-rules/adapters/storage"
	"basket-rules/core/apriori"
	"basket-rules/core/engine"
	"basket-rules/core/output"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
)

// stdinPath selects standard input as the CSV source.
const stdinPath = "-"

// miningFlags are the threshold flags shared by mine, recommend, matrix and serve
type miningFlags struct {
	minSupport   float64
	metric       string
	minThreshold float64
	maxLen       int
}

func (f *miningFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.minSupport, "min-support", apriori.DefaultMinSupport, "minimum itemset support, in (0, 1]")
	cmd.Flags().StringVar(&f.metric, "metric", string(types.MetricLift), "rule filter metric (support, confidence, lift, leverage, conviction, zhangs_metric)")
	cmd.Flags().Float64Var(&f.minThreshold, "min-threshold", 1.0, "minimum value of --metric")
	cmd.Flags().IntVar(&f.maxLen, "max-len", 0, "maximum itemset size (0 = unbounded)")
}

// apply copies flags the user set onto the loaded config.
func (f *miningFlags) apply(cmd *cobra.Command, a *app) {
	flags := cmd.Flags()
	if flags.Changed("min-support") {
		a.cfg.Mining.MinSupport = f.minSupport
	}
	if flags.Changed("metric") {
		a.cfg.Mining.Metric = strings.ToLower(f.metric)
	}
	if flags.Changed("min-threshold") {
		a.cfg.Mining.MinThreshold = f.minThreshold
	}
	if flags.Changed("max-len") {
		a.cfg.Mining.MaxLen = f.maxLen
	}
}

// source resolves the CSV argument, falling back to input.path.
func (a *app) source(cmd *cobra.Command, args []string) (engine.Source, error) {
	path := a.cfg.Input.Path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, errors.Input("no input CSV: pass a path, '-' for stdin, or set input.path")
	}

	opts := a.cfg.CSVOptions()
	if path == stdinPath {
		return csv.NewReaderSource("stdin", cmd.InOrStdin(), opts), nil
	}
	return csv.NewFileSource(path, opts), nil
}

// run validates the effective config and mines the CSV.
func (a *app) run(cmd *cobra.Command, args []string) (*engine.Result, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	ecfg, err := a.cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	src, err := a.source(cmd, args)
	if err != nil {
		return nil, err
	}
	return engine.New(ecfg).Run(cmd.Context(), src)
}

// formatter builds the output formatter for name, or output.format when empty.
func (a *app) formatter(name string, rows int) (output.Formatter, error) {
	if name == "" {
		name = a.cfg.Output.Format
	}
	return output.New(name, output.Options{
		Precision: int32(a.cfg.Output.Precision),
		Limit:     a.cfg.Output.Limit,
		Rows:      rows,
		NoColor:   a.cfg.Output.NoColor || os.Getenv("NO_COLOR") != "",
	})
}

func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	return storage.Open(ctx, storage.BackendSQLite, a.cfg.Store.Path)
}

// loadSnapshot returns snapshot id, or the latest one when id is empty.
func (a *app) loadSnapshot(ctx context.Context, id string) (*storage.Snapshot, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if id == "" {
		return store.Latest(ctx)
	}
	return store.Get(ctx, id)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
