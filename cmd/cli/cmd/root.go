// Package cmd provides the CLI commands for basket-rules.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"basket-rules/core/ui"
	"basket-rules/internal/config"
	"basket-rules/internal/logging"
)

// Version is set at build time with -ldflags "-X basket-rules/cmd/cli/cmd.Version=..."
var Version = "0.1.0"

// app holds state shared by every subcommand
type app struct {
	cfgFile string
	verbose bool
	cfg     *config.Config
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	rootCmd := &cobra.Command{
		Use:   "basket-rules",
		Short: "Mine service association rules from purchase history",
		Long: `basket-rules groups purchase transactions into monthly per-user baskets,
mines frequent service sets with Apriori and derives association rules that
answer "what else do customers buy with this service?".

Examples:
  basket-rules mine transactions.csv
  basket-rules mine --min-support 0.02 --format markdown transactions.csv
  basket-rules recommend --service 2_0 --count 3 transactions.csv
  basket-rules serve --from-store`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file, .json or .hcl (env BASKET_* overrides)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(newMineCmd(a))
	rootCmd.AddCommand(newRecommendCmd(a))
	rootCmd.AddCommand(newMatrixCmd(a))
	rootCmd.AddCommand(newSnapshotsCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	err := NewRootCmd().Execute()
	if err != nil {
		reportError(os.Stderr, err, os.Getenv("NO_COLOR") != "")
	}
	return err
}

// reportError prints a failed command's error for the user.
func reportError(w io.Writer, err error, noColor bool) {
	ui.NewWriter(w, noColor).Error("%v", err)
}

func (a *app) initConfig(cmd *cobra.Command, args []string) error {
	config.LoadDotEnv()

	cfg := config.Default()
	if a.cfgFile != "" {
		loaded, err := config.Load(a.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	// Initialize logging
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}

	a.cfg = cfg
	config.Set(cfg)
	return nil
}

// newVersionCmd prints version information
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "basket-rules version %s\n", Version)
		},
	}
}
