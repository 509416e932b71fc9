// Package cmd - matrix command
package cmd

import (
	"github.com/spf13/cobra"

	"basket-rules/core/basket"
	"basket-rules/internal/errors"
)

type matrixOptions struct {
	rows   int
	format string
}

// newMatrixCmd represents the matrix command
func newMatrixCmd(a *app) *cobra.Command {
	o := &matrixOptions{}
	cmd := &cobra.Command{
		Use:   "matrix [csv]",
		Short: "Print the basket by service incidence matrix",
		Long: `Print one row per basket ({YYYY-MM}_{UserId}) and one 0/1 column per
service ({ServiceId}_{CategoryId}).

Examples:
  basket-rules matrix --rows 20 transactions.csv
  basket-rules matrix --format csv transactions.csv > matrix.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(cmd, args, a, o)
		},
	}

	cmd.Flags().IntVar(&o.rows, "rows", 0, "print at most this many baskets (0 = all)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format (cli, json, markdown, csv)")
	return cmd
}

func runMatrix(cmd *cobra.Command, args []string, a *app, o *matrixOptions) error {
	if o.rows < 0 {
		return errors.Newf(errors.TypeInput, "--rows must not be negative, got %d", o.rows)
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	src, err := a.source(cmd, args)
	if err != nil {
		return err
	}
	txs, _, err := src.Transactions(cmd.Context())
	if err != nil {
		return err
	}

	f, err := a.formatter(o.format, o.rows)
	if err != nil {
		return err
	}
	return f.RenderMatrix(cmd.OutOrStdout(), basket.Build(txs))
}
