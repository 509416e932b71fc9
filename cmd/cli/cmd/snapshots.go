// Package cmd - snapshot store management
package cmd

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"basket-rules/adapters/storage"
	"basket-rules/core/basket"
	"basket-rules/core/determinism"
	"basket-rules/core/diff"
	"basket-rules/core/engine"
	"basket-rules/core/output"
	"basket-rules/core/recommend"
	"basket-rules/core/ui"
)

type snapshotsOptions struct {
	format     string
	showFormat string
	limit      int
}

func newSnapshotsCmd(a *app) *cobra.Command {
	o := &snapshotsOptions{}
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snapshot"},
		Short:   "Manage stored rule snapshots",
		Long: `Stored snapshots are rule sets saved with 'mine --save'. They live in the
SQLite file configured by store.path (env BASKET_STORE).`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotsList(cmd, a, o)
		},
	}
	listCmd.Flags().StringVarP(&o.format, "format", "f", "cli", "output format (cli, json)")
	listCmd.Flags().IntVarP(&o.limit, "limit", "l", 0, "list at most this many snapshots (0 = all)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the rules of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotsShow(cmd, args[0], a, o)
		},
	}
	showCmd.Flags().StringVarP(&o.showFormat, "format", "f", "", "output format (cli, json, markdown, csv)")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotsDelete(cmd, args[0], a)
		},
	}

	diffCmd := &cobra.Command{
		Use:   "diff <old-id> <new-id>",
		Short: "Compare the rules of two snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotsDiff(cmd, args[0], args[1], a, o)
		},
	}
	diffCmd.Flags().StringVarP(&o.format, "format", "f", "cli", "output format (cli, json)")

	cmd.AddCommand(listCmd, showCmd, deleteCmd, diffCmd)
	return cmd
}

func runSnapshotsList(cmd *cobra.Command, a *app, o *snapshotsOptions) error {
	store, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := store.List(cmd.Context(), &storage.ListFilter{Limit: o.limit})
	if err != nil {
		return err
	}

	if o.format == string(output.FormatJSON) {
		if snaps == nil {
			snaps = []*storage.Snapshot{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	w := ui.NewWriter(cmd.OutOrStdout(), a.cfg.Output.NoColor)
	if len(snaps) == 0 {
		w.Info("no snapshots in %s", a.cfg.Store.Path)
		return nil
	}

	places := int32(a.cfg.Output.Precision)
	table := w.NewTable("id", "created", "source", "baskets", "rules", "min support", "filter").AlignRight(3, 4, 5)
	for _, s := range snaps {
		table.AddRow(
			s.ID,
			s.CreatedAt.Local().Format(time.DateTime),
			s.Source,
			strconv.Itoa(s.Baskets),
			strconv.Itoa(s.RuleCount),
			determinism.FormatFixed(s.MinSupport, places),
			string(s.Metric)+" >= "+determinism.FormatFixed(s.MinThreshold, places),
		)
	}
	table.Render()
	return nil
}

func runSnapshotsShow(cmd *cobra.Command, id string, a *app, o *snapshotsOptions) error {
	snap, err := a.loadSnapshot(cmd.Context(), id)
	if err != nil {
		return err
	}

	f, err := a.formatter(o.showFormat, 0)
	if err != nil {
		return err
	}
	return f.RenderRules(cmd.OutOrStdout(), snapshotReport(snap))
}

func snapshotReport(snap *storage.Snapshot) *output.RulesReport {
	ruleset := recommend.New(snap.Rules).Rules()
	return &output.RulesReport{
		Metadata: &engine.Metadata{
			RunID:        snap.RunID,
			Source:       snap.Source,
			InputHash:    snap.InputHash,
			StartedAt:    snap.CreatedAt,
			MinSupport:   snap.MinSupport,
			MaxLen:       snap.MaxLen,
			Metric:       snap.Metric,
			MinThreshold: snap.MinThreshold,
		},
		Stats:    &basket.Stats{Baskets: snap.Baskets, Services: snap.Services},
		Itemsets: snap.Itemsets,
		Rules:    ruleset,
		Total:    len(ruleset),
	}
}

func runSnapshotsDelete(cmd *cobra.Command, id string, a *app) error {
	store, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), id); err != nil {
		return err
	}
	ui.NewWriter(cmd.OutOrStdout(), a.cfg.Output.NoColor).Success("deleted snapshot %s", id)
	return nil
}

func runSnapshotsDiff(cmd *cobra.Command, oldID, newID string, a *app, o *snapshotsOptions) error {
	store, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	before, err := store.Get(cmd.Context(), oldID)
	if err != nil {
		return err
	}
	after, err := store.Get(cmd.Context(), newID)
	if err != nil {
		return err
	}

	places := int32(a.cfg.Output.Precision)
	res := diff.NewDiffer(math.Pow(10, -float64(places))).Compare(before.Rules, after.Rules)

	if o.format == string(output.FormatJSON) {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	w := ui.NewWriter(cmd.OutOrStdout(), a.cfg.Output.NoColor)
	w.Header("Rule Changes")
	w.Println("  %s (%d rules) -> %s (%d rules)", oldID, res.RulesBefore, newID, res.RulesAfter)
	w.Println("")
	if !res.HasChanges() {
		w.Success("no rule changes (%d unchanged)", res.Unchanged)
		return nil
	}

	if len(res.Added) > 0 {
		w.SubHeader(fmt.Sprintf("Added (%d)", len(res.Added)))
		for _, d := range res.Added {
			w.Println("  + %s  lift %s", d.After, determinism.FormatFixed(d.After.Lift, places))
		}
		w.Println("")
	}
	if len(res.Removed) > 0 {
		w.SubHeader(fmt.Sprintf("Removed (%d)", len(res.Removed)))
		for _, d := range res.Removed {
			w.Println("  - %s  lift %s", d.Before, determinism.FormatFixed(d.Before.Lift, places))
		}
		w.Println("")
	}
	if len(res.Changed) > 0 {
		w.SubHeader(fmt.Sprintf("Changed (%d)", len(res.Changed)))
		for _, d := range res.Changed {
			w.Println("  ~ %s  lift %s -> %s", d.After,
				determinism.FormatFixed(d.Before.Lift, places),
				determinism.FormatFixed(d.After.Lift, places))
		}
		w.Println("")
	}
	w.Info("%d unchanged", res.Unchanged)
	return nil
}
