package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/ktcache/query"
	"github.com/jonwraymond/ktcache/store"
)

func newBestCmd() *cobra.Command {
	var (
		metric     string
		descending bool
	)
	cmd := &cobra.Command{
		Use:   "best <file>",
		Short: "Print the best measured configuration",
		Long: `Best ranks the measured lines of a cache file by a metric (the file's
tuning objective by default) and prints the winning key and value.
Failed configurations never rank.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBest(cmd, args[0], metric, descending)
		},
	}
	cmd.Flags().StringVar(&metric, "metric", "", "the metric to rank by (defaults to the file's objective)")
	cmd.Flags().BoolVar(&descending, "descending", false, "rank descending, so higher is better")
	return cmd
}

func runBest(cmd *cobra.Command, infile, metric string, descending bool) error {
	ctx := cmd.Context()
	opts, err := storeOptions(cmd)
	if err != nil {
		return err
	}
	s, err := store.Load(ctx, infile, append(opts, store.WithReadOnly())...)
	if err != nil {
		return err
	}

	v := query.NewView(s)
	name := metric
	if name == "" {
		name = v.Objective()
	}
	sel, dir := query.ObjectiveSelector(name)
	if cmd.Flags().Changed("descending") {
		dir = query.Ascending
		if descending {
			dir = query.Descending
		}
	}

	entry, ok := v.Best(sel, dir)
	if !ok {
		return fmt.Errorf("no measured line carries metric %q", name)
	}
	score, _ := sel(entry.Record)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s=%s\n",
		entry.Key, name, strconv.FormatFloat(score, 'g', -1, 64))
	return nil
}
