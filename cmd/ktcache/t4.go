package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/ktcache/convert"
	"github.com/jonwraymond/ktcache/store"
)

func newT4Cmd() *cobra.Command {
	var (
		infile string
		output string
	)
	cmd := &cobra.Command{
		Use:   "t4",
		Short: "Export a cache file to the T4 auto-tuning format",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runT4(cmd, infile, output)
		},
	}
	cmd.Flags().StringVarP(&infile, "in", "i", "", "the cache file to read")
	cmd.Flags().StringVarP(&output, "out", "o", "", "the T4 results file to write")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runT4(cmd *cobra.Command, infile, output string) error {
	ctx := cmd.Context()
	opts, err := storeOptions(cmd)
	if err != nil {
		return err
	}
	s, err := store.Load(ctx, infile, append(opts, store.WithReadOnly())...)
	if err != nil {
		return err
	}
	t4, err := convert.ToT4(s.Document())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(t4, "", "  ")
	if err != nil {
		return fmt.Errorf("encode T4 results: %w", err)
	}
	return os.WriteFile(output, append(data, '\n'), 0o644)
}
