package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/ktcache/store"
)

func newGetLineCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "get-line <file>",
		Short: "Print one cache line as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetLine(cmd, args[0], key)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "the configuration key of the line")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func runGetLine(cmd *cobra.Command, infile, key string) error {
	ctx := cmd.Context()
	opts, err := storeOptions(cmd)
	if err != nil {
		return err
	}
	s, err := store.Load(ctx, infile, append(opts, store.WithReadOnly())...)
	if err != nil {
		return err
	}
	rec, ok := s.Get(key)
	if !ok {
		return fmt.Errorf("no cache line under key %q", key)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache line: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
