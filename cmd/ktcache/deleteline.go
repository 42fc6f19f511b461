package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/ktcache/store"
)

func newDeleteLineCmd() *cobra.Command {
	var (
		key    string
		output string
	)
	cmd := &cobra.Command{
		Use:   "delete-line <file>",
		Short: "Delete one cache line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteLine(cmd, args[0], key, output)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "the configuration key of the line")
	cmd.Flags().StringVarP(&output, "out", "o", "", "the file to write to (defaults to rewriting the input)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func runDeleteLine(cmd *cobra.Command, infile, key, output string) error {
	ctx := cmd.Context()
	opts, err := storeOptions(cmd)
	if err != nil {
		return err
	}
	s, err := store.Load(ctx, infile, opts...)
	if err != nil {
		return err
	}
	ok, err := s.Delete(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no cache line under key %q", key)
	}
	if output == "" {
		output = infile
	}
	return s.Persist(ctx, output)
}
