package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/ktcache/merge"
)

func newMergeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge <files...>",
		Short: "Merge compatible cache files",
		Long: `Merge combines two or more cache files from the same tuning session
into one. Headers must be equivalent. A failed line is overtaken by a
measured one for the same key; two measured lines for one key are a
conflict.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := storeOptions(cmd)
			if err != nil {
				return err
			}
			return merge.Files(cmd.Context(), args, output, merge.WithStoreOptions(opts...))
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "the file to write the merged cache to")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
