package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/ktcache/convert"
	"github.com/jonwraymond/ktcache/store"
)

func newConvertCmd() *cobra.Command {
	var (
		infile           string
		output           string
		target           string
		allowUnversioned bool
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a cache file from one schema version to another",
		Long: `Convert upgrades a cache file to the target schema version (the
newest by default), validating the document against each version's
schema along the way. The converted file is written canonically, with
the header fields in their standard order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd, infile, output, target, allowUnversioned)
		},
	}
	cmd.Flags().StringVarP(&infile, "in", "i", "", "the cache file to read")
	cmd.Flags().StringVarP(&output, "out", "o", "", "the file to write to (defaults to rewriting the input)")
	cmd.Flags().StringVarP(&target, "target", "T", "", "the target schema version (defaults to the newest)")
	cmd.Flags().BoolVar(&allowUnversioned, "allow-version-absence", false,
		"stamp files that predate schema versioning with the oldest version")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runConvert(cmd *cobra.Command, infile, output, target string, allowUnversioned bool) error {
	ctx := cmd.Context()
	doc, err := convert.LoadRaw(infile)
	if err != nil {
		return err
	}
	if _, ok := doc["schema_version"]; !ok && allowUnversioned {
		if err := convert.UpgradeUnversioned(doc); err != nil {
			return err
		}
	}
	if err := convert.Apply(doc, target); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	opts, err := storeOptions(cmd)
	if err != nil {
		return err
	}
	s, err := store.Read(ctx, bytes.NewReader(data), opts...)
	if err != nil {
		return err
	}
	if output == "" {
		output = infile
	}
	return s.Persist(ctx, output)
}
