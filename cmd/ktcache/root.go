package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/ktcache/observe"
	"github.com/jonwraymond/ktcache/store"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ktcache",
		Short: "Manipulate kernel-tuning cache files",
		Long: `ktcache manipulates kernel-tuning cache files: convert between schema
versions, export to the T4 auto-tuning format, inspect and delete
single lines, merge compatible caches, and report the best measured
configuration.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log cache operations to stderr")

	cmd.AddCommand(
		newConvertCmd(),
		newT4Cmd(),
		newGetLineCmd(),
		newDeleteLineCmd(),
		newMergeCmd(),
		newBestCmd(),
	)
	return cmd
}

// storeOptions returns the store options every subcommand shares:
// nothing by default, debug instruments on stderr with --verbose.
func storeOptions(cmd *cobra.Command) ([]store.Option, error) {
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil || !verbose {
		return nil, err
	}
	obs, err := observe.NewObserver(cmd.Context(), observe.Config{
		ServiceName: "ktcache",
		Logging:     observe.LoggingConfig{Enabled: true, Level: "debug"},
	})
	if err != nil {
		return nil, err
	}
	ins, err := observe.InstrumentsFromObserver(obs)
	if err != nil {
		return nil, err
	}
	return []store.Option{store.WithInstruments(ins)}, nil
}
