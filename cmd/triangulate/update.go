package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/triangulate/internal/triangulation"
)

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	var clearOnEmpty, noCache bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Scan once (or reuse a valid cache) and submit the results",
		Long: "Prepare the companion device and radio, then submit one set of scan results.\n" +
			"On failure the exit status is the triangulation error code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, closeSession, err := openRunner(cmd, opts, clearOnEmpty, noCache)
			if err != nil {
				return err
			}
			defer closeSession()

			if err := runner.Update(); err != nil {
				runner.End()
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated: %d access points\n", runner.State().AccessPointCount)
			return runner.End()
		},
	}

	addUpdateFlags(cmd, &clearOnEmpty, &noCache)
	return cmd
}

func newLogCachedCmd(opts *globalOptions) *cobra.Command {
	var clearOnEmpty, noCache bool

	cmd := &cobra.Command{
		Use:   "log-cached",
		Short: "Update once, then print the submitted access point records",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, closeSession, err := openRunner(cmd, opts, clearOnEmpty, noCache)
			if err != nil {
				return err
			}
			defer closeSession()

			err = runner.Update()
			runner.LogCachedSsids()
			for _, rec := range runner.Records() {
				fmt.Fprint(cmd.OutOrStdout(), rec)
			}
			runner.End()
			return err
		},
	}

	addUpdateFlags(cmd, &clearOnEmpty, &noCache)
	return cmd
}

func addUpdateFlags(cmd *cobra.Command, clearOnEmpty, noCache *bool) {
	cmd.Flags().BoolVar(clearOnEmpty, "clear-on-empty", false, "Clear the device's cached results when the scan finds nothing")
	cmd.Flags().BoolVar(noCache, "no-cache", false, "Always scan, even when the device's cached results are still valid")
}

// openRunner loads the config, applies the update flags and opens a session.
func openRunner(cmd *cobra.Command, opts *globalOptions, clearOnEmpty, noCache bool) (*triangulation.Runner, func() error, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cmd.Flags().Changed("clear-on-empty") {
		clearOnEmpty = cfg.GetClearOnEmptyScan()
	}
	useCache := cfg.GetUseCache()
	if cmd.Flags().Changed("no-cache") {
		useCache = !noCache
	}

	sess, err := opts.openSession(cfg)
	if err != nil {
		return nil, nil, err
	}
	return triangulation.NewRunner(sess.coord, clearOnEmpty, useCache), sess.Close, nil
}
