package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/triangulate/internal/version"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
			}
			dirty := ""
			if info.Dirty {
				dirty = " (dirty)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "triangulate %s %s%s built %s\n", info.Version, info.GitSHA, dirty, info.BuildTime)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
