package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/triangulate/internal/notecard"
)

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports a companion device could be attached to",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := notecard.ListPorts()
			if err != nil {
				return err
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
