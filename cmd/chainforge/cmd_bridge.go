package main

import (
	"encoding/json"
	"os"

	"chainforge/internal/bridge"

	"github.com/spf13/cobra"
)

func newBridgeCmd() *cobra.Command {
	var chains []string

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Recommend cross-chain bridge protocols for a chain set",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := bridge.Select(chains)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringSliceVar(&chains, "chains", nil, "target blockchains")
	return cmd
}
