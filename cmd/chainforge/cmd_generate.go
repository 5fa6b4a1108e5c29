package main

import (
	"fmt"

	"chainforge/internal/forge"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGenerateCmd() *cobra.Command {
	var req forge.Request

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a project from a template or AI content",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := buildEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := engine.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			logger.Info("project generated",
				zap.String("mode", res.Mode),
				zap.String("dest", res.Dest))
			fmt.Printf("Generated %s project at %s\n", res.Mode, res.Dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ProjectName, "name", "", "project name")
	cmd.Flags().StringVar(&req.Description, "description", "", "project description")
	cmd.Flags().StringVar(&req.ProjectType, "type", "", "project type (token, nft, dapp, ...)")
	cmd.Flags().StringVar(&req.Blockchain, "blockchain", "ethereum", "target blockchain")
	cmd.Flags().StringVar(&req.Network, "network", "testnet", "target network")
	cmd.Flags().StringVar(&req.AdditionalRequirements, "requirements", "", "additional requirements")
	cmd.Flags().StringSliceVar(&req.Chains, "chains", nil, "chains for cross-chain bridging")
	cmd.Flags().StringSliceVar(&req.ReferenceURLs, "refs", nil, "reference repo archive URLs")
	cmd.Flags().StringVar(&req.Dest, "out", "", "output directory")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
