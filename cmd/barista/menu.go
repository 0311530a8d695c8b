package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/cli"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		asJSON, _ := cmd.Flags().GetBool("json")
		return withAssistant(cmd, func(ctx context.Context, a *cli.Assistant) error {
			return cli.PrintMenu(ctx, a, cmd.OutOrStdout(), category, asJSON)
		})
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
	menuCmd.Flags().StringP("category", "c", "", "Only list one category (coffee, pastry, food)")
	menuCmd.Flags().Bool("json", false, "Output as JSON")
}
