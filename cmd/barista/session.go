package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/cli"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Manage stored sessions",
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAssistant(cmd, func(ctx context.Context, a *cli.Assistant) error {
			return cli.ListSessions(ctx, a, cmd.OutOrStdout())
		})
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [session-id]",
	Short: "Show a session's cart, orders and memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, _ := cmd.Flags().GetBool("history")
		asJSON, _ := cmd.Flags().GetBool("json")
		return withAssistant(cmd, func(ctx context.Context, a *cli.Assistant) error {
			return cli.InspectSession(ctx, a, cmd.OutOrStdout(), args[0], history, asJSON)
		})
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm [session-id...]",
	Aliases: []string{"delete"},
	Short:   "Delete sessions",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAssistant(cmd, func(ctx context.Context, a *cli.Assistant) error {
			return cli.DeleteSessions(ctx, a, cmd.OutOrStdout(), args...)
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(lsCmd)
	sessionCmd.AddCommand(inspectCmd)
	sessionCmd.AddCommand(rmCmd)

	inspectCmd.Flags().Bool("history", false, "Include the full conversation log")
	inspectCmd.Flags().Bool("json", false, "Output as JSON instead of YAML")
}
