package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Order interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		asJSON, _ := cmd.Flags().GetBool("json")
		reasoning, _ := cmd.Flags().GetBool("reasoning")

		return withAssistant(cmd, func(ctx context.Context, a *cli.Assistant) error {
			return cli.Chat(ctx, a, cli.ChatOptions{
				SessionID:     id,
				Fresh:         fresh,
				JSON:          asJSON,
				ShowReasoning: reasoning,
				In:            os.Stdin,
				Out:           os.Stdout,
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume (a new one is generated when empty)")
	chatCmd.Flags().Bool("fresh", false, "Delete the session before starting")
	chatCmd.Flags().Bool("json", false, "Read and write JSON lines instead of text")
	chatCmd.Flags().Bool("reasoning", false, "Show the assistant's reasoning blocks")
}
