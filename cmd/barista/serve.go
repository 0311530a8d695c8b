package main

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the JSON API, the OpenAPI document, Prometheus metrics,
per-session event streams (SSE) and a WebSocket chat endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAssistant(cmd, func(ctx context.Context, a *cli.Assistant) error {
			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.Config.HTTP.Port))
			if err != nil {
				return fmt.Errorf("failed to listen: %w", err)
			}
			return cli.Serve(ctx, a, ln)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	_ = v.BindPFlag("http.port", serveCmd.Flags().Lookup("port"))
}
