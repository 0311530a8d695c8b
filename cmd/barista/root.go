package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/cli"
	"github.com/GenAICloudDevOps/AgenticBarista/internal/config"
	"github.com/GenAICloudDevOps/AgenticBarista/internal/logging"
)

// v collects flag bindings; config.LoadWith layers file, env and defaults under them.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "barista",
	Short: "Barista is a conversational ordering assistant for a café",
	Long: `Barista takes coffee orders in plain language. It keeps a cart and a
conversation memory per session and serves them over a terminal chat, an HTTP API
and the Model Context Protocol.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a barista.yaml, .toml or .json config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// withAssistant loads configuration, builds the assistant, runs fn and closes it.
func withAssistant(cmd *cobra.Command, fn func(ctx context.Context, a *cli.Assistant) error) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWith(v, path)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.New(level)

	sc := cli.NewSignalContext(cmd.Context())
	defer sc.Cancel()

	a, err := cli.Build(sc, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start barista: %w", err)
	}
	defer func() {
		if cerr := a.Close(context.Background()); cerr != nil {
			logger.Warn("Shutdown incomplete", "err", cerr)
		}
	}()

	err = fn(sc, a)
	if sig := sc.Signal(); sig != nil {
		logger.Info("Stopped by signal", "signal", sig.String())
	}
	return err
}
