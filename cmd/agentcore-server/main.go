// Package main is the entry point for the agentcore session/streaming
// server (spec §6): a cobra root command wrapping a single "serve"
// subcommand.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/agentcore/internal/config"
	"github.com/opencode-ai/agentcore/internal/logging"
	"github.com/opencode-ai/agentcore/internal/refagent"
	"github.com/opencode-ai/agentcore/internal/server"
	"github.com/opencode-ai/agentcore/internal/sessionmgr"
)

const Version = "0.1.0"

var (
	flagPort        int
	flagMaxSessions int
	flagAgentName   string
	flagEphemeral   bool
	flagEnvFile     string

	flagLogLevel string
	flagPretty   bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "agentcore-server",
		Short:   "Session & streaming core server",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logging.Config{
				Level:  logging.ParseLevel(flagLogLevel),
				Output: os.Stderr,
				Pretty: flagPretty,
			})
		},
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "console-friendly log output")

	root.AddCommand(serveCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	cmd.Flags().IntVarP(&flagPort, "port", "p", 0, "port to listen on (0: use config/env default)")
	cmd.Flags().IntVar(&flagMaxSessions, "max-sessions", 0, "admission cap on live sessions (0: use config/env default, unbounded if unset)")
	cmd.Flags().StringVar(&flagAgentName, "agent-name", "", "default agent identity (empty: use config/env default)")
	cmd.Flags().BoolVar(&flagEphemeral, "ephemeral", false, "record ephemeral as the manager's default teardown policy (each route sets its own policy per request)")
	cmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "path to an optional .env file")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load(flagEnvFile)

	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("agent-name") {
		cfg.AgentName = flagAgentName
	}
	if cmd.Flags().Changed("ephemeral") {
		cfg.EphemeralDefault = flagEphemeral
	}
	var maxSessions *int
	if cmd.Flags().Changed("max-sessions") && flagMaxSessions > 0 {
		maxSessions = &flagMaxSessions
	} else {
		maxSessions = cfg.MaxSessions
	}

	mgrCfg := sessionmgr.Config{
		MaxSessions: maxSessions,
		AgentName:   cfg.AgentName,
		Ephemeral:   cfg.EphemeralDefault,
	}

	mgr := sessionmgr.New(mgrCfg, refagent.Builder)

	srvCfg := server.DefaultConfig()
	srvCfg.Port = cfg.Port
	srv := server.New(srvCfg, mgr)

	go func() {
		logging.Info().Int("port", cfg.Port).Msg("agentcore-server listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logging.Error().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("http shutdown error")
	}
	if err := mgr.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("session manager shutdown error")
	}

	logging.Info().Msg("stopped")
	return nil
}
