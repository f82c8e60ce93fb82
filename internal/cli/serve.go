package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harun/arena/pkg/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arena HTTP server",
	Long: `Starts the HTTP server exposing POST /v1/arena along with
/health and /metrics endpoints. Stops gracefully on SIGINT/SIGTERM,
draining in-flight runs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Close()

	orchestrator, err := buildOrchestrator(cfg, log.GetZerolog())
	if err != nil {
		return err
	}

	srv, err := server.NewServer(server.Options{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		RunTimeout:         time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}, orchestrator, log.GetZerolog())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		zl := log.GetZerolog()
		zl.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		return srv.Stop()
	}
}
