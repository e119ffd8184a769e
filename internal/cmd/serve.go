package cmd

import (
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/3leaps/verdict/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the status-resolution API over HTTP",
	Long: `Run an HTTP server exposing status resolution endpoints:

  GET /health
  GET /api/v1/status?repo=&revision=&builder=
  GET /api/v1/jobs?repo=&revision=&status=
  GET /api/v1/builders?repo=&revision=

Example:
  verdict serve
  verdict serve --host 0.0.0.0 --port 9000`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Override listen host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override listen port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildService(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid backend configuration", err)
	}

	cfg := appConfig.Server
	host := cfg.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(host, port, svc, versionInfo.Version)
	if err := srv.ListenAndServe(ctx, cfg.ReadTimeout, cfg.WriteTimeout, cfg.IdleTimeout, cfg.ShutdownTimeout); err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
	}
	return nil
}
