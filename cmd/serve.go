package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mxview/internal/api"
	"github.com/zjrosen/mxview/internal/app"
	"github.com/zjrosen/mxview/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the management server",
	Long: `Start every configured provider and expose the composite server over HTTP
until interrupted.

Example:
  mxview serve                        # Listen on server.addr from config
  mxview serve --addr 127.0.0.1:9090  # Override the listen address`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cleanup, err := initLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	a, err := app.Build(cfg, version)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		_ = a.Stop(ctx)
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	server, err := api.NewServer(api.ServerConfig{
		Addr:    addr,
		Handler: a.HandlerConfig(),
	})
	if err != nil {
		_ = a.Stop(ctx)
		return fmt.Errorf("creating API server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "mxview listening on %s\n", server.Addr())
	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")

	var serveErr error
	select {
	case sig := <-sigCh:
		_, _ = fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
	case err := <-errCh:
		if err != nil {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.ErrorErr(log.CatHTTP, "Error stopping API server", err)
	}
	if err := a.Stop(shutdownCtx); err != nil {
		log.ErrorErr(log.CatConfig, "Error stopping app", err)
	}

	_, _ = fmt.Fprintln(out, "mxview stopped")
	return serveErr
}
