package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowport/flowport/internal/adapters/driving/httpapi"
	"github.com/flowport/flowport/internal/preseed"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the Flowport HTTP API.

Preseed packs are loaded from the configured directory before the server
accepts requests. The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}
	defer func() {
		if auditStore != nil {
			_ = auditStore.Close()
		}
		if appLogger != nil {
			_ = appLogger.Sync()
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	loader := preseed.NewLoader(knowledgeService, appLogger)
	if err := loader.LoadDir(ctx, appConfig.PreseedDir); err != nil {
		return fmt.Errorf("loading preseed packs: %w", err)
	}

	if appConfig.WatchPreseed {
		watcher := preseed.NewWatcher(loader, appConfig.PreseedDir, appLogger)
		if err := watcher.Watch(ctx); err != nil {
			// The server is still usable without hot reloading.
			appLogger.Warn("preseed watcher failed", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	addr := appConfig.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	handler := httpapi.NewHandler(knowledgeService, inferenceService, appConfig.AppName, appLogger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(handler, appConfig.RequestTimeout()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	appLogger.Info("http server listening", zap.String("addr", addr))
	cmd.Printf("Flowport API listening on %s\n", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		appLogger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	cmd.Println("Server stopped.")
	return nil
}
