package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agent-infra/tarko-agent-ui/pkg/cli/config"
	controller "github.com/agent-infra/tarko-agent-ui/pkg/controller/http"
	"github.com/agent-infra/tarko-agent-ui/pkg/webui"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var serverCfg config.Server

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serve the agent web UI over HTTP",
		Flags:   serverCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			stamp := webui.StaticVersion(serverCfg.StaticDir)
			logger.Info("Starting web UI server",
				slog.String("addr", serverCfg.Addr),
				slog.String("static_dir", serverCfg.StaticDir),
				slog.String("bundle_version", stamp.Version),
			)

			var uiConfig map[string]any
			if serverCfg.UIConfig != "" {
				if err := json.Unmarshal([]byte(serverCfg.UIConfig), &uiConfig); err != nil {
					return goerr.Wrap(err, "ui-config is not a valid JSON object")
				}
			}

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				controller.WithAddr(serverCfg.Addr),
				controller.WithStaticDir(serverCfg.StaticDir),
				controller.WithBaseURL(serverCfg.BaseURL),
				controller.WithUIConfig(uiConfig),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
