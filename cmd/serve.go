package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KaramelBytes/eda-cli/internal/api"
	cfgpkg "github.com/KaramelBytes/eda-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	srvAddr     string
	srvNoReload bool
	srvLoad     loadFlags
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quality API over HTTP",
	Long: `Serve /health, /quality-from-csv, /quality-flags-from-csv and /metrics.

When a config file is in use it is watched, and changes to min_missing_share
and high_cardinality_threshold apply to new requests without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		addr := c.HTTPAddr
		if cmd.Flags().Changed("addr") {
			addr = srvAddr
		}
		load, err := srvLoad.options(cmd)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}))
		slog.SetDefault(logger)

		h := api.New(api.Options{
			Defaults:       c.AnalysisOptions(),
			Load:           load,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
			Logger:         logger,
		})

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if c.Path != "" && !srvNoReload {
			if _, err := os.Stat(c.Path); err == nil {
				go func() {
					err := cfgpkg.Watch(ctx, c.Path, func(n *cfgpkg.Global) {
						h.SetDefaults(n.AnalysisOptions())
					})
					if err != nil {
						slog.Error("config watch stopped", "err", err)
					}
				}()
			}
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			slog.Info("HTTP server listening", "addr", addr,
				"min_missing_share", c.MinMissingShare,
				"high_cardinality_threshold", c.HighCardinalityThreshold)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		slog.Info("shutting down")
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		return srv.Shutdown(sctx)
	},
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", ":8000", "listen address")
	serveCmd.Flags().BoolVar(&srvNoReload, "no-reload", false, "do not watch the config file for changes")
	srvLoad.register(serveCmd)
}
