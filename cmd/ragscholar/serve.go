// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

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
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/ragscholar/internal/querycache"
	"github.com/pdiddy/ragscholar/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web front end",
	Long: `Serve runs the paper discovery front end. Pages are rendered on the
server from the analysis backend's answers, which are cached for the
configured TTL.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	serveCmd.Flags().String("cache", "", "cache backend: memory, sqlite, or none")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("cache.backend", serveCmd.Flags().Lookup("cache"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	store, err := querycache.OpenStore(cfg.Cache, logger)
	if err != nil {
		return err
	}
	cache := querycache.New(client, store, cfg.Cache.TTL, logger)
	defer cache.Close()

	site, err := web.New(cache, web.Options{
		RandomCount: cfg.Backend.RandomCount,
		ListWait:    cfg.Server.ListWait,
	}, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      site.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return listenAndServe(cmd.Context(), srv, cfg.Server.ShutdownTimeout, zap.String("backend", client.BaseURL()),
		zap.String("cache", string(cfg.Cache.Backend)))
}

// listenAndServe runs srv until SIGINT or SIGTERM, then drains it within
// the shutdown timeout.
func listenAndServe(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, fields ...zap.Field) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", append([]zap.Field{zap.String("addr", srv.Addr)}, fields...)...)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.String("addr", srv.Addr))
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
