// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/ragscholar/internal/stub"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a development backend from a fixture file",
	Long: `Stub serves the backend endpoints (GET /, GET /paper/{id}, POST /analyze)
from a YAML fixture file so the front end runs without the real service.
Related papers are ranked by text match; the explanation echoes the prompt
the real service would send to its model.`,
	Args: cobra.NoArgs,
	RunE: runStub,
}

func init() {
	stubCmd.Flags().String("addr", "", "listen address (default :8040)")
	stubCmd.Flags().String("fixtures", "", "fixture file (default fixtures/papers.yaml)")
	viper.BindPFlag("stub.addr", stubCmd.Flags().Lookup("addr"))
	viper.BindPFlag("stub.fixtures", stubCmd.Flags().Lookup("fixtures"))

	rootCmd.AddCommand(stubCmd)
}

func runStub(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ff, err := stub.ReadFixtureFile(cfg.Stub.Fixtures)
	if err != nil {
		return fmt.Errorf("loading fixtures (run 'ragscholar fixtures fetch' to create them): %w", err)
	}
	if len(ff.Papers) == 0 {
		logger.Warn("fixture file has no papers", zap.String("path", cfg.Stub.Fixtures))
	}

	srv := &http.Server{
		Addr:         cfg.Stub.Addr,
		Handler:      stub.New(ff.Papers, logger).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return listenAndServe(cmd.Context(), srv, cfg.Server.ShutdownTimeout,
		zap.String("fixtures", cfg.Stub.Fixtures),
		zap.Int("papers", len(ff.Papers)))
}
