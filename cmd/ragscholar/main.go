// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ragscholar CLI: the web front
// end, one-shot backend queries, and the development backend.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/ragscholar/internal/secrets"
	"github.com/pdiddy/ragscholar/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built once per invocation in PersistentPreRunE.
var logger = zap.NewNop()

// rootCmd is the base command for the ragscholar CLI.
var rootCmd = &cobra.Command{
	Use:   "ragscholar",
	Short: "Research paper discovery front end",
	Long: `ragscholar lists research papers, shows paper details, and asks the
analysis backend to explain passages and find related work.

"serve" runs the web front end. "papers", "paper", and "ask" query the
backend from the terminal. "stub" runs a development backend from a fixture
file that "fixtures fetch" fills from arXiv.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ragscholar.yaml or ~/.config/ragscholar/ragscholar.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("backend", "", "analysis backend base URL (default http://localhost:8040)")
	viper.BindPFlag("backend.base_url", rootCmd.PersistentFlags().Lookup("backend"))

	setDefaults(types.DefaultConfig())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ragscholar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ragscholar"))
		}
	}

	viper.SetEnvPrefix("RAGSCHOLAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment variables and
// flags can override keys that no config file sets.
func setDefaults(c types.Config) {
	viper.SetDefault("secrets_dir", c.SecretsDir)

	viper.SetDefault("backend.base_url", c.Backend.BaseURL)
	viper.SetDefault("backend.timeout", c.Backend.Timeout)
	viper.SetDefault("backend.user_agent", c.Backend.UserAgent)
	viper.SetDefault("backend.max_retries", c.Backend.MaxRetries)
	viper.SetDefault("backend.analyze_rate", c.Backend.AnalyzeRate)
	viper.SetDefault("backend.analyze_burst", c.Backend.AnalyzeBurst)
	viper.SetDefault("backend.random_count", c.Backend.RandomCount)
	viper.SetDefault("backend.api_token", c.Backend.APIToken)

	viper.SetDefault("cache.backend", string(c.Cache.Backend))
	viper.SetDefault("cache.ttl", c.Cache.TTL)
	viper.SetDefault("cache.path", c.Cache.Path)
	viper.SetDefault("cache.sweep_interval", c.Cache.SweepInterval)

	viper.SetDefault("server.addr", c.Server.Addr)
	viper.SetDefault("server.read_timeout", c.Server.ReadTimeout)
	viper.SetDefault("server.write_timeout", c.Server.WriteTimeout)
	viper.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	viper.SetDefault("server.list_wait", c.Server.ListWait)

	viper.SetDefault("stub.addr", c.Stub.Addr)
	viper.SetDefault("stub.fixtures", c.Stub.Fixtures)
}

// loadConfig decodes the merged file, environment, and flag settings. The
// backend token comes from the secrets directory unless the environment
// already set it.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Backend.APIToken == "" && cfg.SecretsDir != "" {
		s, err := secrets.Load(cfg.SecretsDir, logger)
		if err != nil {
			return cfg, err
		}
		cfg.Backend.APIToken = s[secrets.BackendToken]
		if len(s) > 0 {
			logger.Debug("loaded secrets", zap.String("dir", cfg.SecretsDir), zap.Int("count", len(s)))
		}
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
