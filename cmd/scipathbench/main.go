// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scipathbench CLI.
// See docs/ARCHITECTURE.md § Command Surface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scipathbench/internal/oracle"
	"github.com/pdiddy/scipathbench/internal/secrets"
	"github.com/pdiddy/scipathbench/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the scipathbench CLI.
var rootCmd = &cobra.Command{
	Use:   "scipathbench",
	Short: "Citation-path benchmark for LLM agents",
	Long: `scipathbench measures how efficiently an agent finds a citation path
between two academic papers. The agent explores the live citation graph
through a metered oracle: every uncached references/citations/search call
costs one step from a fixed budget.

Subcommands cover the full benchmark lifecycle: dataset generates task
files with ground-truth solutions, groundtruth solves a single pair, run
executes tasks against a decision maker (deterministic, human, or
LLM-backed), and results reports stored runs and the leaderboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scipathbench.yaml or ~/.config/scipathbench/config.yaml)")
	rootCmd.PersistentFlags().String("cache-dir", "cache", "directory for the oracle response cache")
	rootCmd.PersistentFlags().String("email", "", "contact email for OpenAlex polite pool access")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scipathbench")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scipathbench"))
		}
	}

	viper.SetEnvPrefix("SCIPATHBENCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// oracleConfig assembles the oracle client configuration from persistent
// flags, the config file, and loaded secrets (flags win).
func oracleConfig(cmd *cobra.Command) types.OracleConfig {
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	email, _ := cmd.Flags().GetString("email")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if cacheDir == "" {
		cacheDir = viper.GetString("oracle.cache_dir")
	}
	if timeout == 0 {
		timeout = viper.GetDuration("oracle.timeout")
	}

	cfg := types.OracleConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout: timeout,
		},
		Email:            secretDefault("openalex-email", email),
		OpenCitationsKey: secretDefault("opencitations-api-key", viper.GetString("oracle.opencitations_key")),
		CacheDir:         cacheDir,
		MaxNeighbors:     viper.GetInt("oracle.max_neighbors"),
	}
	cfg.Normalize()
	return cfg
}

// newOracleClient builds the shared citation oracle from command flags.
func newOracleClient(cmd *cobra.Command) (*oracle.Client, error) {
	return oracle.NewClient(oracleConfig(cmd), os.Stderr)
}

// benchmarkConfig assembles run settings from flags and the config file.
func benchmarkConfig(cmd *cobra.Command) types.BenchmarkConfig {
	budget, _ := cmd.Flags().GetInt("budget")
	maxTurns, _ := cmd.Flags().GetInt("max-turns")
	resultsDir, _ := cmd.Flags().GetString("results-dir")

	if budget == 0 {
		budget = viper.GetInt("benchmark.step_budget")
	}
	if maxTurns == 0 {
		maxTurns = viper.GetInt("benchmark.max_turns")
	}

	cfg := types.BenchmarkConfig{
		StepBudget: budget,
		MaxTurns:   maxTurns,
		ResultsDir: resultsDir,
	}
	cfg.Normalize()
	return cfg
}

func formatDuration(d time.Duration) string {
	return d.Round(100 * time.Millisecond).String()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
