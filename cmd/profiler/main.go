// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the profiler CLI. It wires the
// dictionary, caches, search/crawl/extract backends, and the benchmark
// collector into the profiling pipeline, and exposes each surface as a
// subcommand: profile, suggest, cache, benchmark.
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the named secret.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the profiler CLI.
var rootCmd = &cobra.Command{
	Use:   "profiler",
	Short: "Structured institution profiles from unstructured web sources",
	Long: `profiler builds a structured profile for a named institution (university,
hospital, bank, or general organization): typed fields, scored media,
a quality score, and a per-request benchmark trace.

The pipeline runs search, crawl, and extraction phases behind per-phase
similarity caches. Each surface is a subcommand: profile runs the full
pipeline, suggest resolves free-text names against the dictionary, cache
and benchmark manage the supporting stores.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./profiler.yaml or ~/.config/profiler/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("profiler")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "profiler"))
		}
	}

	viper.SetEnvPrefix("PROFILER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
