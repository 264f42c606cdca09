// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/benchmark"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Query the benchmark archive",
}

var benchmarkReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize cost, latency, and success rates across sessions",
	Long: `Report ingests all session journals into the sqlite archive and prints
the cross-session roll-up: per-category success rate, average latency,
total cost, and cache hits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadPipelineConfig()

		archive, err := benchmark.OpenArchive(cfg.Benchmark.ArchivePath)
		if err != nil {
			return err
		}
		defer archive.Close()

		ctx := cmd.Context()
		n, err := archive.IngestDir(ctx, cfg.Benchmark.Dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Ingested %d samples from %s\n", n, cfg.Benchmark.Dir)

		report, err := archive.Report(ctx)
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	},
}

func init() {
	benchmarkCmd.AddCommand(benchmarkReportCmd)
	rootCmd.AddCommand(benchmarkCmd)
}
