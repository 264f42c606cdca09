// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/cache"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the phase caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print entry counts for the search, crawl, and extract caches",
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, err := openCaches()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CACHE\tDIR\tENTRIES")
		for _, s := range stores {
			fmt.Fprintf(w, "%s\t%s\t%d\n", s.name, s.cfg.Dir, s.store.Len())
		}
		return w.Flush()
	},
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired entries from all caches",
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, err := openCaches()
		if err != nil {
			return err
		}
		for _, s := range stores {
			removed, err := s.store.Sweep()
			if err != nil {
				return fmt.Errorf("sweeping %s cache: %w", s.name, err)
			}
			fmt.Printf("%s: removed %d expired entries\n", s.name, removed)
		}
		return nil
	},
}

type namedStore struct {
	name  string
	cfg   types.CacheConfig
	store *cache.Store
}

func openCaches() ([]namedStore, error) {
	cfg := loadPipelineConfig()
	specs := []struct {
		name string
		c    types.CacheConfig
	}{
		{"search", cfg.SearchCache},
		{"crawl", cfg.CrawlCache},
		{"extract", cfg.ExtractCache},
	}

	var stores []namedStore
	for _, spec := range specs {
		s, err := cache.Open(spec.c.Dir, spec.c.TTL, spec.c.SimilarityThreshold, nil)
		if err != nil {
			return nil, fmt.Errorf("opening %s cache: %w", spec.name, err)
		}
		stores = append(stores, namedStore{name: spec.name, cfg: spec.c, store: s})
	}
	return stores, nil
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheSweepCmd)
	rootCmd.AddCommand(cacheCmd)
}
