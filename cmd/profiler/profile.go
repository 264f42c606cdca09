// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile <institution name>",
	Short: "Build a structured profile for an institution",
	Long: `Profile runs the full pipeline for one institution: search for candidate
URLs, crawl them, extract typed fields with the configured model, score
media and profile quality, and print the result.

The free-text name is resolved against the dictionary first; pass --type
to skip institution-type inference.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		req := types.Request{Name: strings.Join(args, " ")}
		req.Type = types.InstitutionType(mustString(cmd, "type"))
		if req.Type != types.TypeUnknown && !req.Type.Valid() {
			return fmt.Errorf("unknown institution type %q", req.Type)
		}
		req.Options = requestOptions(cmd)

		// Resolve typos and partial names before spending API calls.
		if resolved, ok := svc.suggest.Resolve(req.Name); ok {
			if resolved.Entry.Name != req.Name {
				fmt.Fprintf(os.Stderr, "Resolved %q to %q\n", req.Name, resolved.Entry.Name)
			}
			req.Name = resolved.Entry.Name
			if req.Type == types.TypeUnknown {
				req.Type = resolved.Entry.Type
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := svc.pipeline.Run(ctx, req)
		if err != nil {
			return err
		}

		if mustBool(cmd, "json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(result)
	},
}

// registerProfileFlags declares the profile command's flags.
func registerProfileFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "institution type: university, hospital, bank, general")
	cmd.Flags().String("location", "", "location hint appended to the search query")
	cmd.Flags().String("keywords", "", "additional search keywords")
	cmd.Flags().String("domain-hint", "", "preferred domain (adds a site: filter)")
	cmd.Flags().String("exclude", "", "space-separated terms to exclude from search")
	cmd.Flags().String("strategy", "", "crawl strategy: priority_based, equal, high_links, high_depth")
	cmd.Flags().Int("max-pages", 0, "cap on total pages crawled")
	cmd.Flags().Bool("force-refresh", false, "bypass cache reads for this request")
	cmd.Flags().Bool("skip-extraction", false, "stop after the crawl phase")
	cmd.Flags().Bool("json", false, "output the result as JSON instead of YAML")
}

func init() {
	registerProfileFlags(profileCmd)
	rootCmd.AddCommand(profileCmd)
}

// requestOptions maps the profile flags onto the recognized request
// options. The keywords and exclude flags take whitespace-separated terms.
func requestOptions(cmd *cobra.Command) types.RequestOptions {
	return types.RequestOptions{
		Location:           mustString(cmd, "location"),
		AdditionalKeywords: strings.Fields(mustString(cmd, "keywords")),
		DomainHint:         mustString(cmd, "domain-hint"),
		ExcludeTerms:       strings.Fields(mustString(cmd, "exclude")),
		ForceRefresh:       mustBool(cmd, "force-refresh"),
		SkipExtraction:     mustBool(cmd, "skip-extraction"),
		Strategy:           types.CrawlStrategy(mustString(cmd, "strategy")),
		MaxPages:           mustInt(cmd, "max-pages"),
	}
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func mustBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func mustInt(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}
