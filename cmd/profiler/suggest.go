// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Resolve a free-text name against the institution dictionary",
	Long: `Suggest runs the input-resolution layer on its own: prefix search over
the dictionary trie, institutional-prefix variations, and the spell
corrector as a last resort. Every suggestion is a real dictionary entry;
corrections never invent names.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		query := strings.Join(args, " ")
		k := mustInt(cmd, "limit")
		suggestions := svc.suggest.Suggest(query, k)

		if mustBool(cmd, "json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(suggestions)
		}

		if len(suggestions) == 0 {
			fmt.Fprintln(os.Stderr, "No suggestions.")
			return nil
		}
		for _, s := range suggestions {
			line := fmt.Sprintf("%s  [%s]", s.Entry.Name, s.Source)
			if s.Entry.Type != "" {
				line += fmt.Sprintf("  (%s)", s.Entry.Type)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().Int("limit", 10, "maximum number of suggestions")
	suggestCmd.Flags().Bool("json", false, "output suggestions as JSON")

	rootCmd.AddCommand(suggestCmd)
}
