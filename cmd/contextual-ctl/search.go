package main

import (
	"fmt"
	"io"
	"strings"

	bfdom "contextual/internal/services/backfill/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Embed a text and list the nearest issues of a project",
	Long: `Query the vector index the way the recommendation consumer does.

Examples:
  contextual-ctl search --project SCRUM --text "fix login redirect; files: auth/login.go"
  contextual-ctl search --project SCRUM --text "bump deps" --topk 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		project, _ := cmd.Flags().GetString("project")
		text, _ := cmd.Flags().GetString("text")
		topk, _ := cmd.Flags().GetInt("topk")

		runner, _, closeFn, err := backfillRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		q := strings.TrimSpace(text)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.CyanString("[QUERY]"), q)
		hits, err := runner.Search(cmd.Context(), project, q, topk)
		if err != nil {
			return err
		}
		printHits(cmd.OutOrStdout(), hits)
		return nil
	},
}

func printHits(w io.Writer, hits []bfdom.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, color.YellowString("[RESULT]"), "empty")
		return
	}
	fmt.Fprintln(w, color.GreenString("[RESULT]"))
	for i, h := range hits {
		fmt.Fprintln(w, formatHit(i+1, h))
	}
}

// formatHit renders one ranked row; titles are cut at 80 runes
func formatHit(i int, h bfdom.Hit) string {
	status := h.Status
	if status == "" {
		status = "-"
	}
	title := h.Title
	if r := []rune(title); len(r) > 80 {
		title = string(r[:80])
	}
	return fmt.Sprintf("%2d. %-10s  score=%.4f  status=%-6s  title=%s", i, h.Key, h.Score, status, title)
}

func init() {
	searchCmd.Flags().String("project", "", "issue project key (required)")
	searchCmd.Flags().String("text", "", "query text, e.g. commit message plus file names (required)")
	searchCmd.Flags().Int("topk", 3, "number of candidates to list")
	_ = searchCmd.MarkFlagRequired("project")
	_ = searchCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(searchCmd)
}
