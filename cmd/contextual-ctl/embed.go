package main

import (
	"fmt"

	bfdom "contextual/internal/services/backfill/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Compute embeddings for issues that have none",
	Long: `Backfill the vector column of jira_issues for one project.

Issues are taken newest first. Each batch commits on its own, so an interrupted
run can simply be started again.

Examples:
  contextual-ctl embed --project SCRUM
  contextual-ctl embed --project SCRUM --batch 16 --limit 200`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		project, _ := cmd.Flags().GetString("project")
		batch, _ := cmd.Flags().GetInt("batch")
		limit, _ := cmd.Flags().GetInt("limit")

		runner, ecfg, closeFn, err := backfillRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s project=%s model=%s dim=%d base=%s\n",
			color.CyanString("[EMBED]"), project, ecfg.Model, ecfg.Dim, ecfg.BaseURL)

		rep, err := runner.Run(cmd.Context(), bfdom.Request{Project: project, Batch: batch, Limit: limit})
		if err != nil {
			fmt.Fprintf(out, "%s embedded=%d before failure\n", color.RedString("[STOP]"), rep.Embedded)
			return err
		}
		fmt.Fprintf(out, "%s embedded=%d batches=%d\n", color.GreenString("[DONE]"), rep.Embedded, rep.Batches)
		return nil
	},
}

func init() {
	embedCmd.Flags().String("project", "", "issue project key (required)")
	embedCmd.Flags().Int("batch", 32, "issues per embedding request")
	embedCmd.Flags().Int("limit", 1000, "max issues to process this run")
	_ = embedCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(embedCmd)
}
