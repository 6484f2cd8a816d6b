// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ragscholar/internal/search"
	"github.com/pdiddy/ragscholar/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask <query...>",
	Short: "Explain a passage and find related papers",
	Long: `Ask sends an analysis request to the backend and prints the explanation
followed by the related papers in the backend's order.

Without --text the request matches a home-page search: the query alone,
with empty selected text and paper context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("text", "", "selected text to explain")
	askCmd.Flags().String("context", "", "title of the paper the text is from")
	askCmd.Flags().String("prompt", "", "custom system prompt for the explanation")
	askCmd.Flags().Bool("json", false, "output the analysis as JSON")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	paperCtx, _ := cmd.Flags().GetString("context")
	prompt, _ := cmd.Flags().GetString("prompt")
	asJSON, _ := cmd.Flags().GetBool("json")

	q := search.Query{
		Q:       strings.TrimSpace(strings.Join(args, " ")),
		Text:    strings.TrimSpace(text),
		Context: strings.TrimSpace(paperCtx),
	}
	if q.IsZero() {
		return search.ErrBlankInput
	}
	req := q.Request()
	req.CustomPrompt = prompt

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	res, err := client.Analyze(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, res)
	}
	printAnalysis(cmd, res)
	return nil
}

func printAnalysis(cmd *cobra.Command, res types.AnalysisResult) {
	out := cmd.OutOrStdout()
	explanation := "No explanation available."
	if res.HasExplanation() {
		explanation = strings.TrimSpace(res.Explanation)
	}
	fmt.Fprintf(out, "%s\n\n", explanation)

	papers := res.RelatedPapers
	if len(papers) == 0 {
		fmt.Fprintln(out, "No results found")
		return
	}
	fmt.Fprintf(out, "Found %d relevant papers\n", len(papers))
	for _, rp := range papers {
		fmt.Fprintf(out, "%6.1f  %-16s %s\n", rp.Score, rp.Paper.ShortID(), rp.Paper.Title)
	}
}
