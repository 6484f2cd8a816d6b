// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ragscholar/internal/cite"
	"github.com/pdiddy/ragscholar/internal/web"
	"github.com/pdiddy/ragscholar/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List a random sample of papers",
	Long: `Papers asks the backend for its random listing, the same set the home
page shows. A backend failure prints an empty list.`,
	Args: cobra.NoArgs,
	RunE: runPapers,
}

var paperCmd = &cobra.Command{
	Use:   "paper <id>",
	Short: "Show one paper",
	Long: `Paper fetches a paper by its id or arXiv suffix (e.g. 2301.00001v1).
--format csl prints a CSL-YAML entry for reference managers.`,
	Args: cobra.ExactArgs(1),
	RunE: runPaper,
}

func init() {
	papersCmd.Flags().Bool("json", false, "output papers as JSON")
	paperCmd.Flags().String("format", "text", "output format: text, json, or csl")

	rootCmd.AddCommand(papersCmd)
	rootCmd.AddCommand(paperCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	papers := client.ListRandomPapers(cmd.Context(), cfg.Backend.RandomCount)
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, papers)
	}
	if len(papers) == 0 {
		fmt.Fprintln(out, "No papers found")
		return nil
	}
	for _, p := range papers {
		fmt.Fprintf(out, "%-16s %s\n", p.ShortID(), p.Title)
	}
	return nil
}

func runPaper(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "csl":
	default:
		return fmt.Errorf("unknown format %q: use text, json, or csl", format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	res := client.GetPaperByID(cmd.Context(), args[0])
	switch res.Status {
	case types.LookupNotFound:
		return fmt.Errorf("paper %s not found", args[0])
	case types.LookupTransportError:
		return fmt.Errorf("fetching paper %s: %s", args[0], res.Reason)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, res.Paper)
	case "csl":
		return cite.Write(out, res.Paper)
	}
	printPaper(out, res.Paper)
	return nil
}

func printPaper(w io.Writer, p types.Paper) {
	fmt.Fprintln(w, p.Title)
	if names := p.AuthorNames(); len(names) > 0 {
		fmt.Fprintln(w, strings.Join(names, ", "))
	}
	if t := p.PublishedTime(); !t.IsZero() {
		fmt.Fprintf(w, "Published: %s\n", t.Format(web.DateLayout))
	}
	fmt.Fprintf(w, "arXiv: %s\n", p.ShortID())
	if len(p.Categories) > 0 {
		fmt.Fprintf(w, "Categories: %s\n", strings.Join(p.Categories, ", "))
	}
	if p.JournalRef != "" {
		fmt.Fprintf(w, "Journal: %s\n", p.JournalRef)
	}
	for _, l := range p.Links {
		label := "Page"
		if l.IsPDF() {
			label = "PDF"
		}
		fmt.Fprintf(w, "%s: %s\n", label, l.Href)
	}
	if p.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(p.Summary))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
