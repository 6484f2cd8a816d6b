// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/ragscholar/internal/arxiv"
	"github.com/pdiddy/ragscholar/internal/stub"
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Manage the development backend's fixture file",
}

var fixturesFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fill the fixture file from the arXiv API",
	Long: `Fetch queries arXiv for each topic and writes the merged papers to the
fixture file the stub serves. Without --topic it samples --random topics from
the built-in list. Requests are spaced three seconds apart as arXiv asks.`,
	Args: cobra.NoArgs,
	RunE: runFixturesFetch,
}

func init() {
	fixturesFetchCmd.Flags().StringSlice("topic", nil, `topics to fetch, free text or field queries like "cat:cs.LG" (repeatable)`)
	fixturesFetchCmd.Flags().Int("random", 5, "number of built-in topics to sample when --topic is not set")
	fixturesFetchCmd.Flags().Int("per-topic", 10, "papers to fetch per topic")
	fixturesFetchCmd.Flags().Int("start", 0, "result offset within each topic")
	fixturesFetchCmd.Flags().String("out", "", "output file (default: the stub fixture path)")

	fixturesCmd.AddCommand(fixturesFetchCmd)
	rootCmd.AddCommand(fixturesCmd)
}

func runFixturesFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	topics, _ := cmd.Flags().GetStringSlice("topic")
	random, _ := cmd.Flags().GetInt("random")
	perTopic, _ := cmd.Flags().GetInt("per-topic")
	start, _ := cmd.Flags().GetInt("start")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = cfg.Stub.Fixtures
	}
	if len(topics) == 0 {
		topics = sampleTopics(random)
	}

	fetcher := arxiv.NewFetcher(cfg.Backend.HTTPConfig, cfg.Backend.MaxRetries, logger)
	papers, err := fetcher.FetchTopics(cmd.Context(), topics, start, perTopic)
	if err != nil {
		return err
	}

	ff := stub.FixtureFile{
		Source:  "arxiv",
		Topics:  topics,
		Fetched: time.Now().UTC(),
		Papers:  papers,
	}
	if err := stub.WriteFixtureFile(out, ff); err != nil {
		return err
	}
	logger.Info("wrote fixtures", zap.String("path", out), zap.Int("papers", len(papers)), zap.Strings("topics", topics))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d papers to %s\n", len(papers), out)
	return nil
}

// sampleTopics picks n distinct built-in topics at random.
func sampleTopics(n int) []string {
	if n <= 0 {
		n = 1
	}
	perm := rand.Perm(len(arxiv.Topics))
	if n > len(perm) {
		n = len(perm)
	}
	topics := make([]string, n)
	for i := range topics {
		topics[i] = arxiv.Topics[perm[i]]
	}
	return topics
}
