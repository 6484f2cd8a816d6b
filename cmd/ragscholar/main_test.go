// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ragscholar/internal/arxiv"
	"github.com/pdiddy/ragscholar/internal/stub"
	"github.com/pdiddy/ragscholar/pkg/types"
)

var cliPapers = []types.Paper{
	{
		ID:         "http://arxiv.org/abs/2301.00001v1",
		Title:      "Robotics for All",
		Summary:    "Robots everywhere.",
		Authors:    []types.Author{{Name: "Ada Lovelace"}},
		Published:  "2023-01-05T18:00:00Z",
		Categories: []string{"cs.RO"},
	},
	{ID: "http://arxiv.org/abs/2301.00002v1", Title: "Optics"},
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func stubURL(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(stub.New(cliPapers, nil).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ragscholar dev\n", out)
}

func TestPapersCommand(t *testing.T) {
	url := stubURL(t)

	out, err := run(t, "papers", "--backend", url, "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "2301.00001v1")
	assert.Contains(t, out, "Robotics for All")

	out, err = run(t, "papers", "--backend", url, "--json")
	require.NoError(t, err)
	var papers []types.Paper
	require.NoError(t, json.Unmarshal([]byte(out), &papers))
	assert.Len(t, papers, 2)
}

func TestPaperCommandFormats(t *testing.T) {
	url := stubURL(t)

	out, err := run(t, "paper", "2301.00001v1", "--backend", url, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Robotics for All\nAda Lovelace\nPublished: January 5, 2023")

	out, err = run(t, "paper", "2301.00001v1", "--backend", url, "--format", "csl")
	require.NoError(t, err)
	assert.Contains(t, out, "type: article")
	assert.Contains(t, out, "family: Lovelace")

	_, err = run(t, "paper", "missing", "--backend", url, "--format", "text")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, "paper", "2301.00001v1", "--backend", url, "--format", "bibtex")
	assert.ErrorContains(t, err, "unknown format")
}

func TestAskCommand(t *testing.T) {
	url := stubURL(t)

	out, err := run(t, "ask", "robotics", "--backend", url, "--json=false", "--text", "", "--context", "", "--prompt", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 relevant papers")
	lines := strings.Split(out, "\n")
	var first string
	for _, l := range lines {
		if strings.Contains(l, "2301.0000") {
			first = l
			break
		}
	}
	assert.Contains(t, first, "Robotics for All", "best match is listed first")

	out, err = run(t, "ask", "optics", "--backend", url, "--json", "--text", "", "--context", "", "--prompt", "")
	require.NoError(t, err)
	var res types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, types.AnalysisExplained, res.Kind)
	require.NotEmpty(t, res.RelatedPapers)
	assert.Equal(t, "Optics", res.RelatedPapers[0].Paper.Title)
}

func TestSampleTopics(t *testing.T) {
	got := sampleTopics(3)
	assert.Len(t, got, 3)
	seen := map[string]bool{}
	for _, topic := range got {
		assert.False(t, seen[topic])
		seen[topic] = true
	}
	assert.Len(t, sampleTopics(0), 1)
	assert.Len(t, sampleTopics(1000), len(arxiv.Topics))
}

func TestLoadConfigReadsBackendToken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backend-api-token"), []byte("tok-abc\n"), 0o600))

	viper.Set("secrets_dir", dir)
	t.Cleanup(func() { viper.Set("secrets_dir", types.DefaultConfig().SecretsDir) })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", cfg.Backend.APIToken)

	viper.Set("secrets_dir", filepath.Join(dir, "missing"))
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Backend.APIToken)
}
