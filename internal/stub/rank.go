// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stub

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/ragscholar/pkg/types"
)

// Relevance weights for a case-insensitive substring match of the query.
const (
	titleWeight    = 10.0
	summaryWeight  = 5.0
	categoryWeight = 3.0
)

// relatedLimit is how many papers an analysis returns.
const relatedLimit = 5

// defaultPrompt is the system prompt used when a request has no custom one.
const defaultPrompt = `You are a helpful academic assistant. Your task is to explain the given text from a research paper.
Provide a clear, concise explanation that:
1. Summarizes the key points or concepts in the text
2. Explains any technical terms or jargon
3. Places the text in the broader context of the research field
4. Highlights the significance or implications of the content

Keep your explanation focused, accurate, and helpful for someone trying to understand this research.`

// Score rates how well p matches query. The title, the summary and any one
// category each contribute once.
func Score(p types.Paper, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	var score float64
	if strings.Contains(strings.ToLower(p.Title), q) {
		score += titleWeight
	}
	if strings.Contains(strings.ToLower(p.Summary), q) {
		score += summaryWeight
	}
	for _, c := range p.Categories {
		if strings.Contains(strings.ToLower(c), q) {
			score += categoryWeight
			break
		}
	}
	return score
}

type scored struct {
	Paper types.Paper `json:"paper"`
	Score float64     `json:"score"`
}

// rank returns the limit best matches for query, highest score first.
// Ties keep fixture order.
func rank(papers []types.Paper, query string, limit int) []scored {
	out := make([]scored, len(papers))
	for i, p := range papers {
		out[i] = scored{Paper: p, Score: Score(p, query)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// explain stands in for the model call. It returns the prompt the real
// backend would send, so the front end has explanation text to render.
func explain(req types.AnalysisRequest) string {
	text := req.SelectedText
	if text == "" {
		text = req.SearchQuery
	}
	if req.CustomPrompt != "" {
		return fmt.Sprintf("%s\n\nThe following text is from a research paper titled '%s':\n\n%s",
			req.CustomPrompt, req.PaperContext, text)
	}
	return fmt.Sprintf("%s\n\nThe following text is from a research paper titled '%s':\n\n%s\n\nPlease explain this text.",
		defaultPrompt, req.PaperContext, text)
}
