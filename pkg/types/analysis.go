// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AnalysisRequest is the body of POST /analyze. All four fields are always
// sent; unset fields travel as empty strings.
type AnalysisRequest struct {
	// SelectedText is the passage the user wants explained.
	SelectedText string `json:"selectedText"`

	// PaperContext is the title of the paper the text came from.
	PaperContext string `json:"paperContext"`

	// SearchQuery drives the related-paper search. The backend falls back
	// to SelectedText when it is empty.
	SearchQuery string `json:"searchQuery"`

	// CustomPrompt replaces the backend's default system prompt.
	CustomPrompt string `json:"customPrompt"`
}

// IsEmpty reports whether the request carries no text to search or explain.
func (r AnalysisRequest) IsEmpty() bool {
	return strings.TrimSpace(r.SearchQuery) == "" && strings.TrimSpace(r.SelectedText) == ""
}

// RelatedPaper is a paper returned by an analysis along with the backend's
// similarity score.
type RelatedPaper struct {
	Paper Paper   `json:"paper"`
	Score float64 `json:"score,omitempty"`
}

// UnmarshalJSON accepts both {"paper": {...}, "score": n} entries and bare
// paper objects.
func (r *RelatedPaper) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Paper json.RawMessage `json:"paper"`
		Score float64         `json:"score"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	r.Score = wrapped.Score
	raw := bytes.TrimSpace(wrapped.Paper)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		return json.Unmarshal(raw, &r.Paper)
	}
	return json.Unmarshal(data, &r.Paper)
}

// AnalysisKind discriminates the two response shapes of POST /analyze.
type AnalysisKind string

const (
	// AnalysisExplained is an object carrying an explanation and related papers.
	AnalysisExplained AnalysisKind = "explained"

	// AnalysisList is a bare array of papers.
	AnalysisList AnalysisKind = "list"
)

// AnalysisResult is the decoded analysis response. RelatedPapers keeps the
// backend's relevance order; nothing re-ranks it client side.
type AnalysisResult struct {
	Kind          AnalysisKind   `json:"kind"`
	Explanation   string         `json:"explanation,omitempty"`
	RelatedPapers []RelatedPaper `json:"relatedPapers,omitempty"`
}

// HasExplanation reports whether the backend returned explanation text.
func (r AnalysisResult) HasExplanation() bool {
	return r.Kind == AnalysisExplained && strings.TrimSpace(r.Explanation) != ""
}

// Papers returns the related papers in backend order.
func (r AnalysisResult) Papers() []Paper {
	papers := make([]Paper, 0, len(r.RelatedPapers))
	for _, rp := range r.RelatedPapers {
		papers = append(papers, rp.Paper)
	}
	return papers
}
