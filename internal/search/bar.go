// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/ragscholar/pkg/types"
)

// ErrBlankInput is returned when a search bar is submitted with only
// whitespace. Callers treat it as a no-op rather than a failure.
var ErrBlankInput = errors.New("search input is blank")

// Analyzer runs a backend analysis. *paperclient.Client and the query cache
// both satisfy it.
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error)
}

// HomeBar is the home-page search bar. It navigates to the results route
// with only the query set.
type HomeBar struct{}

// Submit returns the results URL for input.
func (HomeBar) Submit(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrBlankInput
	}
	return Query{Q: input}.Location(), nil
}

// PaperBar is the search bar on a paper detail page. The input doubles as
// the passage to explain, and the paper title travels as context.
type PaperBar struct {
	PaperContext string
}

// Placeholder is the hint shown in the empty input.
func (b PaperBar) Placeholder() string {
	return fmt.Sprintf("Search within %q...", b.PaperContext)
}

// Submit returns the results URL for input scoped to the paper.
func (b PaperBar) Submit(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrBlankInput
	}
	return Query{Q: input, Text: input, Context: strings.TrimSpace(b.PaperContext)}.Location(), nil
}

// GenericBar analyzes immediately instead of navigating first. Its result
// is rendered inline by the caller.
type GenericBar struct {
	PaperContext string
	Analyzer     Analyzer
}

// InlineOutcome is what a GenericBar submission produced.
type InlineOutcome struct {
	Result types.AnalysisResult

	// Location is set when the bar has no paper context; the caller should
	// navigate there after showing Result.
	Location string
}

// Submit runs the analysis for input. Errors from the analyzer are returned
// unchanged.
func (b GenericBar) Submit(ctx context.Context, input string) (InlineOutcome, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return InlineOutcome{}, ErrBlankInput
	}
	if b.Analyzer == nil {
		return InlineOutcome{}, errors.New("generic search bar has no analyzer")
	}

	res, err := b.Analyzer.Analyze(ctx, types.AnalysisRequest{
		SelectedText: input,
		PaperContext: strings.TrimSpace(b.PaperContext),
		SearchQuery:  input,
	})
	if err != nil {
		return InlineOutcome{}, err
	}

	out := InlineOutcome{Result: res}
	if strings.TrimSpace(b.PaperContext) == "" {
		out.Location = Query{Q: input}.Location()
	}
	return out, nil
}
