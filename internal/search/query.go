// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search composes paper searches: it encodes and decodes the
// /search?q=&t=&c= results URL, implements the search bar variants, and
// guards against stale analysis responses overwriting newer ones.
package search

import (
	"net/url"
	"strings"

	"github.com/pdiddy/ragscholar/pkg/types"
)

// ResultsPath is the front-end route that renders analysis results.
const ResultsPath = "/search"

// URL parameter names on the results route.
const (
	ParamQuery   = "q"
	ParamText    = "t"
	ParamContext = "c"
)

// Query is the state carried in a results URL.
type Query struct {
	// Q is the free-text search query.
	Q string

	// Text is the passage to explain. Empty for home-page searches.
	Text string

	// Context is the title of the paper the search was scoped to.
	Context string
}

// ParseQuery reads a Query from results-route parameters. Missing
// parameters decode as empty strings.
func ParseQuery(v url.Values) Query {
	return Query{
		Q:       strings.TrimSpace(v.Get(ParamQuery)),
		Text:    strings.TrimSpace(v.Get(ParamText)),
		Context: strings.TrimSpace(v.Get(ParamContext)),
	}
}

// IsZero reports whether there is nothing to search for. The results page
// stays idle for a zero query.
func (q Query) IsZero() bool { return q.Q == "" }

// Values encodes the query as URL parameters, omitting empty t and c.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set(ParamQuery, q.Q)
	if q.Text != "" {
		v.Set(ParamText, q.Text)
	}
	if q.Context != "" {
		v.Set(ParamContext, q.Context)
	}
	return v
}

// Location returns the results-route URL for q, e.g. "/search?q=robotics".
func (q Query) Location() string {
	return ResultsPath + "?" + q.Values().Encode()
}

// Request maps the query onto the backend analysis request.
func (q Query) Request() types.AnalysisRequest {
	return types.AnalysisRequest{
		SearchQuery:  q.Q,
		SelectedText: q.Text,
		PaperContext: q.Context,
	}
}
