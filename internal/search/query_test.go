// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ragscholar/pkg/types"
)

func TestQueryLocation(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"query only", Query{Q: "robotics"}, "/search?q=robotics"},
		{"escapes spaces", Query{Q: "graph theory"}, "/search?q=graph+theory"},
		{"all fields", Query{Q: "spin", Text: "spin", Context: "Quantum & Co"}, "/search?c=Quantum+%26+Co&q=spin&t=spin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Location(); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseQueryRoundTrip(t *testing.T) {
	q := Query{Q: "attention is all", Text: "multi-head", Context: "Transformers: a survey"}
	u, err := url.Parse(q.Location())
	require.NoError(t, err)

	assert.Equal(t, ResultsPath, u.Path)
	assert.Equal(t, q, ParseQuery(u.Query()))
}

func TestParseQueryMissingParams(t *testing.T) {
	got := ParseQuery(url.Values{})
	assert.True(t, got.IsZero())
	assert.Equal(t, Query{}, got)

	got = ParseQuery(url.Values{"q": {"  robotics "}})
	assert.Equal(t, Query{Q: "robotics"}, got)
	assert.False(t, got.IsZero())
}

func TestQueryRequest(t *testing.T) {
	got := Query{Q: "robotics"}.Request()
	assert.Equal(t, types.AnalysisRequest{SearchQuery: "robotics"}, got)

	got = Query{Q: "a", Text: "b", Context: "c"}.Request()
	assert.Equal(t, types.AnalysisRequest{SearchQuery: "a", SelectedText: "b", PaperContext: "c"}, got)
}
