// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/ragscholar/internal/httputil"
	"github.com/pdiddy/ragscholar/pkg/types"
)

func init() {
	requestInterval = time.Millisecond
	httputil.RetryBaseDelay = time.Millisecond
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v5</id>
    <updated>2023-08-02T00:41:18Z</updated>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>  We propose a new architecture based solely on attention mechanisms.
</summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <arxiv:comment>15 pages, 5 figures</arxiv:comment>
    <arxiv:journal_ref>NeurIPS 2017</arxiv:journal_ref>
    <arxiv:doi>10.48550/arXiv.1706.03762</arxiv:doi>
    <link href="http://arxiv.org/abs/1706.03762v5" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v5" rel="related" type="application/pdf"/>
    <arxiv:primary_category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/api/errors#incorrect_id_format</id>
    <title>Error</title>
  </entry>
</feed>`

func feedServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() {
		apiBase = old
		ts.Close()
	})
}

func newFetcher(t *testing.T) *Fetcher {
	return NewFetcher(types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "ragscholar-test"}, 2, zaptest.NewLogger(t))
}

func TestFetchParsesEntries(t *testing.T) {
	var gotQuery, gotUA string
	feedServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.UserAgent()
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, sampleFeed)
	})

	papers, err := newFetcher(t).Fetch(context.Background(), "machine learning", 20, 5)
	require.NoError(t, err)

	assert.Equal(t, "search_query=all:machine+learning&start=20&max_results=5", gotQuery)
	assert.Equal(t, "ragscholar-test", gotUA)

	require.Len(t, papers, 1)
	p := papers[0]
	assert.Equal(t, "http://arxiv.org/abs/1706.03762v5", p.ID)
	assert.Equal(t, "Attention Is All You Need", p.Title)
	assert.Equal(t, "We propose a new architecture based solely on attention mechanisms.", p.Summary)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, p.AuthorNames())
	assert.Equal(t, "2017", p.Year)
	assert.Equal(t, "15 pages, 5 figures", p.Comment)
	assert.Equal(t, "NeurIPS 2017", p.JournalRef)
	assert.Equal(t, "10.48550/arXiv.1706.03762", p.DOI)
	assert.Equal(t, "cs.CL", p.PrimaryCategory)
	assert.Equal(t, []string{"cs.CL", "cs.LG"}, p.Categories)
	require.Len(t, p.Links, 2)
	assert.True(t, p.Links[1].IsPDF())
	assert.Equal(t, 2023, p.UpdatedTime().Year())
}

func TestFetchRetriesThrottling(t *testing.T) {
	var calls int32
	feedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, sampleFeed)
	})

	papers, err := newFetcher(t).Fetch(context.Background(), "cat:cs.CL", 0, 0)
	require.NoError(t, err)
	assert.Len(t, papers, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchErrors(t *testing.T) {
	feedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "broken") {
			fmt.Fprint(w, "<feed><entry>")
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	})
	f := newFetcher(t)

	_, err := f.Fetch(context.Background(), "   ", 0, 5)
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), "robotics", 0, 5)
	assert.ErrorContains(t, err, "HTTP 400")

	_, err = f.Fetch(context.Background(), "broken", 0, 5)
	assert.ErrorContains(t, err, "parsing arXiv response")
}

func TestFetchTopicsDedupesAcrossVersions(t *testing.T) {
	feedServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.RawQuery, "fails"):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.Contains(r.URL.RawQuery, "second"):
			fmt.Fprint(w, strings.ReplaceAll(sampleFeed, "1706.03762v5", "1706.03762v4"))
		default:
			fmt.Fprint(w, sampleFeed)
		}
	})

	papers, err := newFetcher(t).FetchTopics(context.Background(), []string{"first", "fails", "second"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "http://arxiv.org/abs/1706.03762v5", papers[0].ID)
}

func TestFetchTopicsAllFailing(t *testing.T) {
	feedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := newFetcher(t).FetchTopics(context.Background(), []string{"a", "b"}, 0, 10)
	assert.ErrorContains(t, err, "all 2 topics failed")
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"machine learning", "all:machine+learning"},
		{"cat:cs.LG", "cat%3Acs.LG"},
		{"  robotics ", "all:robotics"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			if got := buildQuery(tt.topic); got != tt.want {
				t.Errorf("buildQuery(%q) = %q, want %q", tt.topic, got, tt.want)
			}
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/1706.03762v5", "1706.03762"},
		{"http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"http://arxiv.org/abs/physics/0403017v1", "physics/0403017"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := extractArxivID(tt.input); got != tt.want {
				t.Errorf("extractArxivID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
