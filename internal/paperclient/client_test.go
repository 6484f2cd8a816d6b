// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paperclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
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
	httputil.RetryBaseDelay = time.Millisecond
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(types.BackendConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		BaseURL:    baseURL,
		MaxRetries: 1,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "localhost:8040"},
		{"ftp", "ftp://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(types.BackendConfig{BaseURL: tt.url}, nil)
			assert.Error(t, err)
		})
	}
}

// --- ListRandomPapers ---

func TestListRandomPapers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("count"))
		assert.Equal(t, "test/0.1", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"papers":[
			{"id":"http://arxiv.org/abs/2301.00001v1","title":"First","authors":[{"Name":"Ada"}]},
			{"id":"2301.00002","title":"Second","authors":["Grace"]}
		]}`))
	}))
	defer ts.Close()

	papers := newTestClient(t, ts.URL).ListRandomPapers(context.Background(), 10)
	require.Len(t, papers, 2)
	assert.Equal(t, "First", papers[0].Title)
	assert.Equal(t, []string{"Ada"}, papers[0].AuthorNames())
	assert.Equal(t, []string{"Grace"}, papers[1].AuthorNames())
}

func TestListRandomPapersFailuresReturnEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Failed to fetch papers"}`))
		}},
		{"malformed json", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"papers": [`))
		}},
		{"missing papers key", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{}`))
		}},
		{"zero papers", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"papers":[]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			papers := newTestClient(t, ts.URL).ListRandomPapers(context.Background(), 10)
			require.NotNil(t, papers)
			assert.Empty(t, papers)
		})
	}
}

func TestListRandomPapersUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	papers := newTestClient(t, url).ListRandomPapers(context.Background(), 10)
	assert.NotNil(t, papers)
	assert.Empty(t, papers)
}

// --- GetPaperByID ---

func TestGetPaperByID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/paper/2301.00001":
			w.Write([]byte(`{"paper":{"id":"http://arxiv.org/abs/2301.00001v1","title":"X",
				"summary":"An abstract.","published":"2023-01-02T00:00:00Z",
				"links":[{"Href":"http://arxiv.org/pdf/2301.00001v1","Rel":"related","Type":"application/pdf"}]}}`))
		case "/paper/empty":
			w.Write([]byte(`{"paper":null}`))
		case "/paper/physics%2F0403017v1":
			w.Write([]byte(`{"paper":{"id":"http://arxiv.org/abs/physics/0403017v1","title":"Old"}}`))
		case "/paper/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Paper not found"}`))
		}
	}))
	defer ts.Close()
	c := newTestClient(t, ts.URL)

	t.Run("found", func(t *testing.T) {
		got := c.GetPaperByID(context.Background(), "2301.00001")
		require.Equal(t, types.LookupFound, got.Status)
		assert.Equal(t, "X", got.Paper.Title)
		assert.Equal(t, "2301.00001v1", got.Paper.ShortID())
		require.Len(t, got.Paper.Links, 1)
		assert.True(t, got.Paper.Links[0].IsPDF())
		assert.Equal(t, 2023, got.Paper.PublishedTime().Year())
	})

	t.Run("escapes slashes in ids", func(t *testing.T) {
		got := c.GetPaperByID(context.Background(), "physics/0403017v1")
		require.Equal(t, types.LookupFound, got.Status)
		assert.Equal(t, "Old", got.Paper.Title)
	})

	t.Run("404 is not found", func(t *testing.T) {
		got := c.GetPaperByID(context.Background(), "nope")
		assert.Equal(t, types.LookupNotFound, got.Status)
	})

	t.Run("null payload is not found", func(t *testing.T) {
		got := c.GetPaperByID(context.Background(), "empty")
		assert.Equal(t, types.LookupNotFound, got.Status)
	})

	t.Run("blank id is not found", func(t *testing.T) {
		got := c.GetPaperByID(context.Background(), "  ")
		assert.Equal(t, types.LookupNotFound, got.Status)
	})

	t.Run("5xx is a transport error", func(t *testing.T) {
		got := c.GetPaperByID(context.Background(), "broken")
		assert.Equal(t, types.LookupTransportError, got.Status)
		assert.Contains(t, got.Reason, "502")
	})
}

func TestGetPaperByIDUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	got := newTestClient(t, url).GetPaperByID(context.Background(), "2301.00001")
	assert.Equal(t, types.LookupTransportError, got.Status)
	assert.NotEmpty(t, got.Reason)
}

// --- Analyze ---

func TestAnalyzeSendsAllFields(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"explanation":"**Robots**","relatedPapers":[
			{"paper":{"id":"b","title":"B"},"score":3},
			{"paper":{"id":"a","title":"A"},"score":10}
		]}`))
	}))
	defer ts.Close()

	res, err := newTestClient(t, ts.URL).Analyze(context.Background(), types.AnalysisRequest{SearchQuery: "robotics"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"selectedText": "",
		"paperContext": "",
		"searchQuery":  "robotics",
		"customPrompt": "",
	}, got)
	assert.Equal(t, types.AnalysisExplained, res.Kind)
	assert.Equal(t, "**Robots**", res.Explanation)
	require.Len(t, res.RelatedPapers, 2)
	// Backend order is preserved even though scores are ascending.
	assert.Equal(t, "B", res.RelatedPapers[0].Paper.Title)
	assert.Equal(t, "A", res.RelatedPapers[1].Paper.Title)
}

func TestAnalyzeRawArray(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id":"x","title":"X"}]`))
	}))
	defer ts.Close()

	res, err := newTestClient(t, ts.URL).Analyze(context.Background(), types.AnalysisRequest{SearchQuery: "x"})
	require.NoError(t, err)
	assert.Equal(t, types.AnalysisList, res.Kind)
	assert.False(t, res.HasExplanation())
	require.Len(t, res.Papers(), 1)
	assert.Equal(t, "X", res.Papers()[0].Title)
}

func TestAnalyzeErrors(t *testing.T) {
	t.Run("empty request", func(t *testing.T) {
		c := newTestClient(t, "http://127.0.0.1:1")
		_, err := c.Analyze(context.Background(), types.AnalysisRequest{CustomPrompt: "be brief"})
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("status error carries backend message", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Selected text is required"}`))
		}))
		defer ts.Close()

		_, err := newTestClient(t, ts.URL).Analyze(context.Background(), types.AnalysisRequest{SearchQuery: "q"})
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusBadRequest, se.StatusCode)
		assert.Equal(t, "Selected text is required", se.Message)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		_, err := newTestClient(t, url).Analyze(context.Background(), types.AnalysisRequest{SearchQuery: "q"})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer ts.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := newTestClient(t, ts.URL).Analyze(ctx, types.AnalysisRequest{SearchQuery: "q"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestAnalyzeRateLimited(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, err := New(types.BackendConfig{BaseURL: ts.URL, AnalyzeRate: 0.001, AnalyzeBurst: 1}, nil)
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), types.AnalysisRequest{SearchQuery: "a"})
	require.NoError(t, err)

	// The second call would wait ~1000s for a token; the deadline fails it fast.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Analyze(ctx, types.AnalysisRequest{SearchQuery: "b"})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAPITokenSentAsBearer(t *testing.T) {
	var got []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/analyze":
			w.Write([]byte(`{"relatedPapers":[],"explanation":"ok"}`))
		default:
			w.Write([]byte(`{"papers":[]}`))
		}
	}))
	defer ts.Close()

	c, err := New(types.BackendConfig{BaseURL: ts.URL, APIToken: "tok-123"}, nil)
	require.NoError(t, err)

	c.ListRandomPapers(context.Background(), 0)
	_, err = c.Analyze(context.Background(), types.AnalysisRequest{SearchQuery: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer tok-123", "Bearer tok-123"}, got)

	got = nil
	newTestClient(t, ts.URL).ListRandomPapers(context.Background(), 0)
	assert.Equal(t, []string{""}, got)
}
