// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paperclient is the HTTP boundary to the analysis backend. It
// issues the three backend calls (list, lookup, analyze) and resolves the
// backend's loosely typed payloads into pkg/types values.
package paperclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/ragscholar/internal/httputil"
	"github.com/pdiddy/ragscholar/pkg/types"
)

// maxBodyBytes bounds how much of a backend response is read.
const maxBodyBytes = 8 << 20

// ErrEmptyQuery is returned by Analyze when the request has neither a
// search query nor selected text.
var ErrEmptyQuery = errors.New("analysis request has no search query or selected text")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int

	// Message is the backend's {"error": ...} text, if any.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: backend returned HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: backend returned HTTP %d", e.Op, e.StatusCode)
}

// Client calls the analysis backend. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	userAgent  string
	token      string
	maxRetries int
	limiter    *rate.Limiter
	log        *zap.Logger
}

// New builds a Client from cfg. A nil logger discards log output.
func New(cfg types.BackendConfig, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing backend base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		baseURL:    base,
		http:       &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		token:      cfg.APIToken,
		maxRetries: cfg.MaxRetries,
		log:        log.Named("paperclient"),
	}
	if cfg.AnalyzeRate > 0 {
		burst := cfg.AnalyzeBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.AnalyzeRate), burst)
	}
	return c, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// ListRandomPapers fetches the backend's listing (GET /). count is passed
// along as a hint; the backend returns its fixed sample regardless.
//
// Failures never reach the caller: they are logged and an empty slice is
// returned.
func (c *Client) ListRandomPapers(ctx context.Context, count int) []types.Paper {
	q := url.Values{}
	if count > 0 {
		q.Set("count", strconv.Itoa(count))
	}

	var body struct {
		Papers []types.Paper `json:"papers"`
	}
	status, err := c.getJSON(ctx, "/", q, &body)
	if err == nil && status != http.StatusOK {
		err = &StatusError{Op: "list papers", StatusCode: status}
	}
	if err != nil {
		c.log.Warn("listing papers failed", zap.Error(err))
		return []types.Paper{}
	}
	if body.Papers == nil {
		return []types.Paper{}
	}
	return body.Papers
}

// GetPaperByID fetches a single paper (GET /paper/{id}). A 404 or an empty
// payload is NotFound; every other failure is a TransportError whose reason
// is logged.
func (c *Client) GetPaperByID(ctx context.Context, id string) types.PaperLookup {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.NotFound()
	}

	var body struct {
		Paper *types.Paper `json:"paper"`
	}
	status, err := c.getJSON(ctx, "/paper/"+url.PathEscape(id), nil, &body)
	switch {
	case err != nil:
		c.log.Warn("fetching paper failed", zap.String("paper_id", id), zap.Error(err))
		return types.TransportError(err.Error())
	case status == http.StatusNotFound:
		return types.NotFound()
	case status != http.StatusOK:
		err := &StatusError{Op: "get paper", StatusCode: status}
		c.log.Warn("fetching paper failed", zap.String("paper_id", id), zap.Error(err))
		return types.TransportError(err.Error())
	case body.Paper == nil || (body.Paper.ID == "" && body.Paper.Title == ""):
		return types.NotFound()
	}
	return types.Found(*body.Paper)
}

// Analyze posts req to /analyze and decodes the response into an
// AnalysisResult. Unlike the listing and lookup calls, failures are
// returned to the caller.
func (c *Client) Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
	if req.IsEmpty() {
		return types.AnalysisResult{}, ErrEmptyQuery
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return types.AnalysisResult{}, fmt.Errorf("waiting for analysis rate limit: %w", err)
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("encoding analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/analyze", nil), bytes.NewReader(payload))
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("creating analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setHeaders(httpReq)

	resp, err := httputil.DoWithRetry(ctx, c.http, httpReq, c.maxRetries, c.log)
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("analysis request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("reading analysis response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.AnalysisResult{}, &StatusError{
			Op:         "analyze",
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	result, err := DecodeAnalysis(data)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	c.log.Debug("analysis complete",
		zap.String("query", req.SearchQuery),
		zap.String("kind", string(result.Kind)),
		zap.Int("related", len(result.RelatedPapers)))
	return result, nil
}

// getJSON issues a GET and decodes a 200 body into out. Non-200 statuses
// are returned without decoding so callers can map them.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, q), nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setHeaders(req)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries, c.log)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return resp.StatusCode, nil
}

// endpoint joins an already-escaped path onto the base URL.
func (c *Client) endpoint(escapedPath string, q url.Values) string {
	u := *c.baseURL
	unescaped, err := url.PathUnescape(escapedPath)
	if err != nil {
		unescaped = escapedPath
	}
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + unescaped
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + escapedPath
	u.RawQuery = ""
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) setHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// errorMessage pulls the "error" field out of a backend error body.
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Error
}
