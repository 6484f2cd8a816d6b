// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv pulls paper metadata from the arXiv Atom API. It feeds the
// development backend's fixture file.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/ragscholar/internal/httputil"
	"github.com/pdiddy/ragscholar/pkg/types"
)

// apiBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// requestInterval is the spacing arXiv asks API clients to keep between
// calls.
var requestInterval = 3 * time.Second

const defaultPerTopic = 10

// Topics are the subjects the fixture fetcher samples from. Each entry is
// either free text or an arXiv field query such as "cat:cs.LG".
var Topics = []string{
	// Computer science
	"machine learning", "cat:cs.LG",
	"artificial intelligence", "cat:cs.AI",
	"deep learning", "cat:cs.NE",
	"computer vision", "cat:cs.CV",
	"natural language processing", "cat:cs.CL",
	"data mining", "cat:cs.IR",
	"cryptography", "cat:cs.CR",
	"algorithms", "cat:cs.DS",
	"distributed computing", "cat:cs.DC",
	"quantum computing", "cat:cs.ET",
	// Physics
	"quantum physics", "cat:quant-ph",
	"condensed matter", "cat:cond-mat",
	"astrophysics", "cat:astro-ph",
	"high energy physics", "cat:hep-th",
	"optics", "cat:physics.optics",
	"fluid dynamics", "cat:physics.flu-dyn",
	"plasma physics", "cat:physics.plasm-ph",
	// Mathematics
	"algebra", "cat:math.AG",
	"combinatorics", "cat:math.CO",
	"number theory", "cat:math.NT",
	"probability", "cat:math.PR",
	"graph theory",
	"differential geometry", "cat:math.DG",
	"topology", "cat:math.GT",
	// Other fields
	"bioinformatics", "cat:q-bio.BM",
	"neuroscience", "cat:q-bio.NC",
	"robotics", "cat:cs.RO",
	"game theory", "cat:cs.GT",
	"statistics", "cat:stat.ML",
	"optimization", "cat:math.OC",
	"signal processing", "cat:eess.SP",
	"networks", "cat:cs.SI",
	"economics", "cat:econ.EM",
	"climate modeling", "cat:physics.ao-ph",
}

// Fetcher queries the arXiv API. It spaces its own requests, so one
// Fetcher should be shared by all callers.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewFetcher builds a Fetcher from the shared HTTP settings.
func NewFetcher(cfg types.HTTPConfig, maxRetries int, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		client:     &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxRetries: maxRetries,
		limiter:    rate.NewLimiter(rate.Every(requestInterval), 1),
		log:        log.Named("arxiv"),
	}
}

// Fetch returns up to count papers for topic starting at offset start.
func (f *Fetcher) Fetch(ctx context.Context, topic string, start, count int) ([]types.Paper, error) {
	q := buildQuery(topic)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv topic")
	}
	if count <= 0 {
		count = defaultPerTopic
	}
	if start < 0 {
		start = 0
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?search_query=%s&start=%d&max_results=%d", apiBase, q, start, count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.maxRetries, f.log)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if extractArxivID(e.ID) == "" {
			continue
		}
		papers = append(papers, e.paper())
	}
	f.log.Debug("fetched topic",
		zap.String("topic", topic),
		zap.Int("start", start),
		zap.Int("papers", len(papers)))
	return papers, nil
}

// FetchTopics fetches every topic in turn and merges the results. Papers
// seen under an earlier topic (any version) are skipped. A failing topic
// is logged and skipped; FetchTopics fails only when every topic failed.
func (f *Fetcher) FetchTopics(ctx context.Context, topics []string, start, perTopic int) ([]types.Paper, error) {
	seen := make(map[string]bool)
	var all []types.Paper
	var failures int
	var lastErr error

	for _, topic := range topics {
		papers, err := f.Fetch(ctx, topic, start, perTopic)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			failures++
			lastErr = err
			f.log.Warn("topic fetch failed", zap.String("topic", topic), zap.Error(err))
			continue
		}
		for _, p := range papers {
			id := extractArxivID(p.ID)
			if seen[id] {
				continue
			}
			seen[id] = true
			all = append(all, p)
		}
	}

	if len(topics) > 0 && failures == len(topics) {
		return nil, fmt.Errorf("all %d topics failed: %w", failures, lastErr)
	}
	return all, nil
}

// buildQuery turns a topic into the search_query parameter. Field queries
// ("cat:cs.LG") pass through; free text searches all fields.
func buildQuery(topic string) string {
	terms := strings.Fields(topic)
	if len(terms) == 0 {
		return ""
	}
	for i, t := range terms {
		terms[i] = url.QueryEscape(t)
	}
	if strings.Contains(terms[0], "%3A") {
		return strings.Join(terms, "+")
	}
	return "all:" + strings.Join(terms, "+")
}

// Atom feed structures. arXiv extensions live in their own namespace.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID              string         `xml:"id"`
	Updated         string         `xml:"updated"`
	Published       string         `xml:"published"`
	Title           string         `xml:"title"`
	Summary         string         `xml:"summary"`
	Authors         []atomAuthor   `xml:"author"`
	Links           []atomLink     `xml:"link"`
	Categories      []atomCategory `xml:"category"`
	Comment         string         `xml:"http://arxiv.org/schemas/atom comment"`
	DOI             string         `xml:"http://arxiv.org/schemas/atom doi"`
	JournalRef      string         `xml:"http://arxiv.org/schemas/atom journal_ref"`
	PrimaryCategory atomCategory   `xml:"http://arxiv.org/schemas/atom primary_category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

func (e atomEntry) paper() types.Paper {
	p := types.Paper{
		ID:              strings.TrimSpace(e.ID),
		Title:           collapseSpace(e.Title),
		Summary:         strings.TrimSpace(e.Summary),
		Published:       strings.TrimSpace(e.Published),
		Updated:         strings.TrimSpace(e.Updated),
		Comment:         strings.TrimSpace(e.Comment),
		DOI:             strings.TrimSpace(e.DOI),
		JournalRef:      strings.TrimSpace(e.JournalRef),
		PrimaryCategory: e.PrimaryCategory.Term,
	}
	if t := p.PublishedTime(); !t.IsZero() {
		p.Year = strconv.Itoa(t.Year())
	}
	for _, a := range e.Authors {
		if n := collapseSpace(a.Name); n != "" {
			p.Authors = append(p.Authors, types.Author{Name: n})
		}
	}
	for _, l := range e.Links {
		if l.Href != "" {
			p.Links = append(p.Links, types.Link{Href: l.Href, Rel: l.Rel, Type: l.Type})
		}
	}
	for _, c := range e.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}
	return p
}

// collapseSpace joins the words of s with single spaces. arXiv wraps long
// titles across lines.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractArxivID pulls the arXiv ID from an entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
