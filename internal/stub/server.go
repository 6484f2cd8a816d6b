// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stub is a development backend. It serves the list, lookup, and
// analyze endpoints from a fixed paper set so the front end can run
// without the vector store and model behind the real service.
package stub

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/ragscholar/internal/httputil"
	"github.com/pdiddy/ragscholar/pkg/types"
)

// sampleSize is how many papers GET / returns.
const sampleSize = 10

// maxRequestBytes bounds a POST /analyze body.
const maxRequestBytes = 1 << 20

// Server answers backend requests from papers.
type Server struct {
	papers []types.Paper
	log    *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Server.
type Option func(*Server)

// WithRand fixes the random source used to sample the listing.
func WithRand(rng *rand.Rand) Option {
	return func(s *Server) { s.rng = rng }
}

// New returns a Server over papers.
func New(papers []types.Paper, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		papers: papers,
		log:    log.Named("stub"),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the backend router. CORS is open to any origin.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httputil.LogRequests(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleList)
	r.Get("/check", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to RAGScholar API!"})
	})
	r.Get("/paper/{id}", s.handlePaper)
	r.Post("/analyze", s.handleAnalyze)
	return r
}

// GET / returns a shuffled sample of the papers.
func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	papers := make([]types.Paper, len(s.papers))
	copy(papers, s.papers)

	s.mu.Lock()
	s.rng.Shuffle(len(papers), func(i, j int) { papers[i], papers[j] = papers[j], papers[i] })
	s.mu.Unlock()

	if len(papers) > sampleSize {
		papers = papers[:sampleSize]
	}
	writeJSON(w, http.StatusOK, map[string]any{"papers": papers})
}

// GET /paper/{id} matches either the full id or its suffix. chi routes on
// the escaped path, so a full id arrives with its slashes still escaped.
func (s *Server) handlePaper(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if u, err := url.PathUnescape(id); err == nil {
		id = u
	}
	for _, p := range s.papers {
		if p.ID == id || p.ShortID() == id {
			writeJSON(w, http.StatusOK, map[string]any{"paper": p})
			return
		}
	}
	s.log.Debug("paper not found", zap.String("paper_id", id))
	writeError(w, http.StatusNotFound, "Paper not found")
}

// POST /analyze ranks the papers against the query and explains the text.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.IsEmpty() {
		writeError(w, http.StatusBadRequest, "Selected text or search query is required")
		return
	}

	query := req.SearchQuery
	if query == "" {
		query = req.SelectedText
	}

	writeJSON(w, http.StatusOK, struct {
		RelatedPapers []scored `json:"relatedPapers"`
		Explanation   string   `json:"explanation"`
	}{
		RelatedPapers: rank(s.papers, query, relatedLimit),
		Explanation:   explain(req),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
