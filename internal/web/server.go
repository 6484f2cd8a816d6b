// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web is the server-rendered front end. It serves the paper
// listing, the paper detail page with its scoped search bar, and the
// search results page, rendering each from the backend's answer.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/ragscholar/internal/httputil"
	"github.com/pdiddy/ragscholar/internal/search"
	"github.com/pdiddy/ragscholar/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Backend is the paper service as the pages see it. Both the backend
// client and the query cache satisfy it.
type Backend interface {
	ListRandomPapers(ctx context.Context, count int) []types.Paper
	GetPaperByID(ctx context.Context, id string) types.PaperLookup
	Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error)
}

// Options tunes a Server.
type Options struct {
	// RandomCount is how many papers the home page asks for.
	RandomCount int

	// ListWait is how long the home page waits for the listing before it
	// renders the loading state and asks the browser to refresh.
	ListWait time.Duration
}

const defaultListWait = 3 * time.Second

// Server renders the front-end pages.
type Server struct {
	backend     Backend
	guard       *search.Guard
	pages       map[string]*template.Template
	randomCount int
	listWait    time.Duration
	log         *zap.Logger
}

// New parses the embedded templates and returns a Server over backend.
func New(backend Backend, opts Options, log *zap.Logger) (*Server, error) {
	if backend == nil {
		return nil, errors.New("web: nil backend")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RandomCount <= 0 {
		opts.RandomCount = homeSkeletons
	}
	if opts.ListWait <= 0 {
		opts.ListWait = defaultListWait
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "paper", "search", "status"} {
		t, err := template.New("layout.html").ParseFS(templateFS,
			"templates/layout.html", "templates/card.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = t
	}

	return &Server{
		backend:     backend,
		guard:       search.NewGuard(),
		pages:       pages,
		randomCount: opts.RandomCount,
		listWait:    opts.ListWait,
		log:         log.Named("web"),
	}, nil
}

// Handler returns the front-end router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httputil.LogRequests(s.log))
	r.Use(middleware.Recoverer)
	r.Use(s.session)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/", s.wrap(s.handleHome))
	r.Get("/paper/{id}", s.wrap(s.handlePaper))
	r.Post("/paper/{id}/ask", s.wrap(s.handleAsk))
	r.Get(search.ResultsPath, s.wrap(s.handleSearch))
	r.Post(search.ResultsPath, s.wrap(s.handleSubmit))
	r.NotFound(s.wrap(func(w http.ResponseWriter, _ *http.Request) error {
		return s.render(w, http.StatusNotFound, "status", page{
			Title:   "Not Found",
			State:   StateNotFound,
			Message: "The requested page could not be found.",
		})
	}))
	return r
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap turns a handler error into the generic error page. The error itself
// is only logged.
func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.log.Error("handler failed",
				zap.String("path", r.URL.Path),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Error(err))
			s.renderError(w, http.StatusInternalServerError)
		}
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := s.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return t.ExecuteTemplate(w, "layout.html", data)
}

func (s *Server) renderError(w http.ResponseWriter, status int) {
	err := s.render(w, status, "status", page{Title: "Error", State: StateError, Message: errorMessage})
	if err != nil {
		s.log.Error("rendering error page", zap.Error(err))
	}
}
