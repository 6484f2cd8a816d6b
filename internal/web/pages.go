// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/ragscholar/internal/search"
	"github.com/pdiddy/ragscholar/pkg/types"
)

// Form field names posted by the search bars.
const (
	fieldInput   = "q"
	fieldContext = "c"
)

// loadingRefresh is the Refresh header, in seconds, sent with the home
// loading state.
const loadingRefresh = 2

// GET /
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) error {
	papers, ok := s.listPapers(r.Context())
	if !ok {
		w.Header().Set("Refresh", strconv.Itoa(loadingRefresh))
		return s.render(w, http.StatusOK, "home", homeView{
			page: page{Title: "Research Papers", State: StateLoading, Skeletons: homeSkeletons},
		})
	}

	v := homeView{
		page:  page{Title: "Research Papers", State: StateSuccess, Skeletons: homeSkeletons},
		Cards: cards(papers),
	}
	if len(v.Cards) == 0 {
		v.State = StateEmpty
	}
	return s.render(w, http.StatusOK, "home", v)
}

// listPapers waits up to listWait for the listing. The fetch outlives a
// slow wait so that a cache in front of the backend can serve the refresh.
func (s *Server) listPapers(ctx context.Context) ([]types.Paper, bool) {
	ch := make(chan []types.Paper, 1)
	go func() {
		ch <- s.backend.ListRandomPapers(context.WithoutCancel(ctx), s.randomCount)
	}()

	t := time.NewTimer(s.listWait)
	defer t.Stop()
	select {
	case papers := <-ch:
		return papers, true
	case <-t.C:
		s.log.Debug("listing still loading", zap.Duration("waited", s.listWait))
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

// GET /paper/{id}
func (s *Server) handlePaper(w http.ResponseWriter, r *http.Request) error {
	p, ok := s.loadPaper(w, r)
	if !ok {
		return nil
	}
	return s.render(w, http.StatusOK, "paper", newPaperView(p))
}

// POST /paper/{id}/ask runs the analysis inline and renders the answer
// under the paper.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return nil
	}
	p, ok := s.loadPaper(w, r)
	if !ok {
		return nil
	}
	input := r.PostForm.Get(fieldInput)
	v := newPaperView(p)

	ticket := s.guard.Begin(r.Context(), sessionID(r.Context()))
	defer ticket.Release()

	bar := search.GenericBar{PaperContext: paperContext(p), Analyzer: s.backend}
	out, err := bar.Submit(ticket.Context(), input)
	if errors.Is(err, search.ErrBlankInput) {
		http.Redirect(w, r, DetailPath(p), http.StatusSeeOther)
		return nil
	}

	q := search.Query{Q: strings.TrimSpace(input), Text: strings.TrimSpace(input), Context: bar.PaperContext}
	status := http.StatusOK
	if !ticket.Commit(func() {
		answer := newResultsView(q, out.Result)
		if err != nil {
			answer = resultsView{page: page{State: StateError, Message: errorMessage}, Query: q}
			status = http.StatusBadGateway
		}
		v.Answer = &answer
	}) {
		return s.superseded(w, q)
	}
	if err != nil {
		s.log.Warn("inline analysis failed",
			zap.String("paper_id", v.ID),
			zap.String("query", q.Q),
			zap.Error(err))
	}
	return s.render(w, status, "paper", v)
}

// paperContext scopes an inline question to the paper. A found paper has
// a title or an id, so the context is never blank.
func paperContext(p types.Paper) string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return p.ID
}

// POST /search turns a search bar submission into the results URL. A form
// carrying a paper context is the paper-scoped bar.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return nil
	}
	input := r.PostForm.Get(fieldInput)

	var loc string
	var err error
	if c := strings.TrimSpace(r.PostForm.Get(fieldContext)); c != "" {
		loc, err = search.PaperBar{PaperContext: c}.Submit(input)
	} else {
		loc, err = search.HomeBar{}.Submit(input)
	}
	if errors.Is(err, search.ErrBlankInput) {
		http.Redirect(w, r, backTo(r), http.StatusSeeOther)
		return nil
	}
	if err != nil {
		return err
	}
	http.Redirect(w, r, loc, http.StatusSeeOther)
	return nil
}

// GET /search?q=&t=&c=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) error {
	q := search.ParseQuery(r.URL.Query())
	if q.IsZero() {
		return s.render(w, http.StatusOK, "search", resultsView{
			page:  page{Title: "Search", State: StateIdle},
			Query: q,
		})
	}

	ticket := s.guard.Begin(r.Context(), sessionID(r.Context()))
	defer ticket.Release()

	res, err := s.backend.Analyze(ticket.Context(), q.Request())

	var v resultsView
	status := http.StatusOK
	if !ticket.Commit(func() {
		if err != nil {
			v = resultsView{page: page{Title: q.Q, State: StateError, Message: errorMessage}, Query: q}
			status = http.StatusBadGateway
			return
		}
		v = newResultsView(q, res)
	}) {
		return s.superseded(w, q)
	}
	if err != nil {
		s.log.Warn("analysis failed", zap.String("query", q.Q), zap.Error(err))
	}
	return s.render(w, status, "search", v)
}

// superseded answers a request whose search lost to a newer one from the
// same session. The newer search is still loading.
func (s *Server) superseded(w http.ResponseWriter, q search.Query) error {
	s.log.Debug("discarding superseded search", zap.String("query", q.Q))
	return s.render(w, http.StatusConflict, "search", resultsView{
		page:  page{Title: q.Q, State: StateLoading, Skeletons: searchSkeletons},
		Query: q,
	})
}

// loadPaper resolves the {id} route parameter. When it returns false the
// not-found or error page has already been written.
func (s *Server) loadPaper(w http.ResponseWriter, r *http.Request) (types.Paper, bool) {
	id := chi.URLParam(r, "id")
	if u, err := url.PathUnescape(id); err == nil {
		id = u
	}

	lookup := s.backend.GetPaperByID(r.Context(), id)
	switch lookup.Status {
	case types.LookupFound:
		return lookup.Paper, true
	case types.LookupNotFound:
		err := s.render(w, http.StatusNotFound, "status", page{
			Title:   "Paper Not Found",
			State:   StateNotFound,
			Message: "The requested paper could not be found.",
		})
		if err != nil {
			s.log.Error("rendering not-found page", zap.Error(err))
		}
	default:
		s.log.Warn("paper lookup failed", zap.String("paper_id", id), zap.String("error", lookup.Reason))
		s.renderError(w, http.StatusBadGateway)
	}
	return types.Paper{}, false
}

// backTo is where a blank submission returns: the referring page when it
// is on this site, otherwise home.
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	return ref.RequestURI()
}
