// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"time"

	"github.com/pdiddy/ragscholar/internal/search"
	"github.com/pdiddy/ragscholar/pkg/types"
)

// State is the render state of a page.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateSuccess  State = "success"
	StateEmpty    State = "empty"
	StateError    State = "error"
	StateNotFound State = "notfound"
)

// Skeleton counts for the loading state.
const (
	homeSkeletons   = 10
	searchSkeletons = 5
)

// DateLayout is how paper dates are shown, e.g. "January 2, 2006".
const DateLayout = "January 2, 2006"

// errorMessage is the only failure text users ever see.
const errorMessage = "Something went wrong while talking to the paper service. Please try again."

// Card is the view model for a paper summary card.
type Card struct {
	Title      string
	Categories []string
	Published  string
	DetailPath string
}

// NewCard builds a Card from a paper.
func NewCard(p types.Paper) Card {
	return Card{
		Title:      p.Title,
		Categories: p.Categories,
		Published:  formatDate(p.PublishedTime()),
		DetailPath: DetailPath(p),
	}
}

// DetailPath is the front-end route for a paper, built from the suffix of
// its id. Both "http://arxiv.org/abs/2301.00001" and "2301.00001" map to
// "/paper/2301.00001".
func DetailPath(p types.Paper) string {
	return "/paper/" + p.ShortID()
}

func cards(papers []types.Paper) []Card {
	out := make([]Card, 0, len(papers))
	for _, p := range papers {
		out = append(out, NewCard(p))
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// page carries what the layout needs on every page.
type page struct {
	Title string
	State State

	// Message is shown for the error state.
	Message string

	// Skeletons is the placeholder count for the loading state.
	Skeletons int
}

// Placeholders returns a slice of length Skeletons for ranging in templates.
func (p page) Placeholders() []struct{} { return make([]struct{}, p.Skeletons) }

type homeView struct {
	page
	Cards []Card
}

// LinkView is a download link on the paper page.
type LinkView struct {
	Href  string
	Label string
	PDF   bool
}

type paperView struct {
	page
	ID         string
	PaperTitle string
	Authors    []string
	Published  string
	Updated    string
	ArxivID    string
	Abstract   string
	Links      []LinkView
	Categories []string
	JournalRef string
	Comment    string

	// Search is the paper-scoped search bar.
	Search search.PaperBar

	// AskPath is the inline ask form's action.
	AskPath string

	// Answer is set after an inline ask.
	Answer *resultsView
}

func newPaperView(p types.Paper) paperView {
	v := paperView{
		page:       page{Title: p.Title, State: StateSuccess},
		ID:         p.ShortID(),
		PaperTitle: p.Title,
		Authors:    p.AuthorNames(),
		Published:  formatDate(p.PublishedTime()),
		Updated:    formatDate(p.UpdatedTime()),
		ArxivID:    p.ShortID(),
		Abstract:   p.Summary,
		Categories: p.Categories,
		JournalRef: p.JournalRef,
		Comment:    p.Comment,
		Search:     search.PaperBar{PaperContext: p.Title},
		AskPath:    DetailPath(p) + "/ask",
	}
	for _, l := range p.Links {
		if l.Href == "" {
			continue
		}
		lv := LinkView{Href: l.Href, Label: "arXiv Page"}
		if l.IsPDF() {
			lv.Label, lv.PDF = "PDF", true
		}
		v.Links = append(v.Links, lv)
	}
	return v
}

// resultsView is the body of the search results page and the inline
// answer on the paper page.
type resultsView struct {
	page
	Query       search.Query
	Explanation string
	Cards       []Card
}

// noExplanation replaces a missing explanation.
const noExplanation = "No explanation available."

func newResultsView(q search.Query, res types.AnalysisResult) resultsView {
	v := resultsView{
		page:        page{Title: q.Q, State: StateSuccess},
		Query:       q,
		Explanation: noExplanation,
		Cards:       cards(res.Papers()),
	}
	if res.HasExplanation() {
		v.Explanation = res.Explanation
	}
	if len(v.Cards) == 0 {
		v.State = StateEmpty
	}
	return v
}
