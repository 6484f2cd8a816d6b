// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the backend client,
// the web front end, and the CLI.
//
// Only Paper.ID and Paper.Title are guaranteed to be present in a backend
// payload. Every other field is optional and callers must treat its zero
// value as "absent".
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Author is a paper author. The backend has emitted authors both as plain
// strings and as {"name": ...} records; both decode into Author.
type Author struct {
	Name string `json:"name" yaml:"name"`
}

// UnmarshalJSON accepts either a JSON string or an object with a name field.
func (a *Author) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.Name)
	}
	var rec struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decoding author: %w", err)
	}
	a.Name = rec.Name
	return nil
}

// Link is a download or landing-page link for a paper.
type Link struct {
	Href string `json:"href" yaml:"href"`
	Rel  string `json:"rel,omitempty" yaml:"rel,omitempty"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// IsPDF reports whether the link points at the PDF rendition.
func (l Link) IsPDF() bool { return l.Type == "application/pdf" }

// Paper is a bibliographic record returned by the backend.
type Paper struct {
	// ID is the backend identifier, usually an arXiv abs URL
	// (e.g. "http://arxiv.org/abs/2301.00001v1").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Summary is the abstract. Payloads that use "abstract" decode here too.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	Authors    []Author `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year       string   `json:"year,omitempty" yaml:"year,omitempty"`
	Published  string   `json:"published,omitempty" yaml:"published,omitempty"`
	Updated    string   `json:"updated,omitempty" yaml:"updated,omitempty"`
	Comment    string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	DOI        string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	JournalRef string   `json:"journalRef,omitempty" yaml:"journal_ref,omitempty"`
	Citations  int      `json:"citations,omitempty" yaml:"citations,omitempty"`

	PrimaryCategory string   `json:"primaryCategory,omitempty" yaml:"primary_category,omitempty"`
	Categories      []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Keywords        []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Links           []Link   `json:"links,omitempty" yaml:"links,omitempty"`
}

// UnmarshalJSON decodes a paper and folds the "abstract" spelling into Summary.
func (p *Paper) UnmarshalJSON(data []byte) error {
	type plain Paper
	var aux struct {
		plain
		Abstract string `json:"abstract"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Paper(aux.plain)
	if p.Summary == "" {
		p.Summary = aux.Abstract
	}
	return nil
}

// ShortID returns the suffix after the last "/" of ID. Detail routes are
// built from it: "http://arxiv.org/abs/2301.00001" → "2301.00001".
func (p Paper) ShortID() string {
	if i := strings.LastIndex(p.ID, "/"); i >= 0 {
		return p.ID[i+1:]
	}
	return p.ID
}

// AuthorNames returns author names in source order, skipping blanks.
func (p Paper) AuthorNames() []string {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if n := strings.TrimSpace(a.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// PublishedTime parses Published as RFC 3339. It returns the zero time
// when the field is absent or malformed.
func (p Paper) PublishedTime() time.Time { return parseTimestamp(p.Published) }

// UpdatedTime parses Updated as RFC 3339, zero when absent or malformed.
func (p Paper) UpdatedTime() time.Time { return parseTimestamp(p.Updated) }

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
