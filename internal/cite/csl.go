// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite exports papers as CSL-YAML bibliography entries, the format
// Pandoc and most reference managers import.
package cite

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ragscholar/pkg/types"
)

// Item is one CSL entry. Field names follow the CSL-JSON/CSL-YAML schema.
type Item struct {
	ID             string   `yaml:"id"`
	Type           string   `yaml:"type"`
	Title          string   `yaml:"title"`
	Author         []Name   `yaml:"author,omitempty"`
	Abstract       string   `yaml:"abstract,omitempty"`
	Issued         *Date    `yaml:"issued,omitempty"`
	ContainerTitle string   `yaml:"container-title,omitempty"`
	DOI            string   `yaml:"DOI,omitempty"`
	URL            string   `yaml:"URL,omitempty"`
	Number         string   `yaml:"number,omitempty"`
	Publisher      string   `yaml:"publisher,omitempty"`
	Keyword        string   `yaml:"keyword,omitempty"`
	Note           string   `yaml:"note,omitempty"`
	Categories     []string `yaml:"categories,omitempty"`
}

// Name is a person's name in CSL format.
type Name struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// Date is a CSL date using date-parts.
type Date struct {
	DateParts [][]int `yaml:"date-parts"`
}

// Write encodes papers as a CSL-YAML list to w.
func Write(w io.Writer, papers ...types.Paper) error {
	items := make([]Item, len(papers))
	for i, p := range papers {
		items[i] = ToItem(p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ToItem converts a paper to a CSL entry. Papers with a journal reference
// are journal articles; the rest are arXiv preprints.
func ToItem(p types.Paper) Item {
	item := Item{
		ID:         p.ShortID(),
		Type:       "article",
		Title:      p.Title,
		Abstract:   p.Summary,
		DOI:        p.DOI,
		Categories: p.Categories,
		Note:       p.Comment,
	}

	for _, name := range p.AuthorNames() {
		item.Author = append(item.Author, parseAuthorName(name))
	}

	if t := p.PublishedTime(); !t.IsZero() {
		item.Issued = &Date{DateParts: [][]int{{t.Year(), int(t.Month()), t.Day()}}}
	}

	if p.JournalRef != "" {
		item.Type = "article-journal"
		item.ContainerTitle = p.JournalRef
	} else if strings.Contains(p.ID, "arxiv.org") {
		item.Publisher = "arXiv"
		item.Number = p.ShortID()
	}

	for _, l := range p.Links {
		if !l.IsPDF() {
			item.URL = l.Href
			break
		}
	}
	if item.URL == "" && strings.HasPrefix(p.ID, "http") {
		item.URL = p.ID
	}

	if len(p.Keywords) > 0 {
		item.Keyword = strings.Join(p.Keywords, ", ")
	}
	return item
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) Name {
	name = strings.TrimSpace(name)
	if name == "" {
		return Name{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return Name{Literal: name}
	}
	return Name{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
