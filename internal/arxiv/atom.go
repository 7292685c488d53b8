// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"strings"
	"time"

	"github.com/pdiddy/paper-digest/pkg/types"
)

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Comment    string         `xml:"http://arxiv.org/schemas/atom comment"`
	Authors    []atomAuthor   `xml:"author"`
	Links      []atomLink     `xml:"link"`
	Categories []atomCategory `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// paper converts an entry. Error entries returned by the API for bad ids
// have no abs URL and are dropped.
func (e atomEntry) paper() (types.Paper, bool) {
	entryID := strings.TrimSpace(e.ID)
	i := strings.Index(entryID, "/abs/")
	if i < 0 {
		return types.Paper{}, false
	}
	p := types.Paper{
		ID:      entryID[i+len("/abs/"):],
		EntryID: entryID,
		Title:   strings.Join(strings.Fields(e.Title), " "),
		Summary: strings.TrimSpace(e.Summary),
		Comment: strings.TrimSpace(e.Comment),
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, c := range e.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			p.PDFURL = l.Href
		}
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		p.Published = t
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Updated)); err == nil {
		p.Updated = t
	}
	return p, true
}
