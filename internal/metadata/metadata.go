// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata reconciles the bibliographic record extracted from TEI
// with provenance reported by the paper source.
package metadata

import (
	"slices"
	"strings"
	"time"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Merge overlays provenance onto extracted. A non-empty provenance field
// replaces the extracted value; an empty one leaves it. Neither argument is
// modified and the result shares no slices with them.
func Merge(extracted, provenance types.DocumentMetadata) types.DocumentMetadata {
	out := extracted
	out.Authors = slices.Clone(extracted.Authors)
	out.Categories = slices.Clone(extracted.Categories)

	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&out.Title, provenance.Title)
	overlay(&out.PublishedDate, provenance.PublishedDate)
	overlay(&out.SourceIdentifier, provenance.SourceIdentifier)
	overlay(&out.CanonicalURL, provenance.CanonicalURL)
	overlay(&out.UpdatedTimestamp, provenance.UpdatedTimestamp)
	overlay(&out.Comment, provenance.Comment)
	overlay(&out.Abstract, provenance.Abstract)
	overlay(&out.Language, provenance.Language)
	if len(provenance.Authors) > 0 {
		out.Authors = slices.Clone(provenance.Authors)
	}
	if len(provenance.Categories) > 0 {
		out.Categories = slices.Clone(provenance.Categories)
	}
	return out
}

// FromPaper builds the provenance record of an arXiv entry. The abstract is
// left empty so the publisher abstract only appears when extraction asked for it.
func FromPaper(p types.Paper) types.DocumentMetadata {
	m := types.DocumentMetadata{
		Title:            strings.Join(strings.Fields(p.Title), " "),
		Authors:          slices.Clone(p.Authors),
		SourceIdentifier: p.ID,
		CanonicalURL:     p.EntryID,
		Comment:          strings.TrimSpace(p.Comment),
	}
	if !p.Published.IsZero() {
		m.PublishedDate = p.Published.UTC().Format(time.DateOnly)
	}
	if !p.Updated.IsZero() {
		m.UpdatedTimestamp = p.Updated.UTC().Format(time.RFC3339)
	}
	if len(p.Categories) > 0 {
		cats := slices.Clone(p.Categories)
		slices.Sort(cats)
		m.Categories = slices.Compact(cats)
	}
	return m
}

// Attach returns copies of sections that all point at meta. The input slice
// and its elements are left untouched.
func Attach(sections []types.Section, meta *types.DocumentMetadata) []types.Section {
	out := make([]types.Section, len(sections))
	for i, s := range sections {
		s.Metadata = meta
		out[i] = s
	}
	return out
}

var dateLayouts = []string{
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	time.DateOnly,
	time.RFC3339,
}

// NormalizeDate parses the date formats produced by GROBID and arXiv and
// returns it as YYYY-MM-DD. The bool is false when no layout matches.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}
