// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper holds the arXiv metadata for one entry. The pipeline consumes the
// title, identifiers, dates and categories; the rest feeds the digest.
type Paper struct {
	// ID is the short arXiv identifier including any version (e.g. "2301.07041v2").
	ID string `json:"id" yaml:"id"`

	// EntryID is the canonical abstract URL (e.g. "http://arxiv.org/abs/2301.07041v2").
	EntryID string `json:"entry_id" yaml:"entry_id"`

	// Title is the paper title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the arXiv abstract.
	Summary string `json:"summary" yaml:"summary"`

	// Comment is the optional author comment (page counts, venue).
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// Published is the first-version submission time.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the latest-version submission time.
	Updated time.Time `json:"updated" yaml:"updated"`

	// Categories lists the arXiv subject classes, primary first.
	Categories []string `json:"categories" yaml:"categories"`

	// PDFURL is the direct PDF link.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`
}

// InCategories reports whether the paper carries at least one of the given
// categories. An empty filter matches every paper.
func (p Paper) InCategories(filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, c := range p.Categories {
		for _, f := range filter {
			if c == f {
				return true
			}
		}
	}
	return false
}
