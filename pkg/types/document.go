// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline:
// the extracted document model (Section, DocumentMetadata), the publishable
// block sequence, arXiv paper records, configuration, and the error taxonomy.
package types

import (
	"strconv"
	"strings"
)

// DocumentMetadata is the bibliographic and provenance record of one paper.
// It is populated from TEI extraction first and then overlaid with provenance
// from the paper source. Once attached to a Section it is read-only.
type DocumentMetadata struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// PublishedDate is the publication date as found in the source. TEI
	// headers use "%d %b %Y" (e.g. "12 Mar 2023"); provenance uses YYYY-MM-DD.
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// SourceIdentifier is the source-specific ID (arXiv ID, DOI, GROBID idno).
	SourceIdentifier string `json:"source_identifier" yaml:"source_identifier"`

	// CanonicalURL is the landing page of the paper (arXiv abs URL).
	CanonicalURL string `json:"canonical_url" yaml:"canonical_url"`

	// UpdatedTimestamp is the last-updated time reported by the source (RFC 3339).
	UpdatedTimestamp string `json:"updated_timestamp" yaml:"updated_timestamp"`

	// Categories holds the subject tags (e.g. "cs.CL"), sorted and unique.
	Categories []string `json:"categories" yaml:"categories"`

	// Comment is the free-form author comment from the source.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// Abstract is the publisher abstract, only filled when requested.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Language is the document language declared in the TEI header.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// AuthorString returns the comma-joined author names.
func (m DocumentMetadata) AuthorString() string {
	return strings.Join(m.Authors, ", ")
}

// IsEmpty reports whether every field holds its zero value.
func (m DocumentMetadata) IsEmpty() bool {
	return m.Title == "" && len(m.Authors) == 0 && m.PublishedDate == "" &&
		m.SourceIdentifier == "" && m.CanonicalURL == "" && m.UpdatedTimestamp == "" &&
		len(m.Categories) == 0 && m.Comment == "" && m.Abstract == "" && m.Language == ""
}

// Section is one unit of document structure.
type Section struct {
	// Index is the 0-based position in document order. It is unique within a
	// document and is the join key between extraction, indexing and assembly.
	Index int `json:"index" yaml:"index"`

	// Number is the printed section number from the heading (e.g. "3.2").
	// Empty when the heading carries none.
	Number string `json:"number,omitempty" yaml:"number,omitempty"`

	// Title is the heading text. Empty when the heading could not be extracted.
	Title string `json:"title" yaml:"title"`

	// Body is the section prose with the heading text stripped from the front.
	Body string `json:"body" yaml:"body"`

	// Metadata points at the document-level record shared by all sections.
	Metadata *DocumentMetadata `json:"-" yaml:"-"`
}

// Label returns the section number used in summary headings: the printed
// number when present, otherwise Index+1.
func (s Section) Label() string {
	if s.Number != "" {
		return s.Number
	}
	return strconv.Itoa(s.Index + 1)
}

// BlockKind distinguishes publishable content blocks.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
)

// Block is one typed unit of page content. Level is 1-3 for headings and 0
// for paragraphs.
type Block struct {
	Kind  BlockKind `json:"kind" yaml:"kind"`
	Level int       `json:"level,omitempty" yaml:"level,omitempty"`
	Text  string    `json:"text" yaml:"text"`
}

// Heading returns a heading block.
func Heading(level int, text string) Block {
	return Block{Kind: BlockHeading, Level: level, Text: text}
}

// Paragraph returns a paragraph block.
func Paragraph(text string) Block {
	return Block{Kind: BlockParagraph, Text: text}
}
