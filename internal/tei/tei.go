// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tei extracts an ordered section sequence and bibliographic metadata
// from GROBID TEI XML.
//
// Sections are the div elements of text/body in document order. A nested div
// is a section of its own and its text is excluded from the parent. The
// sequence stops at the first stop title (Conclusion, References, ...) so the
// summary covers the technical body only.
package tei

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Options controls extraction.
type Options struct {
	// IncludeAbstract copies profileDesc/abstract into the metadata.
	IncludeAbstract bool

	// StopTitles ends the sequence at the first section with a matching
	// title. The matching section is excluded. Nil uses types.DefaultStopTitles.
	StopTitles []string

	// FoldCase compares stop titles case-insensitively.
	FoldCase bool
}

// OptionsFrom converts extraction configuration to Options.
func OptionsFrom(cfg types.ExtractionConfig) Options {
	return Options{
		IncludeAbstract: cfg.IncludeAbstract,
		StopTitles:      cfg.StopTitles,
		FoldCase:        cfg.FoldCase,
	}
}

// ExtractFile opens path and calls Extract.
func ExtractFile(path string, opts Options) ([]types.Section, *types.DocumentMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening %s: %v", types.ErrStructuralExtraction, path, err)
	}
	defer f.Close()
	return Extract(f, opts)
}

// Extract parses a TEI document. Every returned section points at the same
// metadata record. A document without teiHeader or text/body, or one that is
// not well-formed XML, yields types.ErrStructuralExtraction.
func Extract(r io.Reader, opts Options) ([]types.Section, *types.DocumentMetadata, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, nil, fmt.Errorf("%w: parsing TEI: %v", types.ErrStructuralExtraction, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, nil, fmt.Errorf("%w: empty document", types.ErrStructuralExtraction)
	}

	header := findFirst(root, "teiHeader")
	if header == nil {
		return nil, nil, fmt.Errorf("%w: no teiHeader", types.ErrStructuralExtraction)
	}
	var body *etree.Element
	text := root.SelectElement("text")
	if text == nil {
		text = findFirst(root, "text")
	}
	if text != nil {
		body = text.SelectElement("body")
	}
	if body == nil {
		return nil, nil, fmt.Errorf("%w: no text/body", types.ErrStructuralExtraction)
	}

	meta := parseHeader(header, opts.IncludeAbstract)
	sections := parseBody(body, meta, opts)
	return sections, meta, nil
}

func parseHeader(header *etree.Element, includeAbstract bool) *types.DocumentMetadata {
	meta := &types.DocumentMetadata{
		Language: header.SelectAttrValue("xml:lang", ""),
	}

	bibl := header.FindElement("fileDesc/sourceDesc/biblStruct")
	if bibl != nil {
		if t := bibl.FindElement("analytic/title"); t != nil {
			meta.Title = collapse(itertext(t))
		}
		for _, a := range bibl.FindElements("analytic/author") {
			if name := authorName(a); name != "" {
				meta.Authors = append(meta.Authors, name)
			}
		}
		if d := bibl.FindElement("monogr/imprint/date"); d != nil {
			meta.PublishedDate = collapse(itertext(d))
			if meta.PublishedDate == "" {
				meta.PublishedDate = d.SelectAttrValue("when", "")
			}
		}
		if id := bibl.SelectElement("idno"); id != nil {
			meta.SourceIdentifier = collapse(itertext(id))
		}
	}
	if meta.Title == "" {
		if t := header.FindElement("fileDesc/titleStmt/title"); t != nil {
			meta.Title = collapse(itertext(t))
		}
	}

	if includeAbstract {
		if abs := header.FindElement("profileDesc/abstract"); abs != nil {
			meta.Abstract = collapse(itertext(abs))
		}
	}
	return meta
}

// authorName joins forenames (first, then middle, in document order) and the
// surname with single spaces.
func authorName(author *etree.Element) string {
	pers := author.SelectElement("persName")
	if pers == nil {
		return ""
	}
	var parts []string
	for _, f := range pers.SelectElements("forename") {
		if s := collapse(itertext(f)); s != "" {
			parts = append(parts, s)
		}
	}
	if s := pers.SelectElement("surname"); s != nil {
		if v := collapse(itertext(s)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func parseBody(body *etree.Element, meta *types.DocumentMetadata, opts Options) []types.Section {
	stop := opts.StopTitles
	if stop == nil {
		stop = types.DefaultStopTitles
	}

	var sections []types.Section
	var walk func(parent *etree.Element) bool
	walk = func(parent *etree.Element) bool {
		for _, div := range parent.SelectElements("div") {
			s, ok := parseDiv(div)
			if ok {
				if isStopTitle(s.Title, stop, opts.FoldCase) {
					return false
				}
				s.Index = len(sections)
				s.Metadata = meta
				sections = append(sections, s)
			}
			if !walk(div) {
				return false
			}
		}
		return true
	}
	walk(body)
	return sections
}

// parseDiv reads the heading and the text of the div's direct children other
// than nested divs. It reports false for a div with neither.
func parseDiv(div *etree.Element) (types.Section, bool) {
	var s types.Section
	var lines []string
	for _, child := range div.ChildElements() {
		if child.Tag == "div" {
			continue
		}
		line := collapse(itertext(child))
		if child.Tag == "head" && s.Title == "" {
			s.Title = line
			s.Number = strings.TrimSpace(child.SelectAttrValue("n", ""))
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	text := strings.Join(lines, "\n")
	if s.Title == "" && text == "" {
		return s, false
	}

	s.Body = text
	if s.Title != "" && strings.HasPrefix(text, s.Title) {
		s.Body = strings.TrimSpace(strings.TrimPrefix(text, s.Title))
	}
	return s, true
}

func isStopTitle(title string, stop []string, fold bool) bool {
	for _, t := range stop {
		if title == t || (fold && strings.EqualFold(title, t)) {
			return true
		}
	}
	return false
}

// findFirst returns the first element with the given local name in a
// depth-first walk that starts at el itself.
func findFirst(el *etree.Element, tag string) *etree.Element {
	if el.Tag == tag {
		return el
	}
	for _, c := range el.ChildElements() {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// itertext concatenates every character-data token below el.
func itertext(el *etree.Element) string {
	var b strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
