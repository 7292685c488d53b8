// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion turns summary Markdown into page blocks and publishes them
// as a page in a Notion database.
package notion

import (
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Translate converts Markdown to blocks line by line. Only a leading run of
// '#' is interpreted: 1-3 marks give a heading of that level, 4 or more give
// a paragraph with the marks removed. Every other line, including empty
// ones and lines with '#' elsewhere, becomes a verbatim paragraph.
func Translate(markdown string) []types.Block {
	lines := strings.Split(markdown, "\n")
	blocks := make([]types.Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, translateLine(line))
	}
	return blocks
}

func translateLine(line string) types.Block {
	run := len(line) - len(strings.TrimLeft(line, "#"))
	if run == 0 {
		return types.Paragraph(line)
	}
	rest := strings.TrimPrefix(line[run:], " ")
	if run <= 3 {
		return types.Heading(run, rest)
	}
	return types.Paragraph(rest)
}
