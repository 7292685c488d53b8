// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []types.Block
	}{
		{"h1", "# Title", []types.Block{types.Heading(1, "Title")}},
		{"h2", "## Sub", []types.Block{types.Heading(2, "Sub")}},
		{"h3", "### 1. Introduction", []types.Block{types.Heading(3, "1. Introduction")}},
		{"no space after marks", "##Tight", []types.Block{types.Heading(2, "Tight")}},
		{"only one space removed", "#  Two", []types.Block{types.Heading(1, " Two")}},
		{"h4 demoted", "#### Deep", []types.Block{types.Paragraph("Deep")}},
		{"h6 demoted", "###### Deeper", []types.Block{types.Paragraph("Deeper")}},
		{"hash inside line", "C# and F# are languages", []types.Block{types.Paragraph("C# and F# are languages")}},
		{"indented hash", "  # not a heading", []types.Block{types.Paragraph("  # not a heading")}},
		{"plain", "Some text.", []types.Block{types.Paragraph("Some text.")}},
		{"empty", "", []types.Block{types.Paragraph("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.in))
		})
	}
}

func TestTranslate_SummaryDocument(t *testing.T) {
	md := "### 1. Introduction\nIntro summary.\n\n### 2. Method\nMethod summary.\n\n"

	got := Translate(md)
	want := []types.Block{
		types.Heading(3, "1. Introduction"),
		types.Paragraph("Intro summary."),
		types.Paragraph(""),
		types.Heading(3, "2. Method"),
		types.Paragraph("Method summary."),
		types.Paragraph(""),
		types.Paragraph(""),
	}
	assert.Equal(t, want, got)
}
