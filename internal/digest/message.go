// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-digest/internal/index"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var separator = strings.Repeat("=", 40)

// EntryLine is the 0-based line of a paper message holding the entry URL.
const EntryLine = 4

// Header is the first message posted for a keyword.
func Header(keyword string, n int) string {
	if n == 0 {
		return fmt.Sprintf("%s\nNo papers about %s were found.\n%s", separator, keyword, separator)
	}
	return fmt.Sprintf("%s\nFound %d papers about %s!\n%s", separator, n, keyword, separator)
}

// Message renders one paper. The overview's first line is the translated
// title and the rest its bullet points; an empty overview leaves both out.
func Message(keyword string, i, n int, p types.Paper, overview string) string {
	title, body, _ := strings.Cut(overview, "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "%s: paper %d/%d\n", keyword, i, n)
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Published: %s\n", p.Published.UTC().Format("2006-01-02 15:04:05"))
	b.WriteString(p.Title + "\n")
	b.WriteString(p.EntryID + "\n")
	if title = strings.TrimSpace(title); title != "" {
		b.WriteString(title + "\n")
	}
	if body = strings.TrimSpace(body); body != "" {
		b.WriteString(body + "\n")
	}
	b.WriteString(separator)
	return b.String()
}

const overviewSystem = `You read research papers and report their key points.`

var overviewTmpl = template.Must(template.New("overview").Parse(`### Instructions ###
Read the paper below and list its three most important points.

### Constraints ###
- At most 3 bullet points
- Write in {{.Language}}
- Keep each bullet under 50 words

### Paper ###
title: {{.Title}}
body: {{.Summary}}

### Output format ###
Title translated into {{.Language}}

- point 1
- point 2
- point 3
`))

func overviewPrompt(p types.Paper, language string) (index.Prompt, error) {
	if language == "" {
		language = "English"
	}
	var buf bytes.Buffer
	err := overviewTmpl.Execute(&buf, struct {
		Language, Title, Summary string
	}{language, p.Title, strings.Join(strings.Fields(p.Summary), " ")})
	if err != nil {
		return index.Prompt{}, fmt.Errorf("rendering overview prompt: %w", err)
	}
	return index.Prompt{System: overviewSystem, User: buf.String()}, nil
}
