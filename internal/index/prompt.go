// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Prompt is one completion request.
type Prompt struct {
	System string
	User   string
}

const systemPrompt = `You are a question-answering system trusted around the world.
Always answer the query using the provided context information, not prior knowledge.
Some rules to follow:
1. Never directly reference the given context in your answer.
2. Avoid statements like "Based on the context, ..." or "The context information ..." or anything along those lines.`

var textQATmpl = template.Must(template.New("text_qa").Parse(`Context information is below.
---------------------
{{.Context}}
---------------------
Given the context information and not prior knowledge, answer the query.
Query: {{.Query}}
Answer: `))

var treeSummarizeTmpl = template.Must(template.New("tree_summarize").Parse(`Context information from multiple sources is below.
---------------------
{{range $i, $c := .Contexts}}{{if $i}}

{{end}}{{$c}}{{end}}
---------------------
Given the information from multiple sources and not prior knowledge, answer the query.
If the information is insufficient, answer "no information".
Query: {{.Query}}
Answer: `))

func textQAPrompt(context, query string) (Prompt, error) {
	var buf bytes.Buffer
	if err := textQATmpl.Execute(&buf, struct{ Context, Query string }{context, query}); err != nil {
		return Prompt{}, fmt.Errorf("rendering text QA prompt: %w", err)
	}
	return Prompt{System: systemPrompt, User: buf.String()}, nil
}

func treeSummarizePrompt(contexts []string, query string) (Prompt, error) {
	var buf bytes.Buffer
	data := struct {
		Contexts []string
		Query    string
	}{contexts, query}
	if err := treeSummarizeTmpl.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("rendering tree summarize prompt: %w", err)
	}
	return Prompt{System: systemPrompt, User: buf.String()}, nil
}

func clean(answer string) string {
	return strings.TrimSpace(answer)
}
