package utils

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// ValidateMarkdown checks that a string parses as Markdown. Goldmark is very
// permissive, so this is a basic sanity check for generated reports.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}

// RenderMarkdownHTML converts a markdown report to HTML for callers that
// serve rendered output.
func RenderMarkdownHTML(input string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(input), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
