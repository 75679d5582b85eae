package content

import (
	"strings"

	"golang.org/x/net/html"
)

// Block-level elements that terminate a paragraph when stripping markup.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true, "pre": true, "br": true,
	"table": true, "tr": true,
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// StripMarkup removes HTML markup from text, preserving paragraph
// boundaries as blank lines. Plain text passes through with its
// paragraph structure intact.
func StripMarkup(text string) string {
	if !strings.ContainsRune(text, '<') {
		return normalizeParagraphs(text)
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return normalizeParagraphs(text)
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			sb.WriteString("\n\n")
		}
	}
	walk(doc)

	return normalizeParagraphs(sb.String())
}

// NormalizeBody flattens a record's body to a single whitespace-
// normalized line of markup-free text. This is the form hashed into
// the content hash and consumed by word trimming.
func NormalizeBody(body string) string {
	return strings.Join(strings.Fields(StripMarkup(body)), " ")
}

// SplitParagraphs returns the markup-free paragraphs of body text in
// order, with empty paragraphs dropped.
func SplitParagraphs(body string) []string {
	var paragraphs []string
	for _, block := range strings.Split(StripMarkup(body), "\n\n") {
		p := strings.Join(strings.Fields(block), " ")
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// TrimWords shortens text to at most max whitespace-delimited tokens.
// Reports whether anything was cut.
func TrimWords(text string, max int) (string, bool) {
	words := strings.Fields(text)
	if len(words) <= max {
		return strings.Join(words, " "), false
	}
	return strings.Join(words[:max], " "), true
}

// normalizeParagraphs collapses runs of blank lines to a single
// paragraph separator and trims surrounding whitespace.
func normalizeParagraphs(text string) string {
	var paragraphs []string
	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if current != "" {
				paragraphs = append(paragraphs, current)
				current = ""
			}
			continue
		}
		if current != "" {
			current += " "
		}
		current += line
	}
	if current != "" {
		paragraphs = append(paragraphs, current)
	}
	return strings.Join(paragraphs, "\n\n")
}
