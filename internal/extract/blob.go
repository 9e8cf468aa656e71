package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// PrepareBlob normalizes a raw paste before extraction: CRLF and CR become
// LF, non-breaking spaces become plain spaces, and HTML markup is reduced
// to visible text with block boundaries kept as newlines so label/value
// adjacency survives. Plain text passes through untouched apart from the
// newline normalization.
func PrepareBlob(blob string) string {
	normalized := strings.ReplaceAll(blob, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.ReplaceAll(normalized, " ", " ")

	if looksLikeHTML(normalized) {
		if text, err := htmlToText(normalized); err == nil {
			return text
		}
	}
	return normalized
}

// looksLikeHTML is a cheap sniff: pastes from rich editors carry tags,
// plain memos do not. Angle brackets alone (e.g. "<jane@acme.com>") are
// not enough.
func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range []string{"<html", "<body", "<div", "<p>", "<p ", "<br", "<span", "<table", "<li"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// blockTags are elements whose boundaries become newlines in the reduced
// text.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "section": true, "article": true,
	"blockquote": true, "pre": true,
}

// htmlToText walks the parse tree collecting text nodes, skipping
// script/style subtrees and emitting newlines at block boundaries.
func htmlToText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
			if blockTags[n.Data] {
				buf.WriteString("\n")
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockTags[n.Data] {
			buf.WriteString("\n")
		}
	}

	walk(doc)

	// Collapse the space padding around line breaks without touching the
	// breaks themselves.
	lines := strings.Split(buf.String(), "\n")
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n"), nil
}
