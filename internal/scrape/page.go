package scrape

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/fundops/dealfill/internal/model"
)

// ParsePage lifts presentation metadata from an HTML document: title,
// meta description, OpenGraph tags and the canonical link. The first
// occurrence of each wins. A document with none of them yields an empty
// PageMeta, never nil.
func ParsePage(src string) *model.PageMeta {
	meta := &model.PageMeta{}

	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return meta
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if meta.Title == "" {
					meta.Title = strings.TrimSpace(textContent(n))
				}
			case "meta":
				readMetaTag(n, meta)
			case "link":
				readLinkTag(n, meta)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return meta
}

func readMetaTag(n *html.Node, meta *model.PageMeta) {
	var name, property, content string
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "name":
			name = strings.ToLower(attr.Val)
		case "property":
			property = strings.ToLower(attr.Val)
		case "content":
			content = attr.Val
		}
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	switch {
	case name == "description" && meta.Description == "":
		meta.Description = strings.TrimSpace(content)
	case property == "og:title" && meta.OGTitle == "":
		meta.OGTitle = strings.TrimSpace(content)
	case property == "og:description" && meta.OGDescription == "":
		meta.OGDescription = strings.TrimSpace(content)
	case property == "og:site_name" && meta.OGSiteName == "":
		meta.OGSiteName = strings.TrimSpace(content)
	}
}

func readLinkTag(n *html.Node, meta *model.PageMeta) {
	var rel, href string
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "rel":
			rel = strings.ToLower(attr.Val)
		case "href":
			href = strings.TrimSpace(attr.Val)
		}
	}
	if rel == "canonical" && href != "" && meta.CanonicalURL == "" {
		meta.CanonicalURL = href
	}
}

// textContent joins the direct text children of n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
