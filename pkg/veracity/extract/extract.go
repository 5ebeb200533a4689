package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements whose text is page chrome or code rather than article prose.
// Their entire subtree is skipped. The head goes too: Title reads it
// separately, and its words should not count as body text.
var skipElements = map[string]struct{}{
	"head":     {},
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"iframe":   {},
	"nav":      {},
	"header":   {},
	"footer":   {},
	"aside":    {},
	"form":     {},
}

// Text extracts readable prose from an HTML document: text nodes outside the
// skipped elements, joined with single spaces. Plain text without markup
// passes through with its whitespace collapsed. No fetching happens here;
// the caller supplies the markup.
func Text(source string) string {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		// html.Parse recovers from almost any markup; if it truly cannot,
		// treat the input as plain text.
		return collapse(source)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := skipElements[n.Data]; skip {
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			// Keep text from adjacent blocks from running together.
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapse(buf.String())
}

// Title returns the text of the document's first title element, or the
// empty string when there is none
func Title(source string) string {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			var buf strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					buf.WriteString(c.Data)
				}
			}
			title = collapse(buf.String())
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)

	return title
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
