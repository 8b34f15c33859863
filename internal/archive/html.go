package archive

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
// Archive descriptions arrive as raw wiki-era HTML about half the time.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// anyTagPattern is the last-resort stripper when parsing fails.
var anyTagPattern = regexp.MustCompile(`<[^>]*>`)

// whitespaceRun collapses text joined across element boundaries.
var whitespaceRun = regexp.MustCompile(`\s+`)

// containsHTML checks if a string appears to contain HTML markup.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// htmlToMarkdown converts HTML description content to Markdown.
// If the input doesn't contain HTML, it's returned trimmed but
// otherwise unchanged. When conversion fails the tags are stripped
// instead, so raw markup never reaches a client.
func htmlToMarkdown(s string) string {
	if s == "" {
		return s
	}
	if !containsHTML(s) {
		return strings.TrimSpace(s)
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return stripHTML(s)
	}

	return strings.TrimSpace(markdown)
}

// stripHTML removes HTML tags and returns plain text with collapsed
// whitespace.
func stripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// If parsing fails, fall back to regex stripping
		return collapseWhitespace(anyTagPattern.ReplaceAllString(s, " "))
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return collapseWhitespace(buf.String())
}

// extractText recursively extracts text content from HTML nodes.
func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}

	// Block elements separate their text from neighbours
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
