package catalog

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Flatten parses HTML and returns its visible text as a single blob with
// text nodes separated by spaces. Script and style contents are skipped
// because they would pollute pattern extraction with code fragments.
//
// Design decision: We use golang.org/x/net/html rather than regex
// stripping because:
//  1. It correctly handles malformed HTML common on the web
//  2. Entities are decoded for us
//  3. Element-level skipping (script/style) is impossible with regex
func Flatten(content io.Reader) (string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String()), nil
}
