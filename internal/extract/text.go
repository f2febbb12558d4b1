package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// textContent pulls clean text from an element, trying three strategies in
// order: the element's direct text nodes, its span fragments joined with a
// space, and finally the full subtree text. First non-empty result wins.
func textContent(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}

	if t := normalize(ownText(sel)); t != "" {
		return t
	}

	var parts []string
	sel.Find("span").Each(func(_ int, span *goquery.Selection) {
		if t := normalize(span.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	return normalize(sel.Text())
}

// ownText concatenates the text nodes that are direct children of the
// selection, skipping nested elements.
func ownText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}

// normalize trims the text and collapses runs of spaces and tabs, keeping
// line structure intact. Multi-line values (party identity blocks) rely on
// the newlines surviving.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// parseID converts a pure digit run to an int64. Anything else, including
// formatted numbers, yields nil; the caller keeps the raw text instead.
func parseID(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" || !isDigits(s) {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// truncateRunes bounds a string to n runes, used for table keys derived from
// free-form headers.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
