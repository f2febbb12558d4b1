// Package discovery harvests notice detail URLs from a fully expanded
// listing page. The fetch layer has already exhausted "load more"
// pagination; this package only walks anchors in the rendered DOM.
package discovery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// noticePathMarker identifies detail-page links on the listing.
const noticePathMarker = "/sfactmessage/"

// NoticeURLs extracts the notice detail URLs from listing HTML in document
// order, deduplicated and resolved absolute against baseURL.
func NoticeURLs(pageHTML, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, eris.Wrap(err, "discovery: parse listing")
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: parse base url %s", baseURL)
	}

	seen := make(map[string]bool)
	var urls []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || !strings.Contains(href, noticePathMarker) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			urls = append(urls, abs)
		}
	})
	return urls, nil
}
