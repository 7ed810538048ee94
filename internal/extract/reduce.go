package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// chromeSelector matches page furniture that never belongs to the
// readable content.
const chromeSelector = "script, style, nav, footer, header"

// Reduce isolates the readable region of a page. It returns the page
// title and the reduced markup. When readability cannot identify a main
// region the whole document is used instead, so a valid page always
// reduces to something. The title is taken from readability, falling
// back to the document <title>, and is empty when neither exists.
func Reduce(html, sourceURL string) (title string, contentHTML string) {
	pageURL, _ := url.Parse(sourceURL)

	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		title = strings.TrimSpace(article.Title)
		contentHTML = stripChrome(article.Content)
	} else {
		contentHTML = stripChrome(html)
	}

	if title == "" {
		title = documentTitle(html)
	}
	return title, contentHTML
}

func stripChrome(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find(chromeSelector).Remove()
	out, err := doc.Html()
	if err != nil {
		return html
	}
	return out
}

func documentTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
