package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// maxMetadataLinks caps how many anchors are reported per page.
const maxMetadataLinks = 20

// Metadata summarizes the structure of a page: visible word count,
// h1 through h3 headings in document order, and the first anchors that
// carry a non-empty href. Hrefs are reported as authored, not resolved
// against the page URL.
func Metadata(markup, pageURL string) domain.PageMetadata {
	md := domain.PageMetadata{
		Headings: []domain.Heading{},
		Links:    []domain.Link{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return md
	}

	md.WordCount = len(strings.Fields(Normalize(markup)))

	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		level, err := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(sel), "h"))
		if err != nil {
			return
		}
		md.Headings = append(md.Headings, domain.Heading{
			Level: level,
			Text:  strings.TrimSpace(sel.Text()),
		})
	})

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.TrimSpace(href) == "" {
			return true
		}
		md.Links = append(md.Links, domain.Link{
			Text: strings.TrimSpace(sel.Text()),
			Href: href,
		})
		return len(md.Links) < maxMetadataLinks
	})

	return md
}
