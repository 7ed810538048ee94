package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// creditCardHints are matched against the lower-cased name and id
// attributes of input elements.
var creditCardHints = []string{"card", "cvv", "ccv", "credit"}

// Detect scans the raw page markup for input fields that collect
// sensitive data. The result is de-duplicated and returned in a fixed
// order, password before credit_card. Markup that fails to parse
// cleanly degrades to no matches.
func Detect(html string) []domain.SensitiveKind {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var foundPassword, foundCard bool
	doc.Find("input").Each(func(_ int, sel *goquery.Selection) {
		if typ, ok := sel.Attr("type"); ok && typ == "password" {
			foundPassword = true
		}
		name, _ := sel.Attr("name")
		id, _ := sel.Attr("id")
		haystack := strings.ToLower(name + " " + id)
		for _, hint := range creditCardHints {
			if strings.Contains(haystack, hint) {
				foundCard = true
				break
			}
		}
	})

	var kinds []domain.SensitiveKind
	if foundPassword {
		kinds = append(kinds, domain.SensitivePassword)
	}
	if foundCard {
		kinds = append(kinds, domain.SensitiveCreditCard)
	}
	return kinds
}
