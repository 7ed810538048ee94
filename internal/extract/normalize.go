package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// blockElements force a line break around their content when flattening
// markup to plain text.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "dl": true, "dt": true, "dd": true, "fieldset": true,
	"figure": true, "figcaption": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "hr": true, "li": true, "main": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// skippedElements contribute no visible text.
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"img": true, "svg": true, "head": true, "template": true,
}

var (
	multiBlankLines = regexp.MustCompile(`\n\s*\n`)
	multiSpaces     = regexp.MustCompile(` +`)
)

// Normalize flattens markup into plain text. Link text survives, hrefs
// and images do not. Block elements become line breaks, runs of blank
// lines collapse to a single blank line and runs of spaces to one space.
func Normalize(markup string) string {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var b strings.Builder
	flatten(root, &b)

	text := multiBlankLines.ReplaceAllString(b.String(), "\n\n")
	text = multiSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func flatten(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
		if n.Data == "br" {
			b.WriteString("\n")
			return
		}
		if blockElements[n.Data] {
			b.WriteString("\n")
			defer b.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flatten(c, b)
	}
}

// Redaction patterns, applied in this order. Each substitution runs over
// the output of the previous one.
var redactions = []struct {
	pattern *regexp.Regexp
	marker  string
}{
	{regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), "[REDACTED_CREDIT_CARD]"},
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[REDACTED_SSN]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
}

// Redact replaces credit card numbers, SSNs and email addresses with
// fixed markers. The replacement is irreversible and the matched values
// must never be logged.
func Redact(text string) string {
	for _, r := range redactions {
		text = r.pattern.ReplaceAllString(text, r.marker)
	}
	return text
}
