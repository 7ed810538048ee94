// Package assembler builds bounded prompt context out of text chunks.
package assembler

import (
	"fmt"
	"strings"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// Defaults for prompt assembly.
const (
	// DefaultMaxChars bounds the assembled context for a single page.
	DefaultMaxChars = 8000
	// DefaultPerSourceCap bounds each page's share of a multi-page context.
	DefaultPerSourceCap = 2000
	// PreviewLength bounds source reference previews.
	PreviewLength = 200
)

const (
	chunkSeparator  = "\n\n"
	sourceSeparator = "\n\n---\n\n"
)

// Assemble concatenates chunk texts in order, separated by a blank line,
// stopping before any chunk that would push the total over maxChars.
// The first chunk is always included even when it alone exceeds the
// budget, so a non-empty input never assembles to nothing. Chunks are
// never truncated mid-text.
func Assemble(chunks []domain.TextChunk, maxChars int) string {
	if len(chunks) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(chunks[0].Text)
	for _, chunk := range chunks[1:] {
		if b.Len()+len(chunkSeparator)+len(chunk.Text) > maxChars {
			break
		}
		b.WriteString(chunkSeparator)
		b.WriteString(chunk.Text)
	}
	return b.String()
}

// AssembleSources builds a combined context over several pages. Each
// page's chunks are assembled under its own perSourceCap, labeled with
// the page's position and URL, and the sections are joined in request
// order. maxChars bounds the combined result by dropping whole trailing
// sections; the first section always survives.
func AssembleSources(groups [][]domain.TextChunk, urls []string, perSourceCap, maxChars int) string {
	var sections []string
	for i, chunks := range groups {
		url := ""
		if i < len(urls) {
			url = urls[i]
		}
		body := Assemble(chunks, perSourceCap)
		if r := []rune(body); len(r) > perSourceCap {
			body = string(r[:perSourceCap])
		}
		sections = append(sections, fmt.Sprintf("Page %d (%s):\n%s", i+1, url, body))
	}
	if len(sections) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(sections[0])
	for _, section := range sections[1:] {
		if b.Len()+len(sourceSeparator)+len(section) > maxChars {
			break
		}
		b.WriteString(sourceSeparator)
		b.WriteString(section)
	}
	return b.String()
}

// Sources maps the leading chunks to citation references with short,
// ellipsis-marked previews.
func Sources(chunks []domain.TextChunk, limit int) []domain.SourceReference {
	if limit > len(chunks) {
		limit = len(chunks)
	}
	refs := make([]domain.SourceReference, 0, limit)
	for _, chunk := range chunks[:limit] {
		preview := chunk.Text
		if r := []rune(preview); len(r) > PreviewLength {
			preview = string(r[:PreviewLength]) + "..."
		}
		refs = append(refs, domain.SourceReference{
			ChunkID: chunk.ID,
			Preview: preview,
			Start:   chunk.Start,
			End:     chunk.End,
		})
	}
	return refs
}
