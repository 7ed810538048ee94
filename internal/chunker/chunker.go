// Package chunker splits normalized page text into overlapping windows
// sized for embedding and prompt assembly.
package chunker

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// Default window geometry.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// boundaryWindow is how far back from the nominal window end the
// sentence-terminator search may reach.
const boundaryWindow = 200

// Config controls the chunk geometry.
type Config struct {
	// Size is the nominal window length in characters.
	Size int
	// Overlap is how many characters consecutive windows share.
	Overlap int
}

// DefaultConfig returns the standard window geometry.
func DefaultConfig() Config {
	return Config{Size: DefaultSize, Overlap: DefaultOverlap}
}

// Split cuts text into overlapping chunks. Windows are measured in
// characters, never splitting a rune, and prefer to end on a sentence
// terminator found within boundaryWindow characters of the nominal
// end. Windows that trim to nothing are skipped but still advance the
// cursor, so chunk indexes count emitted chunks only. Span offsets are
// character offsets into the untrimmed text.
func Split(text, sourceID string, cfg Config) ([]domain.TextChunk, error) {
	if cfg.Overlap >= cfg.Size {
		return nil, domain.ErrInvalidChunkConfig
	}
	if text == "" {
		return []domain.TextChunk{}, nil
	}

	runes := []rune(text)
	var chunks []domain.TextChunk
	start := 0
	for start < len(runes) {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		} else if end < len(runes) {
			// Prefer a sentence boundary near the nominal end.
			floor := start + cfg.Size - boundaryWindow
			if floor < start {
				floor = start
			}
			for i := end; i > floor; i-- {
				if c := runes[i]; c == '.' || c == '!' || c == '?' {
					end = i + 1
					break
				}
			}
		}

		if trimmed := strings.TrimSpace(string(runes[start:end])); trimmed != "" {
			idx := len(chunks)
			chunks = append(chunks, domain.TextChunk{
				ID:    chunkID(sourceID, idx),
				Text:  trimmed,
				Index: idx,
				Start: start,
				End:   end,
			})
		}

		if end >= len(runes) {
			break
		}
		next := end - cfg.Overlap
		if next <= start {
			// The boundary search landed too close to the window start
			// for the overlap to leave forward progress. Only possible
			// when Size is not much larger than boundaryWindow.
			next = end
		}
		start = next
	}
	return chunks, nil
}

// chunkID derives a stable chunk identifier from the source and the
// emitted chunk index.
func chunkID(sourceID string, index int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%d", sourceID, index)))
	return hex.EncodeToString(sum[:])[:16]
}
