package domain

import "time"

// SensitiveKind classifies a sensitive input field found in a page.
type SensitiveKind string

const (
	SensitivePassword   SensitiveKind = "password"
	SensitiveCreditCard SensitiveKind = "credit_card"
)

// TextChunk is one window of extracted page text.
// Span offsets are half-open byte positions into the normalized text and
// refer to the untrimmed window.
type TextChunk struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Index    int    `json:"index"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Selector string `json:"selector,omitempty"`
}

// Heading is a document heading, levels 1 through 3.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link is an anchor found in the page. Href is kept as authored,
// not resolved against the page URL.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// PageMetadata is the structural summary of a page.
type PageMetadata struct {
	WordCount int       `json:"word_count"`
	Headings  []Heading `json:"headings"`
	Links     []Link    `json:"links"`
}

// ExtractionResult is the output of the extraction pipeline for one page.
type ExtractionResult struct {
	URL      string       `json:"url"`
	Title    string       `json:"title"`
	Text     string       `json:"text"`
	Chunks   []TextChunk  `json:"chunks"`
	Metadata PageMetadata `json:"metadata"`
}

// SourceReference points a model answer back at a chunk of origin text.
type SourceReference struct {
	ChunkID string `json:"chunk_id"`
	Preview string `json:"preview"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// PageIndex is a persisted record of an extracted page.
type PageIndex struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	ChunkCount  int       `json:"chunk_count"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// PageChunk is a persisted TextChunk tied to a PageIndex,
// with the id of its point in the vector index once embedded.
type PageChunk struct {
	ID       string `json:"id"`
	PageID   string `json:"page_id"`
	ChunkID  string `json:"chunk_id"`
	Text     string `json:"text"`
	Index    int    `json:"index"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	VectorID string `json:"vector_id,omitempty"`
}

// RetrievalHit is one result of a vector similarity search.
// Score is similarity, higher is closer.
type RetrievalHit struct {
	ChunkID  string  `json:"chunk_id"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Selector string  `json:"selector,omitempty"`
}

// RetrievalFilter scopes a vector search. UserID is required,
// PageID optionally narrows to one page.
type RetrievalFilter struct {
	UserID string
	PageID string
}
