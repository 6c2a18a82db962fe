// Package store holds the retrieval corpus and its two indexes: a
// BM25-scored lexical index over normalized chunk text and an HNSW graph
// over chunk embeddings. Chunks are addressed by corpus ordinal; both
// indexes key on the ordinal so score vectors line up positionally.
package store

import "fmt"

// Chunk is one citable retrieval unit, typically a single article of one
// document.
type Chunk struct {
	// ID is the stable chunk identifier, "<doc>::art<N>".
	ID string `json:"id"`

	// DocID is the source document name. The access layer matches its
	// naming convention against this field.
	DocID string `json:"doc_id"`

	// ArticleNo is the article number within the document, empty for
	// preamble chunks.
	ArticleNo string `json:"article_no"`

	// Pages lists the 1-based source pages the chunk text spans.
	Pages []int `json:"pages"`

	// Text is the original chunk text, diacritics intact.
	Text string `json:"text"`

	// NormText is the canonicalized text the lexical index ingests.
	NormText string `json:"norm_text"`

	// Roles gates visibility. Empty at ingest means visible to all
	// roles; the corpus loader widens it before anything reads it.
	Roles []string `json:"roles"`
}

// ErrDimensionMismatch reports a vector of the wrong width.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}
