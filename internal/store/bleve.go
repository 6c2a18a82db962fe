package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/qanoonhq/qanoon/internal/arabic"
)

const (
	// ArabicTokenizerName is the registry name of the Arabic legal
	// tokenizer.
	ArabicTokenizerName = "arabic_legal_tokenizer"

	// ArabicAnalyzerName is the registry name of the Arabic legal
	// analyzer.
	ArabicAnalyzerName = "arabic_legal"
)

func init() {
	registry.RegisterTokenizer(ArabicTokenizerName, arabicTokenizerConstructor)
}

// LexicalIndex wraps Bleve for BM25-scored keyword search over chunk
// text. Documents are keyed by corpus ordinal so score vectors align
// with corpus positions.
type LexicalIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// bleveChunk is the document shape handed to Bleve.
type bleveChunk struct {
	Content string `json:"content"`
}

// NewLexicalIndex creates or opens a lexical index. An empty path keeps
// the index in memory, which the tests and the reload path use.
func NewLexicalIndex(path string) (*LexicalIndex, error) {
	indexMapping, err := createIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("create index mapping: %w", err)
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			return nil, fmt.Errorf("create index directory: %w", mkErr)
		}
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open lexical index: %w", err)
	}

	return &LexicalIndex{index: idx, path: path}, nil
}

// createIndexMapping wires the Arabic analyzer in as the default.
func createIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(ArabicAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": ArabicTokenizerName,
	})
	if err != nil {
		return nil, fmt.Errorf("add custom analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = ArabicAnalyzerName
	return indexMapping, nil
}

// IndexCorpus indexes every chunk of the corpus under its ordinal.
func (l *LexicalIndex) IndexCorpus(ctx context.Context, corpus *Corpus) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return fmt.Errorf("index is closed")
	}

	batch := l.index.NewBatch()
	for i := 0; i < corpus.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := bleveChunk{Content: corpus.At(i).NormText}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			return fmt.Errorf("index chunk %d: %w", i, err)
		}
	}
	if err := l.index.Batch(batch); err != nil {
		return fmt.Errorf("execute batch: %w", err)
	}
	return nil
}

// ScoreAll returns one BM25 score per corpus position for the query.
// Chunks the query matches nothing in score zero; the result length is
// always n, so callers can fuse positionally.
func (l *LexicalIndex) ScoreAll(ctx context.Context, query string, n int) ([]float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, fmt.Errorf("index is closed")
	}

	scores := make([]float64, n)
	if strings.TrimSpace(query) == "" || n == 0 {
		return scores, nil
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = n

	result, err := l.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	for _, hit := range result.Hits {
		ord, convErr := strconv.Atoi(hit.ID)
		if convErr != nil || ord < 0 || ord >= n {
			continue
		}
		scores[ord] = hit.Score
	}
	return scores, nil
}

// DocCount returns the number of indexed chunks.
func (l *LexicalIndex) DocCount() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return 0, fmt.Errorf("index is closed")
	}
	return l.index.DocCount()
}

// Close closes the underlying Bleve index. Idempotent.
func (l *LexicalIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.index != nil {
		return l.index.Close()
	}
	return nil
}

// arabicTokenizerConstructor creates the Arabic tokenizer for Bleve.
func arabicTokenizerConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.Tokenizer, error) {
	return &arabicTokenizer{}, nil
}

// arabicTokenizer adapts the shared Arabic tokenization to Bleve's
// analysis interface. Indexed text and queries both pass through it, so
// surface variants of a word hit the same terms.
type arabicTokenizer struct{}

// Tokenize implements analysis.Tokenizer.
func (t *arabicTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := arabic.Tokenize(text)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0
	for _, token := range tokens {
		// Best-effort offsets against the raw text: normalization can
		// shift positions, and only the terms matter for scoring.
		start := strings.Index(text[offset:], token)
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)

		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}
	return result
}
