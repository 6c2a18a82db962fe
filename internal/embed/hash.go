package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/qanoonhq/qanoon/internal/arabic"
)

// Feature weights for vector generation. Whole tokens dominate; character
// trigrams add partial-word overlap so morphological variants of the same
// Arabic root still land near each other.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// arabicStopWords are high-frequency function words excluded from the
// token features. They carry no retrieval signal and would swamp the
// vector on long legal passages.
var arabicStopWords = map[string]bool{
	"في": true, "من": true, "على": true, "الي": true, "عن": true,
	"ان": true, "او": true, "اذا": true, "التي": true, "الذي": true,
	"ما": true, "لا": true, "كل": true, "هذا": true, "هذه": true,
	"مع": true, "بعد": true, "قبل": true, "غير": true, "بين": true,
}

// HashEmbedder generates deterministic embeddings by hashing normalized
// tokens and character trigrams into a fixed-size vector. No network, no
// model files; quality is below a trained model but identical text always
// embeds identically, which the index layer relies on.
type HashEmbedder struct {
	mu     sync.RWMutex
	closed bool
}

// NewHashEmbedder creates a new hash embedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

// Embed generates the embedding for a single text.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector := make([]float32, HashDimensions)

	tokens := arabic.Tokenize(text)
	if len(tokens) == 0 {
		return vector, nil
	}

	joined := ""
	for _, token := range tokens {
		if arabicStopWords[token] {
			continue
		}
		vector[hashToIndex(token, HashDimensions)] += tokenWeight
		joined += token
	}

	for _, ngram := range extractNgrams(joined, ngramSize) {
		vector[hashToIndex(ngram, HashDimensions)] += ngramWeight
	}

	return normalizeVector(vector), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		results[i] = emb
	}
	return results, nil
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return HashDimensions
}

// ModelName returns the model identifier.
func (e *HashEmbedder) ModelName() string {
	return "hash-v1"
}

// Close releases resources.
func (e *HashEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// extractNgrams extracts n-rune sliding windows.
func extractNgrams(text string, n int) []string {
	runes := []rune(text)
	if len(runes) < n {
		return nil
	}
	ngrams := make([]string, 0, len(runes)-n+1)
	for i := 0; i <= len(runes)-n; i++ {
		ngrams = append(ngrams, string(runes[i:i+n]))
	}
	return ngrams
}

// hashToIndex maps a string to a vector index with FNV-64.
func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}

var _ Embedder = (*HashEmbedder)(nil)
