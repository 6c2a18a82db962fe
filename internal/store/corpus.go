package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/qanoonhq/qanoon/internal/access"
)

// Corpus is the immutable, ordered chunk collection a search snapshot is
// built over. Chunk ordinal (position) is the candidate identity used by
// the indexes; the collection never mutates after construction, so it is
// safe to share across goroutines without locking. Reload replaces the
// whole corpus, never edits one.
type Corpus struct {
	chunks []Chunk
	byID   map[string]int
}

// NewCorpus builds a corpus over chunks, applying ingest defaults: a
// chunk with no roles is visible to every role, a chunk with no pages is
// attributed to page 1.
func NewCorpus(chunks []Chunk) *Corpus {
	byID := make(map[string]int, len(chunks))
	for i := range chunks {
		if len(chunks[i].Roles) == 0 {
			chunks[i].Roles = append([]string(nil), access.AllRoles...)
		}
		if len(chunks[i].Pages) == 0 {
			chunks[i].Pages = []int{1}
		}
		byID[chunks[i].ID] = i
	}
	return &Corpus{chunks: chunks, byID: byID}
}

// LoadJSONL reads a corpus from a JSON-lines file, one chunk per line.
// Blank lines are skipped; a malformed line fails the whole load rather
// than silently dropping a chunk.
func LoadJSONL(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	corpus, err := ReadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return corpus, nil
}

// ReadJSONL parses chunk lines from r.
func ReadJSONL(r io.Reader) (*Corpus, error) {
	var chunks []Chunk

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var c Chunk
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if c.ID == "" {
			return nil, fmt.Errorf("line %d: chunk missing id", line)
		}
		chunks = append(chunks, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return NewCorpus(chunks), nil
}

// Len returns the chunk count.
func (c *Corpus) Len() int {
	return len(c.chunks)
}

// At returns the chunk at ordinal i. Panics on out-of-range, like a
// slice.
func (c *Corpus) At(i int) Chunk {
	return c.chunks[i]
}

// Lookup resolves a chunk ID to its ordinal.
func (c *Corpus) Lookup(id string) (int, bool) {
	i, ok := c.byID[id]
	return i, ok
}

// Chunks returns the backing slice. Callers must not mutate it.
func (c *Corpus) Chunks() []Chunk {
	return c.chunks
}
