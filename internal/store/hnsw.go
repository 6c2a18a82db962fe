package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"
)

// DenseIndex is the approximate nearest neighbor index over chunk
// embeddings, keyed by corpus ordinal. Pure Go, no CGO.
type DenseIndex struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[int]
	dims   int
	count  int
	closed bool
}

// NewDenseIndex creates an empty dense index for vectors of width dims.
func NewDenseIndex(dims int) *DenseIndex {
	graph := hnsw.NewGraph[int]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &DenseIndex{graph: graph, dims: dims}
}

// AddBatch appends vectors in corpus order. The ordinal of each vector is
// its position in the overall insertion sequence, so feeding the corpus
// embeddings in order keys every node by corpus position.
func (d *DenseIndex) AddBatch(ctx context.Context, vectors [][]float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("index is closed")
	}

	for _, vec := range vectors {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(vec) != d.dims {
			return ErrDimensionMismatch{Expected: d.dims, Got: len(vec)}
		}
		d.graph.Add(hnsw.MakeNode(d.count, vec))
		d.count++
	}
	return nil
}

// ScoreAll returns one similarity score per corpus position for the query
// vector. Score is 1 - cosine distance, so identical direction scores 1.
// Positions the graph search does not reach stay zero; the result length
// is always n.
func (d *DenseIndex) ScoreAll(ctx context.Context, query []float32, n int) ([]float64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, fmt.Errorf("index is closed")
	}
	if len(query) != d.dims {
		return nil, ErrDimensionMismatch{Expected: d.dims, Got: len(query)}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make([]float64, n)
	if d.graph.Len() == 0 || n == 0 {
		return scores, nil
	}

	for _, node := range d.graph.Search(query, n) {
		if node.Key < 0 || node.Key >= n {
			continue
		}
		distance := d.graph.Distance(query, node.Value)
		scores[node.Key] = 1 - float64(distance)
	}
	return scores, nil
}

// Count returns the number of stored vectors.
func (d *DenseIndex) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.count
}

// Save persists the graph with a temp-file-and-rename so a crashed save
// never leaves a truncated index behind.
func (d *DenseIndex) Save(path string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return fmt.Errorf("index is closed")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	if err := d.graph.Export(file); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("export graph: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename index file: %w", err)
	}
	return nil
}

// Load reads a previously saved graph.
func (d *DenseIndex) Load(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("index is closed")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()

	// hnsw's Import requires its reader to implement io.ByteReader.
	if err := d.graph.Import(bufio.NewReader(file)); err != nil {
		return fmt.Errorf("import graph: %w", err)
	}
	d.count = d.graph.Len()
	return nil
}

// Close marks the index closed. The graph is memory-only, nothing to
// release.
func (d *DenseIndex) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
