package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/qanoonhq/qanoon/internal/access"
	"github.com/qanoonhq/qanoon/internal/config"
	"github.com/qanoonhq/qanoon/internal/embed"
	"github.com/qanoonhq/qanoon/internal/store"
)

// Options controls one ingest run.
type Options struct {
	// InputDir holds one JSON file per document: an array of pages,
	// [{"page":1,"text":"..."}]. The document id is the file name
	// without extension.
	InputDir string

	// Roles tags every ingested chunk. Empty means all roles.
	Roles []string

	// SeedRestricted appends the demo restricted document set.
	SeedRestricted bool
}

// Pipeline builds the corpus artifacts: chunks JSONL, metadata database,
// lexical index, and dense index. One run replaces everything; a file
// lock keeps concurrent runs from interleaving half-written indexes.
type Pipeline struct {
	cfg      *config.Config
	embedder embed.Embedder
	logger   *slog.Logger
}

// NewPipeline creates an ingest pipeline.
func NewPipeline(cfg *config.Config, embedder embed.Embedder, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, embedder: embedder, logger: logger}
}

// Run executes a full ingest and returns the chunk count.
func (p *Pipeline) Run(ctx context.Context, opts Options) (int, error) {
	if err := os.MkdirAll(p.cfg.Paths.DataDir, 0o755); err != nil {
		return 0, fmt.Errorf("create data dir: %w", err)
	}

	lock := flock.New(p.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !locked {
		return 0, fmt.Errorf("another ingest is already running (lock %s held)", p.cfg.LockPath())
	}
	defer lock.Unlock()

	start := time.Now()

	chunks, err := p.collect(opts)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no documents found in %s", opts.InputDir)
	}
	corpus := store.NewCorpus(chunks)

	if err := writeJSONL(p.cfg.ChunksPath(), corpus.Chunks()); err != nil {
		return 0, err
	}
	if err := p.writeMetadata(ctx, corpus); err != nil {
		return 0, err
	}
	if err := p.buildLexical(ctx, corpus); err != nil {
		return 0, err
	}
	if err := p.buildDense(ctx, corpus); err != nil {
		return 0, err
	}

	p.logger.Info("ingest_completed",
		slog.Int("chunks", corpus.Len()),
		slog.Duration("duration", time.Since(start)))
	return corpus.Len(), nil
}

// collect reads every document in the input directory and segments it.
func (p *Pipeline) collect(opts Options) ([]store.Chunk, error) {
	roles := opts.Roles
	if len(roles) == 0 {
		roles = access.AllRoles
	}

	jsonPaths, err := filepath.Glob(filepath.Join(opts.InputDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan input dir: %w", err)
	}
	txtPaths, err := filepath.Glob(filepath.Join(opts.InputDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("scan input dir: %w", err)
	}
	paths := append(jsonPaths, txtPaths...)
	sort.Strings(paths)

	var chunks []store.Chunk
	for _, path := range paths {
		docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		pages, err := readDocument(path)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", docID, err)
		}
		docChunks := BuildChunks(docID, pages, roles)
		p.logger.Debug("document_segmented",
			slog.String("doc_id", docID),
			slog.Int("pages", len(pages)),
			slog.Int("chunks", len(docChunks)))
		chunks = append(chunks, docChunks...)
	}

	if opts.SeedRestricted {
		chunks = append(chunks, SeedChunks()...)
	}
	return chunks, nil
}

// readDocument parses one extracted document file. JSON files carry a
// page array; plain text files become a single page.
func readDocument(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".txt" {
		return []Page{{Page: 1, Text: string(data)}}, nil
	}
	var pages []Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("parse pages: %w", err)
	}
	return pages, nil
}

// writeJSONL writes the corpus as one chunk per line, atomically.
func writeJSONL(path string, chunks []store.Chunk) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmpPath, err)
	}

	enc := json.NewEncoder(f)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("encode chunk %s: %w", c.ID, err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename chunks file: %w", err)
	}
	return nil
}

// writeMetadata replaces the chunk set in the metadata database and
// records the run state.
func (p *Pipeline) writeMetadata(ctx context.Context, corpus *store.Corpus) error {
	meta, err := store.OpenMetadataStore(p.cfg.MetaPath())
	if err != nil {
		return err
	}
	defer meta.Close()

	if err := meta.ReplaceChunks(ctx, corpus.Chunks()); err != nil {
		return err
	}
	if err := meta.SetState(ctx, "embedder", p.embedder.ModelName()); err != nil {
		return err
	}
	return meta.SetState(ctx, "ingested_at", time.Now().UTC().Format(time.RFC3339))
}

// buildLexical rebuilds the Bleve index from scratch.
func (p *Pipeline) buildLexical(ctx context.Context, corpus *store.Corpus) error {
	// A stale index would keep deleted chunks searchable; rebuild clean.
	if err := os.RemoveAll(p.cfg.LexicalIndexPath()); err != nil {
		return fmt.Errorf("clear lexical index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.cfg.LexicalIndexPath()), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	idx, err := store.NewLexicalIndex(p.cfg.LexicalIndexPath())
	if err != nil {
		return err
	}
	defer idx.Close()
	return idx.IndexCorpus(ctx, corpus)
}

// buildDense embeds every chunk and persists the vector graph.
func (p *Pipeline) buildDense(ctx context.Context, corpus *store.Corpus) error {
	texts := make([]string, corpus.Len())
	for i := 0; i < corpus.Len(); i++ {
		texts[i] = corpus.At(i).NormText
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}

	idx := store.NewDenseIndex(p.embedder.Dimensions())
	defer idx.Close()
	if err := idx.AddBatch(ctx, vectors); err != nil {
		return err
	}
	return idx.Save(p.cfg.DenseIndexPath())
}
