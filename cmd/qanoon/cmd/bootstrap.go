package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/qanoonhq/qanoon/internal/config"
	"github.com/qanoonhq/qanoon/internal/embed"
	"github.com/qanoonhq/qanoon/internal/glossary"
	"github.com/qanoonhq/qanoon/internal/search"
	"github.com/qanoonhq/qanoon/internal/store"
)

// newEmbedder builds the query/corpus embedder with the configured cache
// in front.
func newEmbedder(cfg *config.Config) embed.Embedder {
	return embed.NewCachedEmbedder(embed.NewHashEmbedder(), cfg.Search.CacheSize)
}

// newExpander builds the glossary expander: built-in concept table plus
// the configured synonym file. A missing file degrades to the built-ins;
// a malformed one fails.
func newExpander(cfg *config.Config) (*glossary.Expander, error) {
	file, err := glossary.NewFileSource(cfg.Paths.Glossary)
	if err != nil {
		return nil, fmt.Errorf("glossary %s: %w", cfg.Paths.Glossary, err)
	}
	return glossary.NewExpander(glossary.Builtin(), file), nil
}

// loadSnapshot opens the on-disk corpus artifacts an ingest run produced.
// The metadata database is the primary corpus source; the JSONL file
// covers data directories that only carry the original's export.
func loadSnapshot(cfg *config.Config, dims int) (*search.Snapshot, error) {
	corpus, err := loadCorpus(cfg)
	if err != nil {
		return nil, err
	}

	lexical, err := store.NewLexicalIndex(cfg.LexicalIndexPath())
	if err != nil {
		return nil, err
	}

	dense := store.NewDenseIndex(dims)
	if err := dense.Load(cfg.DenseIndexPath()); err != nil {
		lexical.Close()
		return nil, err
	}

	if dense.Count() != corpus.Len() {
		lexical.Close()
		dense.Close()
		return nil, fmt.Errorf("dense index holds %d vectors for %d chunks; re-run 'qanoon ingest'",
			dense.Count(), corpus.Len())
	}

	return &search.Snapshot{Corpus: corpus, Lexical: lexical, Dense: dense}, nil
}

// loadCorpus reads chunks from the metadata database, falling back to
// the JSONL export.
func loadCorpus(cfg *config.Config) (*store.Corpus, error) {
	if _, err := os.Stat(cfg.MetaPath()); err == nil {
		meta, err := store.OpenMetadataStore(cfg.MetaPath())
		if err != nil {
			return nil, err
		}
		defer meta.Close()

		chunks, err := meta.LoadChunks(context.Background())
		if err != nil {
			return nil, err
		}
		if len(chunks) > 0 {
			return store.NewCorpus(chunks), nil
		}
	}

	if _, err := os.Stat(cfg.ChunksPath()); os.IsNotExist(err) {
		return nil, fmt.Errorf("no corpus found at %s. Run 'qanoon ingest' first", cfg.Paths.DataDir)
	}
	return store.LoadJSONL(cfg.ChunksPath())
}

// closeSnapshot releases a snapshot's indexes.
func closeSnapshot(snap *search.Snapshot) {
	if snap == nil {
		return
	}
	if snap.Lexical != nil {
		_ = snap.Lexical.Close()
	}
	if snap.Dense != nil {
		_ = snap.Dense.Close()
	}
}

// buildEngine assembles a ready engine from the configured artifacts.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*search.Engine, embed.Embedder, error) {
	embedder := newEmbedder(cfg)

	expander, err := newExpander(cfg)
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}

	snap, err := loadSnapshot(cfg, embedder.Dimensions())
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}

	engine := search.NewEngine(snap, embedder, expander, search.WithLogger(logger))
	return engine, embedder, nil
}
