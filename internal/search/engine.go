package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qanoonhq/qanoon/internal/access"
	"github.com/qanoonhq/qanoon/internal/arabic"
	"github.com/qanoonhq/qanoon/internal/embed"
	"github.com/qanoonhq/qanoon/internal/glossary"
	"github.com/qanoonhq/qanoon/internal/highlight"
	"github.com/qanoonhq/qanoon/internal/qerrors"
	"github.com/qanoonhq/qanoon/internal/store"
)

// Snapshot is one immutable view of the corpus and its indexes. Queries
// read a snapshot end to end; reload builds a fresh snapshot and swaps
// the pointer, so in-flight queries keep a consistent view.
type Snapshot struct {
	Corpus  *store.Corpus
	Lexical *store.LexicalIndex
	Dense   *store.DenseIndex
}

// Engine runs the ranking pipeline. Safe for concurrent use; the only
// mutable field is the snapshot pointer, swapped atomically on reload.
type Engine struct {
	snap     atomic.Pointer[Snapshot]
	embedder embed.Embedder
	expander *glossary.Expander
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine builds an engine over an initial snapshot.
func NewEngine(snap *Snapshot, embedder embed.Embedder, expander *glossary.Expander, opts ...Option) *Engine {
	e := &Engine{
		embedder: embedder,
		expander: expander,
		logger:   slog.Default(),
	}
	e.snap.Store(snap)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Swap atomically replaces the snapshot. The old snapshot is returned so
// the caller can close its indexes once in-flight queries drain.
func (e *Engine) Swap(snap *Snapshot) *Snapshot {
	return e.snap.Swap(snap)
}

// Snapshot returns the current snapshot.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// Search executes one query through the full pipeline: validate,
// tokenize, expand, fuse, filter, highlight, assemble. Parameter errors
// are rejected before any scoring work; an empty candidate or result set
// is not an error and yields the fallback answer.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	start := time.Now()
	snap := e.snap.Load()

	tokens := arabic.Tokenize(req.Query)
	related := e.expander.Expand(req.Query)

	candidates, err := e.fuse(ctx, snap, req)
	if err != nil {
		return nil, err
	}

	results, hidden := e.filter(snap, candidates, req)
	e.annotate(results, tokens, related)

	resp := &Response{
		Answer:       FallbackAnswer,
		Results:      results,
		RelatedTerms: related,
		HiddenDocs:   hidden,
	}
	if len(results) > 0 {
		resp.Answer = results[0].Excerpt
	}

	e.logger.Debug("search_completed",
		slog.Int("tokens", len(tokens)),
		slog.Int("related_terms", len(related)),
		slog.Int("candidates", len(candidates)),
		slog.Int("results", len(results)),
		slog.Int("hidden", len(hidden)),
		slog.Duration("duration", time.Since(start)))

	return resp, nil
}

// validate rejects malformed parameters outright; nothing is clamped.
func validate(req Request) error {
	if strings.TrimSpace(req.Query) == "" {
		return qerrors.InvalidParam("query must not be empty")
	}
	if req.TopK <= 0 {
		return qerrors.InvalidParam("topk must be positive, got %d", req.TopK)
	}
	if req.LexicalK <= 0 {
		return qerrors.InvalidParam("lexical_k must be positive, got %d", req.LexicalK)
	}
	if req.VectorK <= 0 {
		return qerrors.InvalidParam("vector_k must be positive, got %d", req.VectorK)
	}
	if req.Alpha < 0 || req.Alpha > 1 {
		return qerrors.InvalidParam("alpha must be in [0,1], got %g", req.Alpha)
	}
	return nil
}

// fuse obtains both score vectors in parallel and blends them. An empty
// corpus short-circuits to no candidates.
func (e *Engine) fuse(ctx context.Context, snap *Snapshot, req Request) ([]Candidate, error) {
	n := snap.Corpus.Len()
	if n == 0 {
		return nil, nil
	}

	var lexScores, denseScores []float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scores, err := snap.Lexical.ScoreAll(gctx, req.Query, n)
		if err != nil {
			return fmt.Errorf("lexical scorer: %w", err)
		}
		lexScores = scores
		return nil
	})
	g.Go(func() error {
		vec, err := e.embedder.Embed(gctx, arabic.Normalize(req.Query))
		if err != nil {
			return fmt.Errorf("embed query: %w", err)
		}
		scores, err := snap.Dense.ScoreAll(gctx, vec, n)
		if err != nil {
			return fmt.Errorf("dense scorer: %w", err)
		}
		denseScores = scores
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, qerrors.Internal(err, "scoring failed")
	}

	return Fuse(lexScores, denseScores, req.LexicalK, req.VectorK, req.Alpha), nil
}

// filter walks the fused candidates in rank order, keeping admitted
// chunks until TopK is reached. There is no backfill: candidates past the
// fused window never enter. Withheld documents are collected for the
// caller.
func (e *Engine) filter(snap *Snapshot, candidates []Candidate, req Request) ([]Citation, []string) {
	subject := access.NewSubject(req.Roles)

	var results []Citation
	var hidden []string
	hiddenSeen := make(map[string]struct{})

	for _, cand := range candidates {
		if len(results) >= req.TopK {
			break
		}
		chunk := snap.Corpus.At(cand.Ord)
		if !subject.Admit(chunk.Roles, chunk.DocID) {
			if _, dup := hiddenSeen[chunk.DocID]; !dup {
				hiddenSeen[chunk.DocID] = struct{}{}
				hidden = append(hidden, chunk.DocID)
			}
			continue
		}
		results = append(results, Citation{
			Rank:      len(results) + 1,
			DocID:     chunk.DocID,
			ArticleNo: chunk.ArticleNo,
			PageStart: chunk.Pages[0],
			PageEnd:   chunk.Pages[len(chunk.Pages)-1],
			Score:     cand.Score,
			Excerpt:   excerpt(chunk.Text),
		})
	}
	return results, hidden
}

// annotate highlights literal and related terms in every excerpt.
func (e *Engine) annotate(results []Citation, tokens, related []string) {
	for i := range results {
		results[i].Excerpt = highlight.Annotate(results[i].Excerpt, tokens, related)
	}
}

// excerpt takes the leading window of a chunk's text with newlines
// collapsed to spaces.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) > ExcerptRunes {
		runes = runes[:ExcerptRunes]
	}
	return strings.TrimSpace(strings.ReplaceAll(string(runes), "\n", " "))
}
