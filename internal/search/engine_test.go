package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qanoonhq/qanoon/internal/access"
	"github.com/qanoonhq/qanoon/internal/arabic"
	"github.com/qanoonhq/qanoon/internal/embed"
	"github.com/qanoonhq/qanoon/internal/glossary"
	"github.com/qanoonhq/qanoon/internal/qerrors"
	"github.com/qanoonhq/qanoon/internal/store"
)

// buildEngine assembles an engine over an in-memory snapshot of the given
// chunks.
func buildEngine(t *testing.T, chunks []store.Chunk, sources ...glossary.TermSource) *Engine {
	t.Helper()
	ctx := context.Background()

	for i := range chunks {
		if chunks[i].NormText == "" {
			chunks[i].NormText = arabic.Normalize(chunks[i].Text)
		}
	}
	corpus := store.NewCorpus(chunks)

	lexical, err := store.NewLexicalIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { lexical.Close() })
	require.NoError(t, lexical.IndexCorpus(ctx, corpus))

	embedder := embed.NewHashEmbedder()
	t.Cleanup(func() { embedder.Close() })

	dense := store.NewDenseIndex(embedder.Dimensions())
	t.Cleanup(func() { dense.Close() })
	if corpus.Len() > 0 {
		texts := make([]string, corpus.Len())
		for i := 0; i < corpus.Len(); i++ {
			texts[i] = corpus.At(i).NormText
		}
		vecs, err := embedder.EmbedBatch(ctx, texts)
		require.NoError(t, err)
		require.NoError(t, dense.AddBatch(ctx, vecs))
	}

	snap := &Snapshot{Corpus: corpus, Lexical: lexical, Dense: dense}
	return NewEngine(snap, embedder, glossary.NewExpander(sources...))
}

// threeChunkCorpus is the fixture shared by the end-to-end scenarios:
// a licensing article open to all roles, a restricted document for
// legal/admin, and an unrelated article.
func threeChunkCorpus() []store.Chunk {
	return []store.Chunk{
		{
			ID:        "A::art1",
			DocID:     "A",
			ArticleNo: "1",
			Pages:     []int{1},
			Text:      "يشترط الحصول على ترخيص من الهيئة قبل تشغيل المنشأة",
			Roles:     []string{access.RoleStaff, access.RoleLegal, access.RoleAdmin},
		},
		{
			ID:        "B_Restricted::art1",
			DocID:     "B_Restricted",
			ArticleNo: "1",
			Pages:     []int{1},
			Text:      "ترخيص restricted وثيقة داخلية",
			Roles:     []string{access.RoleLegal, access.RoleAdmin},
		},
		{
			ID:        "C::art1",
			DocID:     "C",
			ArticleNo: "1",
			Pages:     []int{2},
			Text:      "تحدد رسوم تجديد السجل التجاري بقرار من الوزير",
			Roles:     []string{access.RoleStaff, access.RoleLegal, access.RoleAdmin},
		},
	}
}

func TestSearch_StaffSeesOnlyOpenDoc(t *testing.T) {
	e := buildEngine(t, threeChunkCorpus())

	resp, err := e.Search(context.Background(), NewRequest("ترخيص", []string{access.RoleStaff}))
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results)
	for _, c := range resp.Results {
		assert.Equal(t, "A", c.DocID)
	}
	// The restricted doc scored but was withheld.
	assert.Contains(t, resp.HiddenDocs, "B_Restricted")

	// Literal-class highlight around the query term.
	assert.Contains(t, resp.Answer, `background-color: yellow`)
	assert.Contains(t, resp.Answer, "ترخيص")
}

func TestSearch_LegalSeesRestrictedDoc(t *testing.T) {
	e := buildEngine(t, threeChunkCorpus())

	// The query is Latin-only; the restricted doc is the only chunk that
	// carries the term.
	resp, err := e.Search(context.Background(), NewRequest("restricted", []string{access.RoleLegal}))
	require.NoError(t, err)

	docs := make([]string, 0, len(resp.Results))
	for _, c := range resp.Results {
		docs = append(docs, c.DocID)
	}
	assert.Contains(t, docs, "B_Restricted")
	assert.NotEqual(t, FallbackAnswer, resp.Answer)
}

func TestSearch_NoHitsYieldsFallback(t *testing.T) {
	e := buildEngine(t, threeChunkCorpus())

	resp, err := e.Search(context.Background(), NewRequest("موضوع غريب تماما ولا يمت للنصوص بصلة", []string{access.RoleStaff}))
	require.NoError(t, err)

	// Dense trigram collisions may surface weak candidates; what matters
	// is that the pipeline completes without error either way.
	if len(resp.Results) == 0 {
		assert.Equal(t, FallbackAnswer, resp.Answer)
	}

	empty := buildEngine(t, nil)
	resp, err = empty.Search(context.Background(), NewRequest("ترخيص", []string{access.RoleStaff}))
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, FallbackAnswer, resp.Answer)
}

func TestSearch_InvalidParameters(t *testing.T) {
	e := buildEngine(t, threeChunkCorpus())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"empty query", func(r *Request) { r.Query = "  " }},
		{"zero topk", func(r *Request) { r.TopK = 0 }},
		{"negative topk", func(r *Request) { r.TopK = -1 }},
		{"alpha below range", func(r *Request) { r.Alpha = -0.1 }},
		{"alpha above range", func(r *Request) { r.Alpha = 1.1 }},
		{"zero lexical_k", func(r *Request) { r.LexicalK = 0 }},
		{"zero vector_k", func(r *Request) { r.VectorK = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest("ترخيص", []string{access.RoleStaff})
			tt.mutate(&req)
			_, err := e.Search(ctx, req)
			require.Error(t, err)
			assert.True(t, qerrors.IsCode(err, qerrors.CodeInvalidParam))
		})
	}
}

func TestSearch_TopKCapsAfterFiltering(t *testing.T) {
	chunks := []store.Chunk{}
	for _, doc := range []string{"A", "B", "C", "D"} {
		chunks = append(chunks, store.Chunk{
			ID:        doc + "::art1",
			DocID:     doc,
			ArticleNo: "1",
			Pages:     []int{1},
			Text:      "أحكام الترخيص النووي للمنشأة " + doc,
			Roles:     []string{access.RoleStaff},
		})
	}
	e := buildEngine(t, chunks)

	req := NewRequest("الترخيص النووي", []string{access.RoleStaff})
	req.TopK = 2
	resp, err := e.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, resp.Results, 2)
	for i, c := range resp.Results {
		assert.Equal(t, i+1, c.Rank)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	e := buildEngine(t, threeChunkCorpus(), glossary.Builtin())
	req := NewRequest("التعويض عن الضرر النووي والترخيص", []string{access.RoleAdmin})

	first, err := e.Search(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Search(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearch_RelatedTermsHighlighted(t *testing.T) {
	source := glossary.NewStaticSource([]glossary.Entry{
		{Term: "ترخيص", Synonyms: []string{"الهيئة"}},
	})
	e := buildEngine(t, threeChunkCorpus(), source)

	resp, err := e.Search(context.Background(), NewRequest("ترخيص", []string{access.RoleStaff}))
	require.NoError(t, err)

	assert.Contains(t, resp.RelatedTerms, "الهيئة")
	// The synonym occurs in the top excerpt and gets the related marker.
	assert.Contains(t, resp.Answer, `background-color: lightgreen`)
}

func TestEngine_SwapReplacesSnapshot(t *testing.T) {
	e := buildEngine(t, threeChunkCorpus())
	old := e.Snapshot()

	replacement := buildEngine(t, []store.Chunk{{
		ID:    "X::art1",
		DocID: "X",
		Pages: []int{1},
		Text:  "نص جديد عن الترخيص",
		Roles: []string{access.RoleStaff},
	}})

	swapped := e.Swap(replacement.Snapshot())
	assert.Same(t, old, swapped)

	resp, err := e.Search(context.Background(), NewRequest("الترخيص", []string{access.RoleStaff}))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "X", resp.Results[0].DocID)
}

func TestExcerpt_WindowAndNewlines(t *testing.T) {
	long := strings.Repeat("كلمة ", 200) // well past the window
	got := excerpt("سطر أول\nسطر ثان")
	assert.Equal(t, "سطر أول سطر ثان", got)

	assert.LessOrEqual(t, len([]rune(excerpt(long))), ExcerptRunes)
}
