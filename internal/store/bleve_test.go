package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qanoonhq/qanoon/internal/arabic"
)

func testCorpus() *Corpus {
	texts := []string{
		"يشترط الحصول على ترخيص من الهيئة قبل تشغيل أي منشأة نووية",
		"يلتزم المشغل بالتعويض عن الضرر النووي الذي يقع داخل المنشأة",
		"تحدد اللائحة رسوم تجديد السجل التجاري",
	}
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{
			ID:       "law::art" + string(rune('1'+i)),
			DocID:    "law",
			Text:     text,
			NormText: arabic.Normalize(text),
		}
	}
	return NewCorpus(chunks)
}

func TestLexicalIndex_ScoreAll(t *testing.T) {
	idx, err := NewLexicalIndex("")
	require.NoError(t, err)
	defer idx.Close()

	corpus := testCorpus()
	require.NoError(t, idx.IndexCorpus(context.Background(), corpus))

	scores, err := idx.ScoreAll(context.Background(), "ترخيص المنشأة النووية", corpus.Len())
	require.NoError(t, err)
	require.Len(t, scores, corpus.Len())

	// The licensing article matches most terms; the commercial registry
	// article matches none.
	assert.Greater(t, scores[0], scores[2])
	assert.Zero(t, scores[2])
}

func TestLexicalIndex_DiacriticsMatchBareForm(t *testing.T) {
	idx, err := NewLexicalIndex("")
	require.NoError(t, err)
	defer idx.Close()

	corpus := testCorpus()
	require.NoError(t, idx.IndexCorpus(context.Background(), corpus))

	// The query carries diacritics; the indexed text does not.
	scores, err := idx.ScoreAll(context.Background(), "تَرْخِيصٌ", corpus.Len())
	require.NoError(t, err)
	assert.Positive(t, scores[0])
}

func TestLexicalIndex_LatinQueryMatches(t *testing.T) {
	idx, err := NewLexicalIndex("")
	require.NoError(t, err)
	defer idx.Close()

	text := "restricted وثيقة داخلية عن البروتوكول"
	chunks := []Chunk{{ID: "p::art1", DocID: "p", Text: text, NormText: arabic.Normalize(text)}}
	require.NoError(t, idx.IndexCorpus(context.Background(), NewCorpus(chunks)))

	// Mixed-script corpora answer Latin-only queries, case folded.
	for _, query := range []string{"restricted", "Restricted"} {
		scores, err := idx.ScoreAll(context.Background(), query, 1)
		require.NoError(t, err)
		assert.Positive(t, scores[0], "query %q", query)
	}
}

func TestLexicalIndex_EmptyQueryAllZeros(t *testing.T) {
	idx, err := NewLexicalIndex("")
	require.NoError(t, err)
	defer idx.Close()

	corpus := testCorpus()
	require.NoError(t, idx.IndexCorpus(context.Background(), corpus))

	for _, query := range []string{"", "   "} {
		scores, err := idx.ScoreAll(context.Background(), query, corpus.Len())
		require.NoError(t, err)
		require.Len(t, scores, corpus.Len())
		for _, s := range scores {
			assert.Zero(t, s)
		}
	}
}

func TestLexicalIndex_ClosedErrors(t *testing.T) {
	idx, err := NewLexicalIndex("")
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	_, err = idx.ScoreAll(context.Background(), "ترخيص", 1)
	assert.Error(t, err)
	// Close is idempotent.
	assert.NoError(t, idx.Close())
}

func TestArabicTokenizer(t *testing.T) {
	tok := &arabicTokenizer{}

	stream := tok.Tokenize([]byte("الترخيص النَوَوِي رقم ٥"))

	require.Len(t, stream, 4)
	assert.Equal(t, "الترخيص", string(stream[0].Term))
	assert.Equal(t, "النووي", string(stream[1].Term))
	assert.Equal(t, "5", string(stream[3].Term))
}
