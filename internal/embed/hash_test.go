package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder()
	defer e.Close()

	a, err := e.Embed(context.Background(), "المسؤولية المدنية عن الضرر النووي")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "المسؤولية المدنية عن الضرر النووي")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashEmbedder_SurfaceVariantsAgree(t *testing.T) {
	e := NewHashEmbedder()
	defer e.Close()

	// Diacritics and hamza variants normalize away, so the vectors match.
	a, err := e.Embed(context.Background(), "تَرْخِيصٌ المنشأة")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "ترخيص المنشاة")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashEmbedder_UnitLength(t *testing.T) {
	e := NewHashEmbedder()
	defer e.Close()

	vec, err := e.Embed(context.Background(), "شروط الترخيص النووي")
	require.NoError(t, err)
	require.Len(t, vec, HashDimensions)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
}

func TestHashEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	e := NewHashEmbedder()
	defer e.Close()

	for _, text := range []string{"", "   ", "!!??"} {
		vec, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		require.Len(t, vec, HashDimensions)
		for _, v := range vec {
			assert.Zero(t, v)
		}
	}
}

func TestHashEmbedder_RelatedTextsCloserThanUnrelated(t *testing.T) {
	e := NewHashEmbedder()
	defer e.Close()

	ctx := context.Background()
	query, err := e.Embed(ctx, "التعويض عن الضرر النووي")
	require.NoError(t, err)
	related, err := e.Embed(ctx, "يلتزم المشغل بالتعويض عن الضرر النووي الذي يقع")
	require.NoError(t, err)
	unrelated, err := e.Embed(ctx, "تحدد رسوم تجديد السجل التجاري سنويا")
	require.NoError(t, err)

	assert.Greater(t, Cosine(query, related), Cosine(query, unrelated))
}

func TestHashEmbedder_LatinTextEmbeds(t *testing.T) {
	e := NewHashEmbedder()
	defer e.Close()

	ctx := context.Background()
	vec, err := e.Embed(ctx, "restricted")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)

	// Case folds away, so either capitalization lands on the same vector.
	upper, err := e.Embed(ctx, "Restricted")
	require.NoError(t, err)
	assert.Equal(t, vec, upper)
}

func TestHashEmbedder_ClosedErrors(t *testing.T) {
	e := NewHashEmbedder()
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "ترخيص")
	assert.Error(t, err)
}

func TestHashEmbedder_EmbedBatch(t *testing.T) {
	e := NewHashEmbedder()
	defer e.Close()

	texts := []string{"الترخيص", "التعويض", "المنشأة النووية"}
	got, err := e.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, got, len(texts))

	for i, text := range texts {
		single, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, got[i])
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
}
