package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *MetadataStore {
	t.Helper()
	m, err := OpenMetadataStore(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMetadataStore_RoundTrip(t *testing.T) {
	m := openTestStore(t)
	ctx := context.Background()

	chunks := []Chunk{
		{
			ID:        "law::art1",
			DocID:     "law",
			ArticleNo: "1",
			Pages:     []int{1, 2},
			Text:      "المادة الأولى",
			NormText:  "الماده الاولي",
			Roles:     []string{"staff", "legal", "admin"},
		},
		{
			ID:       "law::art2",
			DocID:    "law",
			Pages:    []int{3},
			Text:     "المادة الثانية",
			NormText: "الماده الثانيه",
			Roles:    []string{"legal"},
		},
	}
	require.NoError(t, m.ReplaceChunks(ctx, chunks))

	got, err := m.LoadChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, chunks, got)
}

func TestMetadataStore_ReplaceDropsOldChunks(t *testing.T) {
	m := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, m.ReplaceChunks(ctx, []Chunk{
		{ID: "old::art1", DocID: "old", Text: "x", NormText: "x", Pages: []int{1}, Roles: []string{"staff"}},
	}))
	require.NoError(t, m.ReplaceChunks(ctx, []Chunk{
		{ID: "new::art1", DocID: "new", Text: "y", NormText: "y", Pages: []int{1}, Roles: []string{"staff"}},
	}))

	got, err := m.LoadChunks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new::art1", got[0].ID)
}

func TestMetadataStore_State(t *testing.T) {
	m := openTestStore(t)
	ctx := context.Background()

	// Missing key is empty, not an error.
	val, err := m.GetState(ctx, "embedder")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, m.SetState(ctx, "embedder", "hash-v1"))
	require.NoError(t, m.SetState(ctx, "embedder", "hash-v2"))

	val, err = m.GetState(ctx, "embedder")
	require.NoError(t, err)
	assert.Equal(t, "hash-v2", val)
}

func TestMetadataStore_ClosedErrors(t *testing.T) {
	m := openTestStore(t)
	require.NoError(t, m.Close())

	_, err := m.LoadChunks(context.Background())
	assert.Error(t, err)
	assert.NoError(t, m.Close())
}
