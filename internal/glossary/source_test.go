package glossary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileSource_MissingFileIsEmpty(t *testing.T) {
	src, err := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, src.Entries())
}

func TestNewFileSource_ParsesAndSorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	content := "" +
		"ترخيص:\n" +
		"  - رخصة\n" +
		"  - license\n" +
		"التعويض:\n" +
		"  - compensation\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src, err := NewFileSource(path)
	require.NoError(t, err)

	entries := src.Entries()
	require.Len(t, entries, 2)
	// Sorted by term for determinism.
	assert.Equal(t, "التعويض", entries[0].Term)
	assert.Equal(t, []string{"compensation"}, entries[0].Synonyms)
	assert.Equal(t, []string{"رخصة", "license"}, entries[1].Synonyms)
}

func TestNewFileSource_MalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[:bad yaml"), 0o644))

	_, err := NewFileSource(path)
	assert.Error(t, err)
}
