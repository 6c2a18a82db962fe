// Package glossary expands query terms through curated synonym tables.
// Expansion output is a secondary "related" term set, kept distinct from
// the literal query tokens so the highlighter can tag the two classes
// differently.
package glossary

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Entry is one glossary cluster: a canonical term plus its synonyms and
// translations. Synonyms are not unique across entries and their order
// carries no meaning.
type Entry struct {
	Term     string
	Synonyms []string
}

// TermSource supplies glossary entries. The expander consults a list of
// sources so the file-based glossary and the built-in concept table stay
// independently swappable.
type TermSource interface {
	Entries() []Entry
}

// StaticSource serves a fixed entry list.
type StaticSource struct {
	entries []Entry
}

// NewStaticSource creates a source over a fixed entry list.
func NewStaticSource(entries []Entry) *StaticSource {
	return &StaticSource{entries: entries}
}

// Entries implements TermSource.
func (s *StaticSource) Entries() []Entry {
	return s.entries
}

// FileSource loads a YAML glossary (mapping of term to synonym list).
// A missing file degrades to an empty source: expansion becomes a no-op,
// never an error.
type FileSource struct {
	entries []Entry
}

// NewFileSource reads path and parses it as a YAML map of term ->
// synonyms. Only a malformed file is an error; absence is not.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileSource{}, nil
		}
		return nil, fmt.Errorf("read glossary %s: %w", path, err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse glossary %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(raw))
	for term, syns := range raw {
		entries = append(entries, Entry{Term: term, Synonyms: syns})
	}
	// Map iteration order is random; sort for deterministic expansion.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Term < entries[j].Term })

	return &FileSource{entries: entries}, nil
}

// Entries implements TermSource.
func (s *FileSource) Entries() []Entry {
	return s.entries
}

var (
	_ TermSource = (*StaticSource)(nil)
	_ TermSource = (*FileSource)(nil)
)
