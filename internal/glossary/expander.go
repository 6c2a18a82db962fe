package glossary

import (
	"strings"
	"unicode/utf8"

	"github.com/qanoonhq/qanoon/internal/arabic"
)

// MaxRelatedTerms caps expansion output. Highlighting cost grows with the
// related-term count, so the expander truncates past this bound.
const MaxRelatedTerms = 50

// minWholeQueryLen is the minimum query length (in runes) before the
// whole-query substring rule kicks in. Short queries would match far too
// many raw strings.
const minWholeQueryLen = 4

// Expander resolves a query to its related-term set by consulting glossary
// sources in order. Stateless apart from the source list; safe for
// concurrent use as long as the sources are.
type Expander struct {
	sources []TermSource
}

// NewExpander builds an expander over the given sources. Sources are
// consulted in order, so earlier sources win dedup ties on output order.
func NewExpander(sources ...TermSource) *Expander {
	return &Expander{sources: sources}
}

// Expand returns the related terms for query. A term already equal, after
// normalization, to a literal query token is excluded: it belongs to the
// literal highlight class, not the related one. Output order is stable
// across calls for the same query and sources.
func (e *Expander) Expand(query string) []string {
	tokens := arabic.Tokenize(query)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = struct{}{}
	}

	wholeQuery := ""
	if utf8.RuneCountInString(query) > minWholeQueryLen {
		wholeQuery = strings.ToLower(strings.TrimSpace(query))
	}

	var related []string
	seen := make(map[string]struct{})

	add := func(term string) {
		if len(related) >= MaxRelatedTerms {
			return
		}
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		// Literal tokens are highlighted as literals, not related.
		if _, literal := tokenSet[arabic.Normalize(term)]; literal {
			return
		}
		seen[term] = struct{}{}
		related = append(related, term)
	}

	for _, src := range e.sources {
		for _, entry := range src.Entries() {
			if !e.matches(entry, tokens, wholeQuery) {
				continue
			}
			// A hit pulls in the whole cluster.
			add(entry.Term)
			for _, syn := range entry.Synonyms {
				add(syn)
			}
			if len(related) >= MaxRelatedTerms {
				return related
			}
		}
	}
	return related
}

// matches applies the inclusion rules to one entry:
// token/term substring either direction, token/synonym substring either
// direction, then the whole-query rule against the raw strings for queries
// past the length floor.
func (e *Expander) matches(entry Entry, tokens []string, wholeQuery string) bool {
	normTerm := arabic.Normalize(entry.Term)
	for _, tok := range tokens {
		if containsEither(normTerm, tok) {
			return true
		}
	}
	for _, syn := range entry.Synonyms {
		normSyn := arabic.Normalize(syn)
		for _, tok := range tokens {
			if containsEither(normSyn, tok) {
				return true
			}
		}
	}
	if wholeQuery != "" {
		if containsEither(strings.ToLower(entry.Term), wholeQuery) {
			return true
		}
		for _, syn := range entry.Synonyms {
			if containsEither(strings.ToLower(syn), wholeQuery) {
				return true
			}
		}
	}
	return false
}

// containsEither reports a non-empty substring relation in either
// direction.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
