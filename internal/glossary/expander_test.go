package glossary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qanoonhq/qanoon/internal/arabic"
)

func testSource() TermSource {
	return NewStaticSource([]Entry{
		{Term: "ترخيص", Synonyms: []string{"التراخيص", "رخصة", "license", "licensing"}},
		{Term: "التعويض", Synonyms: []string{"التعويضات", "compensation"}},
		{Term: "الأمان النووي", Synonyms: []string{"معايير الأمان", "nuclear safety"}},
	})
}

func TestExpand_TokenMatchPullsWholeEntry(t *testing.T) {
	exp := NewExpander(testSource())

	got := exp.Expand("شروط الترخيص")

	// The literal token matches the ترخيص cluster as a substring, which
	// drags in every synonym, including the Latin translations.
	assert.Contains(t, got, "التراخيص")
	assert.Contains(t, got, "رخصة")
	assert.Contains(t, got, "license")
	assert.Contains(t, got, "licensing")
	assert.NotContains(t, got, "compensation")
}

func TestExpand_ExcludesLiteralTokens(t *testing.T) {
	exp := NewExpander(testSource())

	got := exp.Expand("ترخيص")

	// The entry term equals the query token post-normalization, so it is
	// literal, not related. The rest of the cluster still comes through.
	assert.NotContains(t, got, "ترخيص")
	assert.Contains(t, got, "رخصة")
}

func TestExpand_WholeQueryRuleForLatin(t *testing.T) {
	exp := NewExpander(testSource())

	// The Arabic tokenizer drops Latin text entirely; only the
	// whole-query rule can match here.
	got := exp.Expand("licensing")

	assert.Contains(t, got, "ترخيص")
	assert.Contains(t, got, "license")
}

func TestExpand_ShortQueryNoWholeQueryRule(t *testing.T) {
	exp := NewExpander(NewStaticSource([]Entry{
		{Term: "القانون", Synonyms: []string{"law"}},
	}))

	// "law" is under the length floor and produces no Arabic tokens.
	assert.Empty(t, exp.Expand("law"))
}

func TestExpand_EmptySources(t *testing.T) {
	assert.Empty(t, NewExpander().Expand("ترخيص"))
	assert.Empty(t, NewExpander(NewStaticSource(nil)).Expand("ترخيص"))
}

func TestExpand_CapBoundsOutput(t *testing.T) {
	entries := make([]Entry, 0, 40)
	for i := 0; i < 40; i++ {
		entries = append(entries, Entry{
			Term:     fmt.Sprintf("ترخيص%d", i),
			Synonyms: []string{fmt.Sprintf("رخصة%d", i), fmt.Sprintf("اذن%d", i)},
		})
	}
	exp := NewExpander(NewStaticSource(entries))

	got := exp.Expand("ترخيص")

	assert.Len(t, got, MaxRelatedTerms)
}

func TestExpand_Deduplicates(t *testing.T) {
	exp := NewExpander(NewStaticSource([]Entry{
		{Term: "التعويض", Synonyms: []string{"compensation"}},
		{Term: "التعويضات", Synonyms: []string{"compensation"}},
	}))

	got := exp.Expand("تعويض")

	count := 0
	for _, term := range got {
		if term == "compensation" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExpand_DeterministicOrder(t *testing.T) {
	exp := NewExpander(testSource(), Builtin())
	first := exp.Expand("التعويض عن الضرر النووي")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, exp.Expand("التعويض عن الضرر النووي"))
	}
}

func TestBuiltin_CoversCoreConcepts(t *testing.T) {
	exp := NewExpander(Builtin())

	got := exp.Expand("المسؤولية المدنية عن الضرر النووي")
	require.NotEmpty(t, got)
	assert.Contains(t, got, "civil liability")
	assert.Contains(t, got, "nuclear damage")
}

func TestExpand_OutputNeverEqualsLiteralToken(t *testing.T) {
	exp := NewExpander(testSource(), Builtin())
	queries := []string{
		"ترخيص المنشأة النووية",
		"التعويض عن الأضرار",
		"الأمان النووي",
	}
	for _, q := range queries {
		tokens := map[string]struct{}{}
		for _, tok := range arabic.Tokenize(q) {
			tokens[tok] = struct{}{}
		}
		for _, term := range exp.Expand(q) {
			_, clash := tokens[arabic.Normalize(term)]
			assert.False(t, clash, "query %q leaked literal %q into related set", q, term)
		}
	}
}
