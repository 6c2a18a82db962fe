// Package highlight annotates answer excerpts with inline markers around
// query terms. Two span classes exist: literal (tokens from the query
// itself) and related (glossary expansion output). Matching is
// fold-insensitive so a bare token still hits its diacritic-laden surface
// form, while the marked text keeps the original characters verbatim.
package highlight

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/qanoonhq/qanoon/internal/arabic"
)

// Span classes.
const (
	ClassLiteral = "literal"
	ClassRelated = "related"
)

// Marker colors, per class. The marked-up excerpt is rendered directly in
// the answer view, so the markers are HTML.
const (
	literalColor = "yellow"
	relatedColor = "lightgreen"
)

// fallbackTermBudget bounds the brute-force pass: only this many candidate
// terms are retried with shrinking substrings.
const fallbackTermBudget = 10

// minFallbackRunes is the shortest substring the brute-force pass will
// try. Below this, matches are noise.
const minFallbackRunes = 3

// Span is one matched region of the excerpt, in byte offsets of the
// original text.
type Span struct {
	Start int
	End   int
	Class string
	Term  string // the candidate term that produced the match
}

// Annotate wraps occurrences of the literal and related terms in the
// excerpt with class-coded markers. Text outside matched spans passes
// through untouched, and matched substrings keep their original surface
// form inside the markers. Related terms whose folded form equals a folded
// literal term are dropped from the related pass so one surface form never
// carries both classes.
func Annotate(excerpt string, literal, related []string) string {
	spans := Match(excerpt, literal, related)
	return apply(excerpt, spans)
}

// Match computes the surviving span set without applying markers. Exposed
// for callers that render spans themselves (the terminal UI colors them
// instead of emitting HTML).
func Match(excerpt string, literal, related []string) []Span {
	if excerpt == "" {
		return nil
	}
	folded := foldText(excerpt)

	literal = cleanTerms(literal)
	related = cleanTerms(related)

	literalFolds := make(map[string]struct{}, len(literal))
	for _, term := range literal {
		literalFolds[foldTerm(term)] = struct{}{}
	}

	var spans []Span
	for _, term := range literal {
		spans = appendOccurrences(spans, folded, term, ClassLiteral)
	}

	literalSpans := len(spans)
	for _, term := range related {
		if _, dup := literalFolds[foldTerm(term)]; dup {
			continue
		}
		spans = appendRelated(spans, literalSpans, folded, term)
	}

	if len(spans) == 0 {
		spans = bruteForce(folded, literal, related)
	}

	return resolveOverlaps(spans)
}

// cleanTerms drops empty and single-rune terms, and for multiword terms
// past 4 runes also emits each word longer than 2 runes, so a compound
// phrase still highlights when only one of its words appears.
func cleanTerms(terms []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(terms))
	add := func(t string) {
		t = strings.TrimSpace(t)
		if utf8.RuneCountInString(t) <= 1 {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, term := range terms {
		add(term)
		if utf8.RuneCountInString(term) > 4 && strings.ContainsRune(strings.TrimSpace(term), ' ') {
			for _, word := range strings.Fields(term) {
				if utf8.RuneCountInString(word) > 2 {
					add(word)
				}
			}
		}
	}
	return out
}

// foldedText is a canonicalized copy of the excerpt with a position map
// back to the original byte offsets.
type foldedText struct {
	text string
	// starts[i] and ends[i] are the original byte range of the rune that
	// produced folded rune i. ends includes trailing combining marks so a
	// span never cuts a mark off its base letter.
	starts []int
	ends   []int
	// runeAt maps folded byte offsets to folded rune indexes.
	runeAt map[int]int
	orig   string
}

func foldText(s string) *foldedText {
	ft := &foldedText{orig: s, runeAt: make(map[int]int)}
	var b strings.Builder
	b.Grow(len(s))
	for off, r := range s {
		folded, keep := arabic.FoldRune(r)
		if !keep {
			// Dropped marks extend the previous rune's span.
			if n := len(ft.ends); n > 0 && ft.ends[n-1] == off {
				ft.ends[n-1] = off + utf8.RuneLen(r)
			}
			continue
		}
		ft.runeAt[b.Len()] = len(ft.starts)
		ft.starts = append(ft.starts, off)
		ft.ends = append(ft.ends, off+utf8.RuneLen(r))
		b.WriteRune(folded)
	}
	ft.text = b.String()
	return ft
}

// find locates the folded term in the folded text starting at folded byte
// offset from, returning the original byte span or ok == false.
func (ft *foldedText) find(foldedTerm string, from int) (start, end int, next int, ok bool) {
	idx := strings.Index(ft.text[from:], foldedTerm)
	if idx < 0 {
		return 0, 0, 0, false
	}
	idx += from
	firstRune, okStart := ft.runeAt[idx]
	lastByte := idx + len(foldedTerm)
	if !okStart {
		return 0, 0, 0, false
	}
	lastRune := firstRune + utf8.RuneCountInString(foldedTerm) - 1
	if lastRune >= len(ft.ends) {
		return 0, 0, 0, false
	}
	return ft.starts[firstRune], ft.ends[lastRune], lastByte, true
}

func foldTerm(term string) string {
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		if folded, keep := arabic.FoldRune(r); keep {
			b.WriteRune(folded)
		}
	}
	return b.String()
}

// appendOccurrences records every occurrence of term in the folded text.
func appendOccurrences(spans []Span, ft *foldedText, term, class string) []Span {
	foldedTerm := foldTerm(term)
	if foldedTerm == "" {
		return spans
	}
	for from := 0; ; {
		start, end, next, ok := ft.find(foldedTerm, from)
		if !ok {
			break
		}
		spans = append(spans, Span{Start: start, End: end, Class: class, Term: term})
		from = next
	}
	return spans
}

// appendRelated records occurrences of a related term that do not overlap
// any literal span already recorded (the first literalCount entries).
func appendRelated(spans []Span, literalCount int, ft *foldedText, term string) []Span {
	foldedTerm := foldTerm(term)
	if foldedTerm == "" {
		return spans
	}
	for from := 0; ; {
		start, end, next, ok := ft.find(foldedTerm, from)
		if !ok {
			break
		}
		from = next
		clash := false
		for i := 0; i < literalCount; i++ {
			if start < spans[i].End && spans[i].Start < end {
				clash = true
				break
			}
		}
		if clash {
			continue
		}
		spans = append(spans, Span{Start: start, End: end, Class: ClassRelated, Term: term})
	}
	return spans
}

// bruteForce is the last-resort pass: when no term matched whole, retry a
// bounded prefix of the candidate list with progressively shorter
// substrings until something sticks. Best effort only; returns at the
// first hit per term.
func bruteForce(ft *foldedText, literal, related []string) []Span {
	type candidate struct {
		term  string
		class string
	}
	var candidates []candidate
	for _, t := range literal {
		candidates = append(candidates, candidate{t, ClassLiteral})
	}
	for _, t := range related {
		candidates = append(candidates, candidate{t, ClassRelated})
	}
	if len(candidates) > fallbackTermBudget {
		candidates = candidates[:fallbackTermBudget]
	}

	var spans []Span
	for _, c := range candidates {
		folded := []rune(foldTerm(c.term))
		for n := len(folded); n >= minFallbackRunes; n-- {
			sub := string(folded[:n])
			if start, end, _, ok := ft.find(sub, 0); ok {
				spans = append(spans, Span{Start: start, End: end, Class: c.class, Term: c.term})
				break
			}
		}
	}
	return spans
}

// resolveOverlaps keeps the longest spans first, discarding any span that
// overlaps one already kept, then returns the survivors in position order.
func resolveOverlaps(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, lj := ordered[i].End-ordered[i].Start, ordered[j].End-ordered[j].Start
		if li != lj {
			return li > lj
		}
		return ordered[i].Start < ordered[j].Start
	})

	var kept []Span
	for _, s := range ordered {
		clash := false
		for _, k := range kept {
			if s.Start < k.End && k.Start < s.End {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, s)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// apply inserts markers in reverse position order so earlier insertions
// never shift later offsets.
func apply(excerpt string, spans []Span) string {
	out := excerpt
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		color := literalColor
		if s.Class == ClassRelated {
			color = relatedColor
		}
		matched := out[s.Start:s.End]
		marked := fmt.Sprintf(`<mark style="background-color: %s" title="%s">%s</mark>`, color, s.Term, matched)
		out = out[:s.Start] + marked + out[s.End:]
	}
	return out
}
