// Package arabic provides canonicalization and tokenization for Arabic
// legal text. Every component that compares text (indexing, expansion,
// highlighting) goes through the same Normalize/Tokenize pair so that
// surface variants of the same word agree.
package arabic

import (
	"strings"
	"unicode"
)

// letterFold maps Arabic letter variants to one canonical form each and
// Arabic punctuation to ASCII equivalents.
var letterFold = map[rune]rune{
	'أ': 'ا', // alef with hamza above -> bare alef
	'إ': 'ا', // alef with hamza below -> bare alef
	'آ': 'ا', // alef with madda -> bare alef
	'ى': 'ي', // alef maksura -> yaa
	'ؤ': 'و', // waw with hamza -> waw
	'ئ': 'ي', // yaa with hamza -> yaa
	'،': ',',      // Arabic comma
	'؛': ';',      // Arabic semicolon
	'؟': '?',      // Arabic question mark
	'“': '"',      // left double quote
	'”': '"',      // right double quote
	'’': '\'',     // right single quote
}

const (
	arabicZero    rune = 0x0660 // ٠
	extArabicZero rune = 0x06F0 // ۰
	tatweel       rune = 0x0640 // ـ elongation character
)

// isDiacritic reports whether r is one of the combining marks stripped
// during normalization (U+0617..U+061A, U+064B..U+0652).
func isDiacritic(r rune) bool {
	return (r >= 0x0617 && r <= 0x061A) || (r >= 0x064B && r <= 0x0652)
}

// FoldRune applies per-rune canonicalization and reports whether the rune
// survives it. Diacritics and tatweel are dropped (keep == false); letter
// variants fold, Arabic-Indic digits become ASCII, Latin letters
// lowercase. Rune-level access exists so callers that need to map folded
// positions back to original byte offsets can fold one rune at a time.
func FoldRune(r rune) (folded rune, keep bool) {
	if isDiacritic(r) || r == tatweel {
		return 0, false
	}
	if f, ok := letterFold[r]; ok {
		return f, true
	}
	switch {
	case r >= arabicZero && r <= arabicZero+9:
		return '0' + (r - arabicZero), true
	case r >= extArabicZero && r <= extArabicZero+9:
		return '0' + (r - extArabicZero), true
	}
	return unicode.ToLower(r), true
}

// Normalize canonicalizes Arabic text: diacritics and tatweel are removed,
// hamza-bearing letter variants collapse to their base forms, and Arabic
// punctuation maps to ASCII. Pure and idempotent: Normalize(Normalize(s))
// == Normalize(s).
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isDiacritic(r) || r == tatweel {
			continue
		}
		if folded, ok := letterFold[r]; ok {
			r = folded
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToASCIIDigits converts both Arabic-Indic digit sets (U+0660..U+0669 and
// the extended U+06F0..U+06F9 glyphs) to ASCII 0-9. Every other character
// passes through unchanged.
func ToASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= arabicZero && r <= arabicZero+9:
			return '0' + (r - arabicZero)
		case r >= extArabicZero && r <= extArabicZero+9:
			return '0' + (r - extArabicZero)
		default:
			return r
		}
	}, s)
}

// tokenRune canonicalizes r for token assembly and reports whether it
// belongs in a token: Arabic letters (U+0621..U+064A), ASCII digits, and
// Latin letters, lowercased so both query scripts fold the same way.
// Everything else separates tokens.
func tokenRune(r rune) (rune, bool) {
	switch {
	case r >= 0x0621 && r <= 0x064A:
		return r, true
	case r >= '0' && r <= '9':
		return r, true
	case r >= 'a' && r <= 'z':
		return r, true
	case r >= 'A' && r <= 'Z':
		return r + ('a' - 'A'), true
	}
	return 0, false
}

// Tokenize converts digits, normalizes, then extracts maximal runs of
// Arabic letters, Latin letters, and ASCII digits. Legal corpora mix
// scripts (treaty names, agency acronyms), so Latin runs are kept and
// lowercased. Punctuation and whitespace are discarded. Empty input
// yields no tokens.
func Tokenize(s string) []string {
	s = Normalize(ToASCIIDigits(s))

	var tokens []string
	var current strings.Builder
	for _, r := range s {
		if folded, ok := tokenRune(r); ok {
			current.WriteRune(folded)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
