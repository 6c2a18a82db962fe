// Package ingest turns extracted legal documents into the chunk corpus
// and builds the search indexes over it. Input is page-structured text
// (one JSON file per document); PDF extraction happens upstream.
package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/qanoonhq/qanoon/internal/arabic"

	"github.com/qanoonhq/qanoon/internal/store"
)

// Page is one page of extracted document text.
type Page struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// ordinalUnits are the feminine ordinal words one through nine as they
// appear in compound headings, normalized. "الحادية" only occurs in
// compounds; articles numbered one spell "الاولي".
var ordinalUnits = []struct {
	word string
	n    int
}{
	{"الحادية", 1}, {"الثانية", 2}, {"الثالثة", 3}, {"الرابعة", 4},
	{"الخامسة", 5}, {"السادسة", 6}, {"السابعة", 7}, {"الثامنة", 8},
	{"التاسعة", 9},
}

// articleOrdinals maps spelled-out article headings ("الحادية والعشرون")
// to numerals. Older regulations write ordinals out up to thirty; longer
// systems switch to digits.
var articleOrdinals = buildArticleOrdinals()

func buildArticleOrdinals() map[string]int {
	m := map[string]int{
		"الاولي":   1,
		"العاشرة":  10,
		"العشرون":  20,
		"الثلاثون": 30,
	}
	for _, u := range ordinalUnits {
		if u.n > 1 {
			m[u.word] = u.n
		}
		m[u.word+" عشرة"] = 10 + u.n
		m[u.word+" والعشرون"] = 20 + u.n
	}
	return m
}

// ordinalPattern renders the ordinal vocabulary as a regexp alternation
// over raw text: alef and yaa expand to their hamza/maksura variant
// classes, inner spaces to whitespace runs. Compounds sort before their
// head word so "الثانية عشرة" wins over "الثانية".
func ordinalPattern() string {
	words := make([]string, 0, len(articleOrdinals))
	for w := range articleOrdinals {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	for i, w := range words {
		w = strings.ReplaceAll(w, "ا", "[اأإآ]")
		w = strings.ReplaceAll(w, "ي", "[يى]")
		w = strings.ReplaceAll(w, " ", `\s+`)
		words[i] = w
	}
	return strings.Join(words, "|")
}

// articleRe matches article headings at line starts: "المادة ٥", the bare
// "مادة 12" form in either digit script, and spelled-out ordinals
// ("المادة الحادية والعشرون").
var articleRe = regexp.MustCompile(
	`(?m)^\s*(?:المادة|مادة)\s*(?:([0-9\x{0660}-\x{0669}\x{06F0}-\x{06F9}]+)|(` + ordinalPattern() + `))`)

// articleSpan is one segmented article before chunk assembly.
type articleSpan struct {
	ArticleNo string
	Text      string
}

// splitArticles segments a document's full text on article headings. Text
// with no headings stays one span with an empty article number (preambles
// and annexes).
func splitArticles(fullText string) []articleSpan {
	matches := articleRe.FindAllStringSubmatchIndex(fullText, -1)
	if len(matches) == 0 {
		return []articleSpan{{ArticleNo: "", Text: fullText}}
	}

	spans := make([]articleSpan, 0, len(matches)+1)
	if lead := strings.TrimSpace(fullText[:matches[0][0]]); lead != "" {
		spans = append(spans, articleSpan{ArticleNo: "", Text: lead})
	}
	for i, m := range matches {
		start := m[0]
		end := len(fullText)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		spans = append(spans, articleSpan{
			ArticleNo: headingNumber(fullText, m),
			Text:      strings.TrimSpace(fullText[start:end]),
		})
	}
	return spans
}

// headingNumber extracts the article number from a heading match: digit
// captures convert script, word captures go through the ordinal table.
func headingNumber(fullText string, m []int) string {
	if m[2] >= 0 {
		return arabic.ToASCIIDigits(fullText[m[2]:m[3]])
	}
	word := strings.Join(strings.Fields(arabic.Normalize(fullText[m[4]:m[5]])), " ")
	if n, ok := articleOrdinals[word]; ok {
		return strconv.Itoa(n)
	}
	return ""
}

// probeRunes is how much of an article's normalized head is searched for
// in each page to locate the article's page range.
const probeRunes = 50

// mapPages locates an article's page span by probing each page's
// normalized text for the article's normalized head. Unmappable articles
// land on page 1.
func mapPages(articleText string, pages []Page) (int, int) {
	head := []rune(arabic.Normalize(articleText))
	if len(head) > probeRunes {
		head = head[:probeRunes]
	}
	probe := string(head)

	first, last := 0, 0
	if probe != "" {
		for _, p := range pages {
			if strings.Contains(arabic.Normalize(p.Text), probe) {
				if first == 0 {
					first = p.Page
				}
				last = p.Page
			}
		}
	}
	if first == 0 {
		return 1, 1
	}
	return first, last
}

// pageRange expands a start/end pair into the explicit page list a chunk
// carries.
func pageRange(start, end int) []int {
	if end < start {
		end = start
	}
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// BuildChunks segments one document into role-tagged chunks. Articles
// without a number get their span position as the id suffix, mirroring
// the id scheme for numbered articles.
func BuildChunks(docID string, pages []Page, roles []string) []store.Chunk {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	fullText := strings.Join(parts, "\n")

	spans := splitArticles(fullText)
	chunks := make([]store.Chunk, 0, len(spans))
	for i, span := range spans {
		if strings.TrimSpace(span.Text) == "" {
			continue
		}
		artNo := span.ArticleNo
		idSuffix := artNo
		if idSuffix == "" {
			idSuffix = fmt.Sprintf("%d", i)
		}
		start, end := mapPages(span.Text, pages)
		chunks = append(chunks, store.Chunk{
			ID:        fmt.Sprintf("%s::art%s", docID, idSuffix),
			DocID:     docID,
			ArticleNo: artNo,
			Pages:     pageRange(start, end),
			Text:      span.Text,
			NormText:  arabic.Normalize(span.Text),
			Roles:     roles,
		})
	}
	return chunks
}
