package ui

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/qanoonhq/qanoon/internal/search"
)

// DeniedAnswer replaces the answer when every scored result was withheld
// from the requester.
const DeniedAnswer = "لم يتم العثور على نتائج متاحة بناءً على صلاحياتك الحالية."

// excerptPreviewRunes caps the excerpt shown under each citation.
const excerptPreviewRunes = 200

// markRe matches the highlight annotations embedded in excerpts.
var markRe = regexp.MustCompile(`<mark style="background-color: (yellow|lightgreen)" title="[^"]*">(.*?)</mark>`)

// Renderer writes search results to a terminal or pipe.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer creates a renderer for w. Color is used only when w is an
// interactive terminal and not suppressed.
func NewRenderer(w io.Writer, noColor bool) *Renderer {
	if !IsTerminal(w) {
		noColor = true
	}
	return &Renderer{out: w, styles: GetStyles(noColor)}
}

// Render writes the full result block: answer, citations, withheld
// document summary.
func (r *Renderer) Render(resp *search.Response) {
	r.renderAnswer(resp)
	r.renderCitations(resp)
	r.renderHidden(resp)
}

func (r *Renderer) renderAnswer(resp *search.Response) {
	fmt.Fprintln(r.out, r.styles.Header.Render("ANSWER:"))
	if len(resp.Results) == 0 && len(resp.HiddenDocs) > 0 {
		fmt.Fprintln(r.out, r.styles.Warning.Render(DeniedAnswer))
		return
	}
	fmt.Fprintln(r.out, r.styles.Answer.Render(r.colorize(resp.Answer)))
}

func (r *Renderer) renderCitations(resp *search.Response) {
	total := len(resp.Results) + len(resp.HiddenDocs)
	fmt.Fprintf(r.out, "\n%s\n",
		r.styles.Header.Render(fmt.Sprintf("CITATIONS (%d accessible out of %d total):", len(resp.Results), total)))

	for _, c := range resp.Results {
		indicator := ""
		if strings.Contains(strings.ToLower(c.DocID), "restricted") {
			indicator = " " + r.styles.Restricted.Render("[RESTRICTED]")
		}
		fmt.Fprintln(r.out, r.styles.Citation.Render(
			fmt.Sprintf("- %s%s | المادة %s | ص%d-%d | score=%.3f",
				c.DocID, indicator, c.ArticleNo, c.PageStart, c.PageEnd, c.Score)))
		fmt.Fprintf(r.out, "  %s\n", r.styles.Excerpt.Render(preview(r.colorize(c.Excerpt))))
	}
}

func (r *Renderer) renderHidden(resp *search.Response) {
	if len(resp.HiddenDocs) == 0 {
		return
	}
	fmt.Fprintf(r.out, "\n%s\n",
		r.styles.Header.Render(fmt.Sprintf("RESTRICTED DOCUMENTS (%d hidden):", len(resp.HiddenDocs))))
	for _, doc := range resp.HiddenDocs {
		fmt.Fprintln(r.out, r.styles.Citation.Render(
			fmt.Sprintf("- %s %s", doc, r.styles.Restricted.Render("[ACCESS DENIED]"))))
	}
}

// RenderError writes a styled error line.
func (r *Renderer) RenderError(err error) {
	fmt.Fprintln(r.out, r.styles.Restricted.Render("ERROR: ")+err.Error())
}

// colorize converts embedded highlight annotations to terminal styles.
// Literal matches go yellow, related matches green, matching the web
// client's mark colors.
func (r *Renderer) colorize(s string) string {
	return markRe.ReplaceAllStringFunc(s, func(m string) string {
		groups := markRe.FindStringSubmatch(m)
		if groups[1] == "lightgreen" {
			return r.styles.Related.Render(groups[2])
		}
		return r.styles.Literal.Render(groups[2])
	})
}

// preview truncates an excerpt for the citation list. The annotation
// colors are already ANSI by now, so the cut counts visible runes only
// when no escapes are present; styled output accepts the slack.
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptPreviewRunes {
		return s
	}
	return string(runes[:excerptPreviewRunes]) + "..."
}
