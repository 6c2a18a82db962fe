// Package search runs the hybrid ranking pipeline: fuse BM25 and dense
// similarity scores over the corpus, filter by requester roles, highlight
// query terms in the surviving excerpts, and assemble cited answers.
package search

// Default request parameters.
const (
	DefaultTopK     = 5
	DefaultLexicalK = 50
	DefaultVectorK  = 50
	DefaultAlpha    = 0.7
)

// FallbackAnswer is returned when filtering leaves no results.
const FallbackAnswer = "لم يتم العثور على نتيجة ذات صلة مع الاستشهاد."

// ExcerptRunes caps the excerpt window taken from a chunk's text.
const ExcerptRunes = 400

// Request is one search invocation. Zero values for the tuning fields are
// not defaulted by the engine; use NewRequest and adjust.
type Request struct {
	// Query is the user's question, any script.
	Query string `json:"query"`

	// Roles is the requester's declared role set, straight from the auth
	// layer.
	Roles []string `json:"roles"`

	// TopK caps the result count after filtering.
	TopK int `json:"topk"`

	// LexicalK is the BM25 candidate window.
	LexicalK int `json:"lexical_k"`

	// VectorK is the dense candidate window.
	VectorK int `json:"vector_k"`

	// Alpha weights dense against lexical in fusion, in [0,1]. Higher
	// leans dense.
	Alpha float64 `json:"alpha"`
}

// NewRequest builds a request with the default tuning parameters.
func NewRequest(query string, roles []string) Request {
	return Request{
		Query:    query,
		Roles:    roles,
		TopK:     DefaultTopK,
		LexicalK: DefaultLexicalK,
		VectorK:  DefaultVectorK,
		Alpha:    DefaultAlpha,
	}
}

// Citation is one ranked, access-cleared result.
type Citation struct {
	Rank      int     `json:"rank"`
	DocID     string  `json:"doc_id"`
	ArticleNo string  `json:"article_no"`
	PageStart int     `json:"page_start"`
	PageEnd   int     `json:"page_end"`
	Score     float64 `json:"score"`

	// Excerpt is the annotated chunk excerpt; highlight markers are
	// embedded HTML.
	Excerpt string `json:"excerpt"`
}

// Response is the assembled search output.
type Response struct {
	// Answer is the top citation's annotated excerpt, or the fixed
	// fallback string when Results is empty.
	Answer string `json:"answer"`

	// Results is ordered by fused score, capped at the request's TopK.
	Results []Citation `json:"results"`

	// RelatedTerms is the glossary expansion used for highlighting.
	RelatedTerms []string `json:"related_terms,omitempty"`

	// HiddenDocs names documents that scored but were withheld by the
	// access filter, deduplicated. The CLI surfaces the count.
	HiddenDocs []string `json:"-"`
}
