package domain

// SearchResult is one matching document: the top-scoring blocks plus their
// structural context, ranked against other documents by Score.
type SearchResult struct {
	// Document is the path of the matching file.
	Document string `json:"document"`

	// Blocks is the ordered sequence of contextually relevant blocks.
	Blocks []*Block `json:"blocks"`

	// Score is the top block's score, used to rank documents.
	Score float64 `json:"score"`
}

// ProjectSummaryDocument is the pseudo-document path returned when a
// summary-style query matches no blocks but an overall project summary exists.
const ProjectSummaryDocument = "PROJECT_SUMMARY"

// QueryShape classifies a free-text query by substring heuristics.
// The shape drives flat score bonuses during block scoring.
type QueryShape int

const (
	// QueryPlain is a query with no recognised shape.
	QueryPlain QueryShape = iota

	// QuerySummary asks for an overview ("summary", "what is", "explain").
	QuerySummary

	// QueryCode asks about code constructs ("function", "class", "interface").
	QueryCode
)
