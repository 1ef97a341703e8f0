package services

import (
	"math"
	"strings"
	"unicode"

	"github.com/quarry-dev/quarry/internal/core/domain"
)

// stopwords are dropped from queries and content before scoring.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true,
	"have": true, "this": true, "that": true, "with": true, "from": true,
	"they": true, "will": true, "what": true, "when": true, "where": true,
	"which": true, "their": true, "there": true, "would": true, "could": true,
	"should": true, "about": true, "into": true, "than": true, "then": true,
	"them": true, "these": true, "some": true, "such": true, "does": true,
	"how": true, "why": true, "who": true,
}

// summaryMarkers flag a query as asking for an overview.
var summaryMarkers = []string{"summary", "summarize", "overview", "describe", "explain", "what is"}

// codeMarkers flag a query as asking about code constructs.
var codeMarkers = []string{"function", "class", "method", "implementation", "interface", "type"}

// tokenize lowercases s, splits on non-word runes and drops short tokens
// and stopwords.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 || stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// termVector counts token occurrences.
func termVector(tokens []string) map[string]float64 {
	vec := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		vec[t]++
	}
	return vec
}

// cosine computes the cosine similarity of two term vectors. Returns 0
// when either vector has zero magnitude.
func cosine(a, b map[string]float64) float64 {
	var dot, magA, magB float64
	for term, wa := range a {
		magA += wa * wa
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		magB += wb * wb
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// detectShape classifies a query by substring heuristics.
func detectShape(query string) domain.QueryShape {
	lower := strings.ToLower(query)
	for _, m := range summaryMarkers {
		if strings.Contains(lower, m) {
			return domain.QuerySummary
		}
	}
	for _, m := range codeMarkers {
		if strings.Contains(lower, m) {
			return domain.QueryCode
		}
	}
	return domain.QueryPlain
}
