package resolver

import (
	"path/filepath"
	"strings"
)

// Match is the outcome of matching a query against a candidate set.
type Match struct {
	Path string
	// Score is the number of query tokens found in the folder's own name.
	// A zero score means the path is only a fallback and should be treated
	// as provisional.
	Score int
	// Exact is set when the match short-circuited: a single-token hit or a
	// hit on every token of a multi-token query.
	Exact bool
}

// Tokenize splits a query on whitespace and lower-cases each token.
func Tokenize(query string) []string {
	tokens := strings.Fields(query)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}
	return tokens
}

// MatchFolder picks the best candidate for query. Candidates are compared
// in the order given; only the final path segment is matched.
//
// The first candidate that contains the single token, or every token of a
// multi-token query, is returned immediately. Otherwise the first candidate
// with the highest token count wins, even when that count is zero.
// ok is false only when candidates is empty.
func MatchFolder(candidates []string, query string) (m Match, ok bool) {
	if len(candidates) == 0 {
		return Match{}, false
	}

	tokens := Tokenize(query)
	scores := make([]int, len(candidates))

	for i, c := range candidates {
		last := strings.ToLower(filepath.Base(c))

		switch {
		case len(tokens) == 1:
			if strings.Contains(last, tokens[0]) {
				return Match{Path: c, Score: 1, Exact: true}, true
			}
		case len(tokens) > 1:
			hits := 0
			for _, t := range tokens {
				if strings.Contains(last, t) {
					hits++
				}
			}
			if hits == len(tokens) {
				return Match{Path: c, Score: hits, Exact: true}, true
			}
			scores[i] = hits
		}
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return Match{Path: candidates[best], Score: scores[best]}, true
}
