package predicate

import "fmt"

// ParseError reports a lexical or syntax error at a source position.
type ParseError struct {
	Message    string
	Line       int
	Col        int
	Pos        int
	Suggestion string
}

func (e *ParseError) Error() string {
	return withHint(fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Message), e.Suggestion)
}

// UnknownIdentifierError is returned by a Resolver for a name outside the
// set of known fields.
type UnknownIdentifierError struct {
	Name       string
	Suggestion string
}

func (e *UnknownIdentifierError) Error() string {
	return withHint(fmt.Sprintf("unknown identifier %q", e.Name), e.Suggestion)
}

func withHint(msg, hint string) string {
	if hint == "" {
		return msg
	}
	return msg + " (" + hint + ")"
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i, ca := range ra {
		diag := row[0]
		row[0] = i + 1
		for j, cb := range rb {
			sub := diag
			if ca != cb {
				sub++
			}
			diag = row[j+1]
			row[j+1] = min(row[j+1]+1, row[j]+1, sub)
		}
	}
	return row[len(rb)]
}

// SuggestFrom returns a "did you mean" hint naming the candidate closest to
// input, or "" when none is within maxDist. The earliest candidate wins ties.
func SuggestFrom(input string, candidates []string, maxDist int) string {
	best, bestDist := "", maxDist+1
	for _, c := range candidates {
		if d := Levenshtein(input, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("did you mean '%s'?", best)
}
