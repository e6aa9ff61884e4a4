package permutation

import (
	"fmt"

	"github.com/matthewbaird/permutations/internal/predicate"
)

// ConfigError reports an inconsistency between the parameter and layout
// catalogs that prevents generation.
type ConfigError struct {
	Subject    string // field, output or catalog the problem was found on
	Reason     string
	Suggestion string // "did you mean 'tc_action'?" or ""
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("configuration error: %s: %s", e.Subject, e.Reason)
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}

// SyntaxError reports a display expression that cannot be parsed.
type SyntaxError struct {
	Owner string // field or output name
	Kind  string // "field" or "output"
	Expr  string
	Err   *predicate.ParseError
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s %q: invalid display expression %q: %v", e.Kind, e.Owner, e.Expr, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
