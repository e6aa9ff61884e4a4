// Package predicate implements the lexer, parser, AST and interpreter for
// layout display expressions such as:
//
//	tc_action in ('Create', 'Update') AND include_tags = true
//
// A display expression decides whether a parameter or output is visible for
// a given set of field assignments.
package predicate

import "strings"

// TokenType identifies the kind of lexical token.
type TokenType int

const (
	// Literals and identifiers
	TokenEOF    TokenType = iota
	TokenIdent            // unquoted identifier (parameter name)
	TokenString           // "quoted string" or 'quoted string'
	TokenInt              // 123, -4
	TokenBool             // true / false
	TokenNull             // null

	// Operators
	TokenEQ    // = or ==
	TokenNEQ   // != or <>
	TokenComma // ,

	// Grouping
	TokenLParen // (
	TokenRParen // )
	TokenLBrack // [
	TokenRBrack // ]

	// Keywords
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
)

var tokenNames = [...]string{
	TokenEOF:    "end of expression",
	TokenIdent:  "identifier",
	TokenString: "string",
	TokenInt:    "integer",
	TokenBool:   "boolean",
	TokenNull:   "null",
	TokenEQ:     "=",
	TokenNEQ:    "!=",
	TokenComma:  ",",
	TokenLParen: "(",
	TokenRParen: ")",
	TokenLBrack: "[",
	TokenRBrack: "]",
	TokenAnd:    "and",
	TokenOr:     "or",
	TokenNot:    "not",
	TokenIn:     "in",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "unknown"
}

// Token represents a single lexical token in a display expression.
type Token struct {
	Type    TokenType
	Literal string // raw text of the token (unescaped for strings)
	Pos     int    // byte offset in source
	Line    int    // 1-based line number
	Col     int    // 1-based column number
}

// Keywords match case-insensitively; true and false share one token type.
var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"true":  TokenBool,
	"false": TokenBool,
	"null":  TokenNull,
}

// LookupKeyword classifies a bare word as a keyword or an identifier.
func LookupKeyword(word string) TokenType {
	tt, ok := keywords[strings.ToLower(word)]
	if !ok {
		tt = TokenIdent
	}
	return tt
}
