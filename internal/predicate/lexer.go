package predicate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// mark is a position in the source.
type mark struct {
	pos  int // byte offset
	line int // 1-based
	col  int // 1-based, in runes
}

// Lexer tokenizes display expression source text.
type Lexer struct {
	src    string
	at     mark
	tokens []Token
	errors []*ParseError
}

// NewLexer creates a lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{src: input, at: mark{line: 1, col: 1}}
}

// punctuation is matched by prefix, so two-character forms come first.
var punctuation = []struct {
	text string
	typ  TokenType
}{
	{"!=", TokenNEQ},
	{"<>", TokenNEQ},
	{"==", TokenEQ},
	{"=", TokenEQ},
	{",", TokenComma},
	{"(", TokenLParen},
	{")", TokenRParen},
	{"[", TokenLBrack},
	{"]", TokenRBrack},
}

// Tokenize scans the whole input. The returned slice always ends with a
// TokenEOF; lexical errors do not stop the scan.
func (l *Lexer) Tokenize() ([]Token, []*ParseError) {
	for {
		l.skipSpace()
		tok := l.scan()
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEOF {
			return l.tokens, l.errors
		}
	}
}

func (l *Lexer) eof() bool { return l.at.pos >= len(l.src) }

// lookahead returns the rune n bytes past the cursor, or 0 past the end.
func (l *Lexer) lookahead(n int) rune {
	if l.at.pos+n >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.at.pos+n:])
	return r
}

// step consumes one rune and keeps line and column current.
func (l *Lexer) step() rune {
	if l.eof() {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.at.pos:])
	l.at.pos += size
	l.at.col++
	if r == '\n' {
		l.at.line++
		l.at.col = 1
	}
	return r
}

func (l *Lexer) skipSpace() {
	for !l.eof() && unicode.IsSpace(l.lookahead(0)) {
		l.step()
	}
}

func (l *Lexer) emit(t TokenType, lit string, from mark) Token {
	return Token{Type: t, Literal: lit, Pos: from.pos, Line: from.line, Col: from.col}
}

func (l *Lexer) fail(msg string, from mark) {
	l.errors = append(l.errors, &ParseError{Message: msg, Line: from.line, Col: from.col, Pos: from.pos})
}

func (l *Lexer) scan() Token {
	from := l.at
	if l.eof() {
		return l.emit(TokenEOF, "", from)
	}

	r := l.lookahead(0)
	switch {
	case r == '"' || r == '\'':
		return l.scanString(from)
	case isDigit(r), r == '-' && isDigit(l.lookahead(1)):
		return l.scanInt(from)
	case r == '_' || unicode.IsLetter(r):
		return l.scanWord(from)
	}

	rest := l.src[from.pos:]
	for _, p := range punctuation {
		if strings.HasPrefix(rest, p.text) {
			for range p.text {
				l.step()
			}
			return l.emit(p.typ, p.text, from)
		}
	}

	l.step()
	l.fail("unexpected character '"+string(r)+"'", from)
	return l.emit(TokenIdent, string(r), from)
}

// scanString decodes a single- or double-quoted literal. \n, \t, \\ and both
// quote characters are escapes; any other backslash is kept as written.
func (l *Lexer) scanString(from mark) Token {
	quote := l.step()
	var sb strings.Builder
	for !l.eof() {
		r := l.step()
		switch {
		case r == quote:
			return l.emit(TokenString, sb.String(), from)
		case r != '\\':
			sb.WriteRune(r)
			continue
		}
		esc := l.step()
		switch esc {
		case 'n':
			sb.WriteRune('\n')
		case 't':
			sb.WriteRune('\t')
		case '\\', '"', '\'':
			sb.WriteRune(esc)
		default:
			sb.WriteRune('\\')
			sb.WriteRune(esc)
		}
	}
	l.fail("unterminated string", from)
	return l.emit(TokenString, sb.String(), from)
}

func (l *Lexer) scanInt(from mark) Token {
	l.step() // sign or first digit
	for isDigit(l.lookahead(0)) {
		l.step()
	}
	return l.emit(TokenInt, l.src[from.pos:l.at.pos], from)
}

func (l *Lexer) scanWord(from mark) Token {
	for r := l.lookahead(0); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r); r = l.lookahead(0) {
		l.step()
	}
	word := l.src[from.pos:l.at.pos]
	return l.emit(LookupKeyword(word), word, from)
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }
