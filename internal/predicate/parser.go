package predicate

import "fmt"

// Parser builds an expression tree from a token stream. It stops at the
// first syntax error.
type Parser struct {
	toks []Token
	i    int
	errs []*ParseError
}

// NewParser creates a parser over tokens as produced by Lexer.Tokenize.
func NewParser(tokens []Token) *Parser {
	return &Parser{toks: tokens}
}

// binding strength of the logical operators; and binds tighter than or.
var logicPrec = map[TokenType]struct {
	op   LogicOp
	prec int
}{
	TokenOr:  {OpOr, 1},
	TokenAnd: {OpAnd, 2},
}

// Parse consumes the whole stream and returns the expression. Trailing
// tokens are an error.
func (p *Parser) Parse() (Expr, []*ParseError) {
	if p.cur().Type == TokenEOF {
		p.fail(p.cur(), "empty expression")
		return nil, p.errs
	}
	x := p.binary(1)
	if x == nil {
		return nil, p.errs
	}
	if t := p.cur(); t.Type != TokenEOF {
		p.fail(t, fmt.Sprintf("unexpected %s %q after expression", t.Type, t.Literal))
		return nil, p.errs
	}
	return x, nil
}

func (p *Parser) cur() Token {
	if p.i < len(p.toks) {
		return p.toks[p.i]
	}
	return Token{Type: TokenEOF}
}

func (p *Parser) next() Token {
	t := p.cur()
	if t.Type != TokenEOF {
		p.i++
	}
	return t
}

// accept consumes the current token when it is one of types.
func (p *Parser) accept(types ...TokenType) (Token, bool) {
	t := p.cur()
	for _, want := range types {
		if t.Type == want {
			return p.next(), true
		}
	}
	return t, false
}

func (p *Parser) want(tt TokenType) bool {
	if _, ok := p.accept(tt); ok {
		return true
	}
	p.fail(p.cur(), fmt.Sprintf("expected %s, got %s", tt, p.cur().Type))
	return false
}

func (p *Parser) fail(at Token, msg string) {
	p.errs = append(p.errs, &ParseError{Message: msg, Line: at.Line, Col: at.Col, Pos: at.Pos})
}

// binary parses a chain of logical operators of at least minPrec.
func (p *Parser) binary(minPrec int) Expr {
	left := p.unary()
	for left != nil {
		info, ok := logicPrec[p.cur().Type]
		if !ok || info.prec < minPrec {
			break
		}
		at := p.next().Pos
		right := p.binary(info.prec + 1)
		if right == nil {
			return nil
		}
		left = &Logic{Op: info.op, Left: left, Right: right, At: at}
	}
	return left
}

func (p *Parser) unary() Expr {
	if t, ok := p.accept(TokenNot); ok {
		x := p.unary()
		if x == nil {
			return nil
		}
		return &Not{X: x, At: t.Pos}
	}
	if _, ok := p.accept(TokenLParen); ok {
		x := p.binary(1)
		if x == nil || !p.want(TokenRParen) {
			return nil
		}
		return x
	}
	return p.comparison()
}

func (p *Parser) comparison() Expr {
	field := p.cur()
	if !p.want(TokenIdent) {
		return nil
	}

	_, negated := p.accept(TokenNot)
	if _, ok := p.accept(TokenIn); ok {
		values := p.list()
		if values == nil {
			return nil
		}
		return &Member{Field: field.Literal, Negated: negated, Values: values, At: field.Pos}
	}
	if negated {
		p.fail(p.cur(), fmt.Sprintf("expected in after not, got %s", p.cur().Type))
		return nil
	}

	opTok, ok := p.accept(TokenEQ, TokenNEQ)
	if !ok {
		p.fail(opTok, fmt.Sprintf("expected comparison operator (=, !=, in), got %s", opTok.Type))
		return nil
	}
	op := OpEq
	if opTok.Type == TokenNEQ {
		op = OpNeq
	}
	lit, ok := p.literal()
	if !ok {
		return nil
	}
	return &Compare{Field: field.Literal, Op: op, Value: lit, At: field.Pos}
}

var literalKinds = map[TokenType]LitKind{
	TokenString: LitString,
	TokenInt:    LitInt,
	TokenBool:   LitBool,
	TokenNull:   LitNull,
}

func (p *Parser) literal() (Literal, bool) {
	t := p.cur()
	kind, ok := literalKinds[t.Type]
	if !ok {
		p.fail(t, fmt.Sprintf("expected literal value, got %s", t.Type))
		return Literal{}, false
	}
	p.next()
	return Literal{Kind: kind, Text: t.Literal, At: t.Pos}, true
}

// list reads "(v, ...)" or "[v, ...]". It returns nil after an error.
func (p *Parser) list() []Literal {
	open, ok := p.accept(TokenLParen, TokenLBrack)
	if !ok {
		p.fail(open, fmt.Sprintf("expected ( after in, got %s", open.Type))
		return nil
	}
	closer := TokenRParen
	if open.Type == TokenLBrack {
		closer = TokenRBrack
	}

	var values []Literal
	for {
		lit, ok := p.literal()
		if !ok {
			return nil
		}
		values = append(values, lit)
		if _, more := p.accept(TokenComma); !more {
			break
		}
	}
	if !p.want(closer) {
		return nil
	}
	return values
}
