package predicate

// Expr is a node of a parsed display expression.
type Expr interface {
	// Offset is the byte offset of the node's first token.
	Offset() int
	isExpr()
}

// LogicOp joins two expressions.
type LogicOp int

const (
	OpAnd LogicOp = iota
	OpOr
)

func (op LogicOp) String() string {
	if op == OpAnd {
		return "and"
	}
	return "or"
}

// Logic is "x and y" or "x or y".
type Logic struct {
	Op          LogicOp
	Left, Right Expr
	At          int
}

// Not negates X.
type Not struct {
	X  Expr
	At int
}

// CompOp is an equality operator.
type CompOp int

const (
	OpEq CompOp = iota
	OpNeq
)

func (op CompOp) String() string {
	if op == OpEq {
		return "="
	}
	return "!="
}

// Compare is "field = literal" or "field != literal".
type Compare struct {
	Field string
	Op    CompOp
	Value Literal
	At    int
}

// Member is "field [not] in (v1, v2, ...)".
type Member struct {
	Field   string
	Negated bool
	Values  []Literal
	At      int
}

// LitKind classifies a literal.
type LitKind int

const (
	LitString LitKind = iota
	LitInt
	LitBool
	LitNull
)

// Literal is a constant operand. Text holds the unescaped string content, or
// the token text for the other kinds.
type Literal struct {
	Kind LitKind
	Text string
	At   int
}

func (e *Logic) Offset() int   { return e.At }
func (e *Not) Offset() int     { return e.At }
func (e *Compare) Offset() int { return e.At }
func (e *Member) Offset() int  { return e.At }

func (*Logic) isExpr()   {}
func (*Not) isExpr()     {}
func (*Compare) isExpr() {}
func (*Member) isExpr()  {}
