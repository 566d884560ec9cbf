package exprtree

import (
	"math"
	"sort"
	"strconv"
	"unicode/utf8"
)

// Expr = Unary { operator Unary }
// Unary = '-' Unary | '+' Unary | Primary
// Primary = number | name | Call | '(' Expr ')'
// Call = funcname '(' [ Expr { ',' Expr } ] ')'
//
// Binary operators bind by their registered precedence, left to right unless
// registered as right-associative.

// Expr is a parsed expression that can be evaluated many times.
type Expr struct {
	tree Tree
	// names is the sorted list of variable names used in the expression.
	names []string
}

// parsectx holds options for parsing.
type parsectx struct {
	maxdepth int
}

// parser holds the state of one parse.
type parser struct {
	parsectx
	reg   *Registry
	toks  []Token
	i     int
	depth int
	// groups records, for each open parenthesis, whether it opened a function
	// call's argument list.
	groups []bool
	tree   Tree
	names  map[string]bool
}

// lowest is below the precedence of any operator.
const lowest = math.MinInt

// Parse tokenizes and parses src. A nil reg means DefaultRegistry.
func Parse(src string, reg *Registry, opts ...ParseOption) (*Expr, error) {
	if reg == nil {
		reg = defaultRegistry
	}
	toks, err := Tokenize(src, reg)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks, reg, opts...)
}

// ParseTokens builds an expression tree from tokens produced by Tokenize with
// the same registry. A nil reg means DefaultRegistry. The only possible error
// is a *SyntaxError.
func ParseTokens(toks []Token, reg *Registry, opts ...ParseOption) (*Expr, error) {
	if reg == nil {
		reg = defaultRegistry
	}
	p := parser{
		parsectx: parsectx{maxdepth: DefaultMaxDepth},
		reg:      reg,
		toks:     toks,
		tree:     Tree{nodes: make([]node, 0, len(toks))},
		names:    make(map[string]bool),
	}
	for _, opt := range opts {
		p.parsectx = opt.parseOption(p.parsectx)
	}
	if len(toks) == 0 {
		return nil, p.errorAt(ErrEmpty, "")
	}
	root, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	switch tok := p.peek(); tok.Kind {
	case tokenNone:
	case TokenClose:
		return nil, p.errorAt(ErrUnbalanced, "no matching (")
	case TokenSep:
		return nil, p.errorAt(ErrSeparator, "")
	default:
		panic("exprtree: expression ended on " + tok.String())
	}
	p.tree.root = root
	ex := Expr{
		tree:  p.tree,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sort.Strings(ex.names)
	return &ex, nil
}

// peek returns the next token without consuming it. At the end of input, the
// result has kind tokenNone and the column just past the last token.
func (p *parser) peek() Token {
	if p.i < len(p.toks) {
		return p.toks[p.i]
	}
	if len(p.toks) == 0 {
		return Token{Pos: 1}
	}
	last := p.toks[len(p.toks)-1]
	return Token{Pos: last.Pos + utf8.RuneCountInString(last.Text)}
}

// next consumes and returns the next token.
func (p *parser) next() Token {
	tok := p.peek()
	if p.i < len(p.toks) {
		p.i++
	}
	return tok
}

// errorAt creates a syntax error at the next token.
func (p *parser) errorAt(cause error, detail string) *SyntaxError {
	tok := p.peek()
	return &SyntaxError{Col: tok.Pos, Index: p.i, Token: tok.Text, Err: cause, Detail: detail}
}

// enter records one more level of nesting.
func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxdepth {
		return p.errorAt(ErrTooDeep, "limit "+strconv.Itoa(p.maxdepth))
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// parseExpr parses operands joined by operators binding at least as tightly
// as min. It returns before the first token that cannot continue the
// expression.
func (p *parser) parseExpr(min int) (NodeID, error) {
	if err := p.enter(); err != nil {
		return NoNode, err
	}
	defer p.leave()
	lhs, err := p.parseUnary()
	if err != nil {
		return NoNode, err
	}
	for {
		tok := p.peek()
		switch tok.Kind {
		case TokenOperator:
			// handled below
		case tokenNone, TokenClose, TokenSep:
			return lhs, nil
		default:
			return NoNode, p.errorAt(ErrMissingOperator, "")
		}
		op := p.reg.operator(tok.Text)
		if op == nil {
			panic("exprtree: unregistered operator " + strconv.Quote(tok.Text))
		}
		if op.Prec < min {
			return lhs, nil
		}
		p.next()
		up := op.Prec + 1
		if op.Right {
			up = op.Prec
		}
		rhs, err := p.parseExpr(up)
		if err != nil {
			return NoNode, err
		}
		lhs = p.tree.add(Item{Kind: ItemOp, Op: op, Pos: tok.Pos}, lhs, rhs)
	}
}

// parseUnary parses a single operand, including any prefix signs.
func (p *parser) parseUnary() (NodeID, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenNumber:
		p.next()
		return p.tree.add(Item{Kind: ItemNum, Num: tok.Num, Text: tok.Text, Pos: tok.Pos}), nil
	case TokenIdent:
		p.next()
		p.names[tok.Text] = true
		return p.tree.add(Item{Kind: ItemVar, Text: tok.Text, Pos: tok.Pos}), nil
	case TokenFunc:
		p.next()
		return p.parseCall(tok)
	case TokenOpen:
		p.next()
		p.groups = append(p.groups, false)
		n, err := p.parseExpr(lowest)
		if err != nil {
			return NoNode, err
		}
		switch p.peek().Kind {
		case TokenClose:
			p.next()
		case TokenSep:
			return NoNode, p.errorAt(ErrSeparator, "")
		default:
			return NoNode, p.errorAt(ErrUnbalanced, "no matching ) for ( at column "+strconv.Itoa(tok.Pos))
		}
		p.groups = p.groups[:len(p.groups)-1]
		return n, nil
	case TokenOperator:
		switch tok.Text {
		case "-":
			p.next()
			if err := p.enter(); err != nil {
				return NoNode, err
			}
			defer p.leave()
			x, err := p.parseUnary()
			if err != nil {
				return NoNode, err
			}
			return p.tree.add(Item{Kind: ItemOp, Op: negation, Pos: tok.Pos}, x), nil
		case "+":
			p.next()
			if err := p.enter(); err != nil {
				return NoNode, err
			}
			defer p.leave()
			return p.parseUnary()
		}
		return NoNode, p.errorAt(ErrMissingOperand, "before operator")
	case TokenClose:
		if len(p.groups) == 0 {
			return NoNode, p.errorAt(ErrUnbalanced, "no matching (")
		}
		return NoNode, p.errorAt(ErrMissingOperand, "")
	case TokenSep:
		if len(p.groups) == 0 || !p.groups[len(p.groups)-1] {
			return NoNode, p.errorAt(ErrSeparator, "")
		}
		return NoNode, p.errorAt(ErrMissingOperand, "empty argument")
	case tokenNone:
		return NoNode, p.errorAt(ErrMissingOperand, "")
	default:
		panic("exprtree: unknown token: " + tok.String())
	}
}

// parseCall parses the argument list of a call to the function named by tok.
func (p *parser) parseCall(tok Token) (NodeID, error) {
	fn := p.reg.function(tok.Text)
	if fn == nil {
		panic("exprtree: unregistered function " + strconv.Quote(tok.Text))
	}
	at := p.i - 1
	if p.peek().Kind != TokenOpen {
		return NoNode, &SyntaxError{Col: tok.Pos, Index: at, Token: tok.Text, Err: ErrNotCalled}
	}
	p.next()
	if err := p.enter(); err != nil {
		return NoNode, err
	}
	defer p.leave()
	var args []NodeID
	if p.peek().Kind == TokenClose {
		// Niladic call.
		p.next()
	} else {
		p.groups = append(p.groups, true)
		for {
			arg, err := p.parseExpr(lowest)
			if err != nil {
				return NoNode, err
			}
			args = append(args, arg)
			end := p.peek()
			if end.Kind == TokenSep {
				p.next()
				continue
			}
			if end.Kind != TokenClose {
				return NoNode, p.errorAt(ErrUnbalanced, "no matching ) for "+tok.Text+"(")
			}
			p.next()
			break
		}
		p.groups = p.groups[:len(p.groups)-1]
	}
	if !fn.Arity.Allows(len(args)) {
		return NoNode, &SyntaxError{
			Col:    tok.Pos,
			Index:  at,
			Token:  tok.Text,
			Err:    ErrArity,
			Detail: tok.Text + " takes " + fn.Arity.String() + ", got " + strconv.Itoa(len(args)),
		}
	}
	return p.tree.add(Item{Kind: ItemOp, Op: fn, Pos: tok.Pos}, args...), nil
}

// Names returns the sorted names of the variables used in the expression.
func (e *Expr) Names() []string {
	return append([]string(nil), e.names...)
}

// Tree returns the expression tree. The tree must not be modified.
func (e *Expr) Tree() *Tree {
	return &e.tree
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	return e.tree.String()
}
