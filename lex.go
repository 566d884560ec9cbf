package exprtree

import (
	"strconv"
	"strings"
	"unicode"
)

// Token is a classified lexical unit of an expression.
type Token struct {
	Kind TokenKind
	// Text is the source text of the token.
	Text string
	// Num is the value of a TokenNumber.
	Num float64
	// Pos is the column of the token's first rune, counting from 1.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// TokenKind is the classification of a token.
type TokenKind int8

const (
	tokenNone TokenKind = iota
	// TokenNumber is a numeric literal.
	TokenNumber
	// TokenIdent is a variable name.
	TokenIdent
	// TokenOperator is a registered infix operator.
	TokenOperator
	// TokenFunc is a registered function name.
	TokenFunc
	// TokenOpen is a left parenthesis.
	TokenOpen
	// TokenClose is a right parenthesis.
	TokenClose
	// TokenSep is a comma separating function arguments.
	TokenSep
)

var tokenKindNames = [...]string{
	tokenNone:     "None",
	TokenNumber:   "Number",
	TokenIdent:    "Ident",
	TokenOperator: "Operator",
	TokenFunc:     "Func",
	TokenOpen:     "Open",
	TokenClose:    "Close",
	TokenSep:      "Sep",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isLetter(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

// lexer holds the state of one tokenization.
type lexer struct {
	reg  *Registry
	toks []Token
	// run is the text of the number or identifier being accumulated.
	run strings.Builder
	// kind is the kind of the current run, or tokenNone if there is no run.
	kind TokenKind
	// pos is the column where the current run started.
	pos int
	// calls records, for each open parenthesis, whether it opened a function
	// call's argument list.
	calls []bool
}

// Tokenize splits src into tokens in a single left-to-right pass. A nil reg
// means DefaultRegistry. The only possible error is a *LexError.
//
// Commas are dropped, except directly inside the parentheses of a function
// call, where they separate arguments. Whitespace ends a number or name but
// is otherwise ignored.
func Tokenize(src string, reg *Registry) ([]Token, error) {
	if reg == nil {
		reg = defaultRegistry
	}
	l := lexer{reg: reg}
	col := 0
	for _, c := range src {
		col++
		switch {
		case isDigit(c):
			if l.kind == TokenIdent {
				if err := l.flush(); err != nil {
					return nil, err
				}
			}
			l.add(c, TokenNumber, col)
		case isLetter(c):
			if l.kind == TokenNumber {
				if err := l.flush(); err != nil {
					return nil, err
				}
			}
			l.add(c, TokenIdent, col)
		case c == '.':
			l.add(c, TokenNumber, col)
		case c == ',':
			if len(l.calls) == 0 || !l.calls[len(l.calls)-1] {
				// Thousands separator.
				continue
			}
			if err := l.flush(); err != nil {
				return nil, err
			}
			l.emit(TokenSep, ",", col)
		case c == '(':
			if err := l.flush(); err != nil {
				return nil, err
			}
			n := len(l.toks)
			l.calls = append(l.calls, n > 0 && l.toks[n-1].Kind == TokenFunc)
			l.emit(TokenOpen, "(", col)
		case c == ')':
			if err := l.flush(); err != nil {
				return nil, err
			}
			if len(l.calls) > 0 {
				l.calls = l.calls[:len(l.calls)-1]
			}
			l.emit(TokenClose, ")", col)
		case l.reg.IsOperatorSymbol(c):
			if err := l.flush(); err != nil {
				return nil, err
			}
			l.emit(TokenOperator, string(c), col)
		case unicode.IsSpace(c):
			if err := l.flush(); err != nil {
				return nil, err
			}
		default:
			return nil, &LexError{Text: string(c), Col: col}
		}
	}
	if err := l.flush(); err != nil {
		return nil, err
	}
	return l.toks, nil
}

// add appends c to the current run, starting a run of the given kind if there
// is none.
func (l *lexer) add(c rune, kind TokenKind, col int) {
	if l.kind == tokenNone {
		l.kind = kind
		l.pos = col
	}
	l.run.WriteRune(c)
}

// flush emits the current run, if any, as a token.
func (l *lexer) flush() error {
	if l.kind == tokenNone {
		return nil
	}
	defer l.run.Reset()
	text := l.run.String()
	kind := l.kind
	l.kind = tokenNone
	switch kind {
	case TokenNumber:
		x, err := strconv.ParseFloat(text, 64)
		if err != nil && !isRangeErr(err) {
			return &LexError{Text: text, Kind: "number", Col: l.pos}
		}
		l.toks = append(l.toks, Token{Kind: TokenNumber, Text: text, Num: x, Pos: l.pos})
	case TokenIdent:
		if strings.ContainsRune(text, '.') {
			return &LexError{Text: text, Kind: "identifier", Col: l.pos}
		}
		if l.reg.function(text) != nil {
			kind = TokenFunc
		}
		l.emit(kind, text, l.pos)
	default:
		panic("exprtree: flushed run of kind " + kind.String())
	}
	return nil
}

// isRangeErr reports whether err from strconv.ParseFloat only means the value
// overflowed to infinity or underflowed to zero.
func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func (l *lexer) emit(kind TokenKind, text string, col int) {
	l.toks = append(l.toks, Token{Kind: kind, Text: text, Pos: col})
}

// FormatTokens writes tokens back out as expression text. Tokenizing the
// result produces tokens of the same kinds and texts as toks, although
// positions may differ.
func FormatTokens(toks []Token) string {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 && needsSpace(toks[i-1], tok) {
			// Adjacent runs would merge into one token otherwise.
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

func needsSpace(prev, next Token) bool {
	run := func(k TokenKind) bool {
		return k == TokenNumber || k == TokenIdent || k == TokenFunc
	}
	if !run(prev.Kind) || !run(next.Kind) {
		return false
	}
	if prev.Kind != TokenNumber && strings.HasPrefix(next.Text, ".") {
		// A name absorbs a following '.'.
		return true
	}
	// A letter after a number or a digit after a name starts a new run on its
	// own; only runs of the same class merge.
	return (prev.Kind == TokenNumber) == (next.Kind == TokenNumber)
}

// LexError indicates an invalid character or run. It implements InputError.
type LexError struct {
	// Text is the unrecognized character or the invalid run.
	Text string
	// Kind is "number" or "identifier" if a complete run was invalid, or the
	// empty string if an unrecognized character was encountered.
	Kind string
	// Col is the column of the offending rune or the start of the invalid run.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid character at " + pos + ": " + strconv.Quote(err.Text)
	}
	return "invalid " + err.Kind + " at " + pos + ": " + strconv.Quote(err.Text)
}

func (err *LexError) Pos() int {
	return err.Col
}
