package exprtree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestTokenize(t *testing.T) {
	num := func(text string, x float64, pos int) Token {
		return Token{Kind: TokenNumber, Text: text, Num: x, Pos: pos}
	}
	tok := func(kind TokenKind, text string, pos int) Token {
		return Token{Kind: kind, Text: text, Pos: pos}
	}
	cases := []struct {
		name   string
		src    string
		tokens []Token
	}{
		{"empty", "", nil},
		{"spaces", " \t ", nil},
		{"zero", "0", []Token{num("0", 0, 1)}},
		{"int", "9876543210", []Token{num("9876543210", 9876543210, 1)}},
		{"real", "1.25", []Token{num("1.25", 1.25, 1)}},
		{"leading-dot", ".5", []Token{num(".5", 0.5, 1)}},
		{"trailing-dot", "2.", []Token{num("2.", 2, 1)}},
		{"thousands", "1,000", []Token{num("1000", 1000, 1)}},
		{"ident", "abc", []Token{tok(TokenIdent, "abc", 1)}},
		{"underscore", "_x", []Token{tok(TokenIdent, "_x", 1)}},
		{"unicode", "π", []Token{tok(TokenIdent, "π", 1)}},
		{"num-ident", "2x", []Token{num("2", 2, 1), tok(TokenIdent, "x", 2)}},
		{"ident-num", "x2", []Token{tok(TokenIdent, "x", 1), num("2", 2, 2)}},
		{"space-splits", "1 2", []Token{num("1", 1, 1), num("2", 2, 3)}},
		{"add", "1+0", []Token{num("1", 1, 1), tok(TokenOperator, "+", 2), num("0", 0, 3)}},
		{"all-ops", "a+b-c*d/e%f", []Token{
			tok(TokenIdent, "a", 1), tok(TokenOperator, "+", 2),
			tok(TokenIdent, "b", 3), tok(TokenOperator, "-", 4),
			tok(TokenIdent, "c", 5), tok(TokenOperator, "*", 6),
			tok(TokenIdent, "d", 7), tok(TokenOperator, "/", 8),
			tok(TokenIdent, "e", 9), tok(TokenOperator, "%", 10),
			tok(TokenIdent, "f", 11),
		}},
		{"neg", "-1", []Token{tok(TokenOperator, "-", 1), num("1", 1, 2)}},
		{"parens", "(1)", []Token{tok(TokenOpen, "(", 1), num("1", 1, 2), tok(TokenClose, ")", 3)}},
		{"func", "ABS(-2)", []Token{
			tok(TokenFunc, "ABS", 1), tok(TokenOpen, "(", 4),
			tok(TokenOperator, "-", 5), num("2", 2, 6), tok(TokenClose, ")", 7),
		}},
		{"func-case", "abs(2)", []Token{
			tok(TokenIdent, "abs", 1), tok(TokenOpen, "(", 4), num("2", 2, 5), tok(TokenClose, ")", 6),
		}},
		{"func-args", "MAX(1,2)", []Token{
			tok(TokenFunc, "MAX", 1), tok(TokenOpen, "(", 4), num("1", 1, 5),
			tok(TokenSep, ",", 6), num("2", 2, 7), tok(TokenClose, ")", 8),
		}},
		{"nested-paren-in-call", "MAX((1,000),2)", []Token{
			tok(TokenFunc, "MAX", 1), tok(TokenOpen, "(", 4), tok(TokenOpen, "(", 5),
			num("1000", 1000, 6), tok(TokenClose, ")", 11), tok(TokenSep, ",", 12),
			num("2", 2, 13), tok(TokenClose, ")", 14),
		}},
		{"comma-after-call", "MAX(1)+1,5", []Token{
			tok(TokenFunc, "MAX", 1), tok(TokenOpen, "(", 4), num("1", 1, 5), tok(TokenClose, ")", 6),
			tok(TokenOperator, "+", 7), num("15", 15, 8),
		}},
		{"function-name-as-prefix", "MAXIMUM", []Token{tok(TokenIdent, "MAXIMUM", 1)}},
	}
	reg := StandardRegistry()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Tokenize(c.src, reg)
			if err != nil {
				t.Fatalf("tokenizing %q: %v", c.src, err)
			}
			if diff := cmp.Diff(c.tokens, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("tokenizing %q: (-want +got)\n%s", c.src, diff)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  LexError
	}{
		{"dollar", "$", LexError{Text: "$", Col: 1}},
		{"after-ident", "a$", LexError{Text: "$", Col: 2}},
		{"after-num", "10$", LexError{Text: "$", Col: 3}},
		{"caret", "2^3", LexError{Text: "^", Col: 2}},
		{"semicolon", "MAX(1;2)", LexError{Text: ";", Col: 6}},
		{"dot", ".", LexError{Text: ".", Kind: "number", Col: 1}},
		{"two-dots", "1.2.3", LexError{Text: "1.2.3", Kind: "number", Col: 1}},
		{"dotted-ident", "a.b", LexError{Text: "a.b", Kind: "identifier", Col: 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			toks, err := Tokenize(c.src, nil)
			if err == nil {
				t.Fatalf("tokenizing %q: no error, got %v", c.src, toks)
			}
			var le *LexError
			if !errors.As(err, &le) {
				t.Fatalf("tokenizing %q: wrong error type %T", c.src, err)
			}
			if *le != c.err {
				t.Errorf("tokenizing %q: want %+v, got %+v", c.src, c.err, *le)
			}
			if le.Pos() != c.err.Col {
				t.Errorf("tokenizing %q: Pos() %d, want %d", c.src, le.Pos(), c.err.Col)
			}
		})
	}
}

func TestTokenizeCustomOperator(t *testing.T) {
	reg := DefaultRegistry().With(Operator('^', 30, func(xs []float64) (float64, error) { return 0, nil }))
	toks, err := Tokenize("2^3", reg)
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 3 || toks[1].Kind != TokenOperator || toks[1].Text != "^" {
		t.Errorf("wrong tokens: %v", toks)
	}
	if _, err := Tokenize("2^3", nil); err == nil {
		t.Error("default registry accepted ^")
	}
}

func TestFormatTokensRoundTrip(t *testing.T) {
	cases := []string{
		"3+4*ABS(-2)",
		"2x",
		"x2",
		"a b",
		"1 2",
		"1,000,000+2",
		"MAX(1,2,SUM(a,b))",
		"((1))-(-(2))",
		"PI()*r*r",
		"A+B",
		".5%2.",
		"a .5",
		"MAX .5",
		"PI() .25",
	}
	reg := StandardRegistry()
	text := cmp.Transformer("text", func(toks []Token) []string {
		v := make([]string, len(toks))
		for i, tok := range toks {
			v[i] = tok.Kind.String() + " " + tok.Text
		}
		return v
	})
	for _, src := range cases {
		first, err := Tokenize(src, reg)
		if err != nil {
			t.Errorf("tokenizing %q: %v", src, err)
			continue
		}
		printed := FormatTokens(first)
		second, err := Tokenize(printed, reg)
		if err != nil {
			t.Errorf("re-tokenizing %q (from %q): %v", printed, src, err)
			continue
		}
		if diff := cmp.Diff(first, second, text); diff != "" {
			t.Errorf("round trip of %q through %q: (-first +second)\n%s", src, printed, diff)
		}
	}
}
