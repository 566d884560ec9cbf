package exprtree

import (
	"errors"
	"strconv"
)

// Causes of syntax errors. Test for them with errors.Is.
var (
	// ErrUnbalanced means a parenthesis has no partner.
	ErrUnbalanced = errors.New("unbalanced parentheses")
	// ErrMissingOperand means an operator or argument list lacks an operand.
	ErrMissingOperand = errors.New("missing operand")
	// ErrMissingOperator means two terms are adjacent with no operator
	// between them.
	ErrMissingOperator = errors.New("missing operator")
	// ErrNotCalled means a function name is not followed by an argument list.
	ErrNotCalled = errors.New("function name not followed by (")
	// ErrArity means a function call has the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrSeparator means a comma appeared outside of an argument list.
	ErrSeparator = errors.New("separator outside of function call")
	// ErrTooDeep means the expression nests deeper than the parser allows.
	ErrTooDeep = errors.New("expression nested too deeply")
	// ErrEmpty means there is no expression at all.
	ErrEmpty = errors.New("no expression")
)

// SyntaxError is an error indicating a malformed token sequence. It
// implements InputError.
type SyntaxError struct {
	// Col is the column of the token where the error was detected, or one past
	// the end of the input if the input ended early.
	Col int
	// Index is the index of that token in the token list. It equals the
	// number of tokens if the input ended early.
	Index int
	// Token is the text of the offending token, or the empty string at the end
	// of input.
	Token string
	// Err is the cause, one of the Err variables in this package.
	Err error
	// Detail optionally elaborates on the cause.
	Detail string
}

func (err *SyntaxError) Error() string {
	msg := err.Err.Error()
	if err.Detail != "" {
		msg += " (" + err.Detail + ")"
	}
	if err.Token == "" {
		return errpos(err.Col, msg+" at end of input")
	}
	return errpos(err.Col, msg+" at "+strconv.Quote(err.Token))
}

func (err *SyntaxError) Unwrap() error {
	return err.Err
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input text implements InputError.
type InputError interface {
	error
	// Pos returns the column of the rune or token that caused the error.
	Pos() int
}

var (
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*LexError)(nil)
)
