package exprtree

import (
	"math"
	"sort"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Reducer collapses an ordered list of operands into one number. Reducers
// must not retain or modify xs.
type Reducer func(xs []float64) (float64, error)

// Arity is the number of arguments a function accepts. A negative Max means
// the function is variadic.
type Arity struct {
	Min, Max int
}

// Allows reports whether n arguments satisfy the arity.
func (a Arity) Allows(n int) bool {
	return n >= a.Min && (a.Max < 0 || n <= a.Max)
}

func (a Arity) String() string {
	switch {
	case a.Max < 0:
		return strconv.Itoa(a.Min) + " or more"
	case a.Min == a.Max:
		return strconv.Itoa(a.Min)
	default:
		return strconv.Itoa(a.Min) + " to " + strconv.Itoa(a.Max)
	}
}

// Operation is an infix operator or a named function.
type Operation struct {
	// Name is the operator rune or function name. Lookups are exact and
	// case-sensitive.
	Name string
	// IsFunction distinguishes named functions, called like NAME(a, b), from
	// single-rune infix operators.
	IsFunction bool
	// Arity is the number of arguments a function accepts. Infix operators are
	// always binary in the tree.
	Arity Arity
	// Prec is the binding strength of an infix operator. Higher binds tighter.
	Prec int
	// Right makes an infix operator right-associative.
	Right bool
	// Reduce computes the operation. Infix operator reducers must accept any
	// number of operands from one up, since null operands may be dropped.
	Reduce Reducer
}

func (op *Operation) String() string {
	return op.Name
}

// Operator creates an infix operator.
func Operator(sym rune, prec int, fn Reducer) *Operation {
	return &Operation{
		Name:   string(sym),
		Arity:  Arity{2, 2},
		Prec:   prec,
		Reduce: fn,
	}
}

// Function creates a named function.
func Function(name string, arity Arity, fn Reducer) *Operation {
	return &Operation{
		Name:       name,
		IsFunction: true,
		Arity:      arity,
		Reduce:     fn,
	}
}

// Precedences of the default operators.
const (
	PrecAdditive       = 10
	PrecMultiplicative = 20
)

// Registry is an immutable lookup table of operations. The zero value is not
// useful; create registries with NewRegistry, DefaultRegistry, or With.
type Registry struct {
	ops map[string]*Operation
}

// NewRegistry creates a registry containing ops. Later operations with the
// same name replace earlier ones. Panics if any operation is malformed.
func NewRegistry(ops ...*Operation) *Registry {
	r := &Registry{ops: make(map[string]*Operation, len(ops))}
	for _, op := range ops {
		r.register(op)
	}
	return r
}

// With returns a new registry containing the operations of r with ops
// inserted or replacing same-named entries. r is not modified.
func (r *Registry) With(ops ...*Operation) *Registry {
	n := &Registry{ops: make(map[string]*Operation, len(r.ops)+len(ops))}
	for k, v := range r.ops {
		n.ops[k] = v
	}
	for _, op := range ops {
		n.register(op)
	}
	return n
}

func (r *Registry) register(op *Operation) {
	if op == nil {
		panic("exprtree: nil operation")
	}
	if op.Reduce == nil {
		panic("exprtree: operation " + strconv.Quote(op.Name) + " has no reducer")
	}
	if op.IsFunction {
		if !validFuncName(op.Name) {
			panic("exprtree: invalid function name " + strconv.Quote(op.Name))
		}
		if op.Arity.Min < 0 || op.Arity.Max >= 0 && op.Arity.Max < op.Arity.Min {
			panic("exprtree: invalid arity for " + op.Name)
		}
	} else {
		s, sz := utf8.DecodeRuneInString(op.Name)
		if sz == 0 || sz != len(op.Name) || !validOperatorRune(s) {
			panic("exprtree: invalid operator " + strconv.Quote(op.Name))
		}
	}
	// Copy so that callers can't change a registered operation.
	c := *op
	r.ops[op.Name] = &c
}

func validFuncName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if !isLetter(c) {
			return false
		}
	}
	return true
}

func validOperatorRune(c rune) bool {
	switch {
	case c == utf8.RuneError, isLetter(c), isDigit(c), unicode.IsSpace(c), unicode.IsControl(c):
		return false
	case c == '.', c == ',', c == '(', c == ')':
		return false
	}
	return true
}

// Lookup finds an operation by its exact name.
func (r *Registry) Lookup(name string) (*Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// IsOperatorSymbol reports whether c is the name of a registered infix
// operator.
func (r *Registry) IsOperatorSymbol(c rune) bool {
	var b [utf8.UTFMax]byte
	n := utf8.EncodeRune(b[:], c)
	op, ok := r.ops[string(b[:n])]
	return ok && !op.IsFunction
}

// function gets a registered function, or nil if name is not one.
func (r *Registry) function(name string) *Operation {
	if op := r.ops[name]; op != nil && op.IsFunction {
		return op
	}
	return nil
}

// operator gets a registered infix operator, or nil if name is not one.
func (r *Registry) operator(name string) *Operation {
	if op := r.ops[name]; op != nil && !op.IsFunction {
		return op
	}
	return nil
}

// Names returns the sorted names of all registered operations.
func (r *Registry) Names() []string {
	v := make([]string, 0, len(r.ops))
	for k := range r.ops {
		v = append(v, k)
	}
	sort.Strings(v)
	return v
}

var defaultRegistry = NewRegistry(
	Operator('+', PrecAdditive, sum),
	Operator('-', PrecAdditive, difference),
	Operator('*', PrecMultiplicative, product),
	Operator('/', PrecMultiplicative, quotient),
	Operator('%', PrecMultiplicative, remainder),
)

// DefaultRegistry returns the registry of the built-in operators + - * / and
// %. The result is shared; use With to extend it.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func sum(xs []float64) (float64, error) {
	r := xs[0]
	for _, x := range xs[1:] {
		r += x
	}
	return r, nil
}

func difference(xs []float64) (float64, error) {
	r := xs[0]
	for _, x := range xs[1:] {
		r -= x
	}
	return r, nil
}

func product(xs []float64) (float64, error) {
	r := xs[0]
	for _, x := range xs[1:] {
		r *= x
	}
	return r, nil
}

func quotient(xs []float64) (float64, error) {
	r := xs[0]
	for i, x := range xs[1:] {
		// Guard against invalid divisions, 0/0 or inf/inf.
		if r == 0 && x == 0 || math.IsInf(r, 0) && math.IsInf(x, 0) {
			return 0, &DomainError{X: x, Arg: i + 2, Func: "/"}
		}
		r /= x
	}
	return r, nil
}

func remainder(xs []float64) (float64, error) {
	r := xs[0]
	for i, x := range xs[1:] {
		if x == 0 || math.IsInf(r, 0) {
			return 0, &DomainError{X: x, Arg: i + 2, Func: "%"}
		}
		r = math.Mod(r, x)
	}
	return r, nil
}

// negation is the operation for unary minus. It is not registered, so it
// never conflicts with binary subtraction.
var negation = &Operation{
	Name:       "-",
	IsFunction: true,
	Arity:      Arity{1, 1},
	Reduce: func(xs []float64) (float64, error) {
		return 0 - xs[0], nil
	},
}
