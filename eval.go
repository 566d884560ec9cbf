package exprtree

import (
	"strconv"
	"strings"
)

// Vars maps variable names to values. A name that is present with a nil value
// is null: it exists but has no value, and the NullPolicy decides what to do
// with it. A name that is absent is an error.
type Vars map[string]*float64

// Num returns a pointer to x, for building Vars.
func Num(x float64) *float64 {
	return &x
}

// NullPolicy decides how operations treat null operands.
type NullPolicy int8

const (
	// NullAsZero substitutes 0 for null operands.
	NullAsZero NullPolicy = iota
	// DropNull omits null operands from the operation. An operation left with
	// no operands, or a function left with too few, is itself null.
	DropNull
	// ThrowOnNull fails the evaluation with a *NullValueError.
	ThrowOnNull
)

var policyNames = [...]string{
	NullAsZero:  "zero",
	DropNull:    "drop",
	ThrowOnNull: "throw",
}

func (p NullPolicy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return "NullPolicy(" + strconv.Itoa(int(p)) + ")"
	}
	return policyNames[p]
}

// ParseNullPolicy parses the name of a policy: "zero", "drop", or "throw".
func ParseNullPolicy(s string) (NullPolicy, error) {
	for i, n := range policyNames {
		if strings.EqualFold(s, n) {
			return NullPolicy(i), nil
		}
	}
	return 0, &PolicyError{Name: s}
}

// Set implements flag.Value.
func (p *NullPolicy) Set(s string) error {
	v, err := ParseNullPolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p NullPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *NullPolicy) UnmarshalText(text []byte) error {
	return p.Set(string(text))
}

// PolicyError is an error for an unknown null policy name.
type PolicyError struct {
	Name string
}

func (err *PolicyError) Error() string {
	return "unknown null policy " + strconv.Quote(err.Name) + ` (want "zero", "drop", or "throw")`
}

// operand is an evaluated node value.
type operand struct {
	x    float64
	null bool
}

// Eval evaluates the expression with the given variable values. The
// expression is not modified, so Eval may be called concurrently.
//
// If a variable is absent from vars, the result is an
// *UnresolvedVariableError regardless of policy. Null operands are handled
// according to policy; ThrowOnNull produces a *NullValueError. Errors from
// operations, such as *DomainError, abort evaluation.
func (e *Expr) Eval(vars Vars, policy NullPolicy) (float64, error) {
	t := &e.tree
	vals := make([]operand, len(t.nodes))
	var invoc []float64
	// Children precede their parents in the arena, so a forward scan is a
	// post-order walk.
	for i := range t.nodes {
		n := &t.nodes[i]
		switch n.item.Kind {
		case ItemNum:
			vals[i] = operand{x: n.item.Num}
		case ItemVar:
			v, ok := vars[n.item.Text]
			if !ok {
				return 0, &UnresolvedVariableError{Name: n.item.Text, Col: n.item.Pos}
			}
			if v == nil {
				vals[i] = operand{null: true}
			} else {
				vals[i] = operand{x: *v}
			}
		case ItemOp:
			invoc = invoc[:0]
			for k, c := range n.children {
				a := vals[c]
				if !a.null {
					invoc = append(invoc, a.x)
					continue
				}
				switch policy {
				case NullAsZero:
					invoc = append(invoc, 0)
				case DropNull:
					// omit
				case ThrowOnNull:
					return 0, t.nullError(NodeID(i), k)
				default:
					panic("exprtree: invalid null policy " + policy.String())
				}
			}
			op := n.item.Op
			if len(invoc) == 0 && len(n.children) > 0 || op.IsFunction && !op.Arity.Allows(len(invoc)) {
				// Everything was dropped.
				vals[i] = operand{null: true}
				continue
			}
			r, err := op.Reduce(invoc)
			if err != nil {
				return 0, err
			}
			vals[i] = operand{x: r}
		default:
			panic("exprtree: invalid node kind " + n.item.Kind.String())
		}
	}
	if len(vals) == 0 {
		panic("exprtree: Eval of empty tree")
	}
	r := vals[t.root]
	if !r.null {
		return r.x, nil
	}
	if policy == NullAsZero {
		return 0, nil
	}
	// There is no operation left to absorb the null.
	return 0, &NullValueError{Col: t.nodes[t.root].item.Pos, Var: t.nodes[t.root].item.Text}
}

// nullError describes the null child k of the operation node id.
func (t *Tree) nullError(id NodeID, k int) *NullValueError {
	n := &t.nodes[id]
	c := &t.nodes[n.children[k]]
	err := NullValueError{
		Op:   n.item.Op.Name,
		Arg:  k + 1,
		Col:  n.item.Pos,
		Path: t.path(id),
	}
	if c.item.Kind == ItemVar {
		err.Var = c.item.Text
	}
	return &err
}

// EvalString is a shortcut to parse src with the standard registry and
// evaluate it.
func EvalString(src string, vars Vars, policy NullPolicy) (float64, error) {
	a, err := Parse(src, standardRegistry)
	if err != nil {
		return 0, err
	}
	return a.Eval(vars, policy)
}

// UnresolvedVariableError is an error from a lookup for a variable that is
// missing from the evaluation variables.
type UnresolvedVariableError struct {
	// Name is the name that was missing.
	Name string
	// Col is the column where the variable appears.
	Col int
}

func (err *UnresolvedVariableError) Error() string {
	return errpos(err.Col, "undefined variable "+strconv.Quote(err.Name))
}

func (err *UnresolvedVariableError) Pos() int {
	return err.Col
}

// NullValueError is an error for a null operand under ThrowOnNull, or for an
// expression whose entire value is null.
type NullValueError struct {
	// Op is the operation that received the null, or the empty string if the
	// expression's result itself was null.
	Op string
	// Arg is the 1-based index of the null operand.
	Arg int
	// Var is the null variable, if the operand was a variable.
	Var string
	// Col is the column of the operation.
	Col int
	// Path lists the operations enclosing Op, innermost first.
	Path []string
}

func (err *NullValueError) Error() string {
	if err.Op == "" {
		msg := "expression is null"
		if err.Var != "" {
			msg = "variable " + strconv.Quote(err.Var) + " is null"
		}
		return errpos(err.Col, msg)
	}
	msg := "null operand " + strconv.Itoa(err.Arg)
	if err.Var != "" {
		msg += " (" + err.Var + ")"
	}
	msg += " to " + strconv.Quote(err.Op)
	if len(err.Path) > 0 {
		msg += " in " + strings.Join(err.Path, " < ")
	}
	return errpos(err.Col, msg)
}

func (err *NullValueError) Pos() int {
	return err.Col
}

var (
	_ InputError = (*UnresolvedVariableError)(nil)
	_ InputError = (*NullValueError)(nil)
)
