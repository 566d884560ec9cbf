package exprtree

import (
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// bigPrec is the precision of intermediate results for functions computed
// with big.Float. Results are rounded to float64.
const bigPrec = 128

// expLimit bounds arguments for which exp is computed in big.Float. Beyond it
// the float64 result overflows or underflows anyway.
const expLimit = 720

// MathFuncs returns the extended function set:
//
//	ABS(x)           absolute value
//	MIN(x, ...)      smallest argument
//	MAX(x, ...)      largest argument
//	SUM(x, ...)      sum of arguments
//	AVG(x, ...)      arithmetic mean of arguments
//	ROUND(x[, n])    x rounded half away from zero to n decimal places
//	SQRT(x)          square root
//	EXP(x)           e raised to x
//	LN(x)            natural logarithm
//	POW(x, y)        x raised to y
//	PI()             π
//	E()              e
func MathFuncs() []*Operation {
	return []*Operation{
		Function("ABS", Arity{1, 1}, monadic(math.Abs)),
		Function("MIN", Arity{1, -1}, fold(math.Min)),
		Function("MAX", Arity{1, -1}, fold(math.Max)),
		Function("SUM", Arity{1, -1}, sum),
		Function("AVG", Arity{1, -1}, mean),
		Function("ROUND", Arity{1, 2}, round),
		Function("SQRT", Arity{1, 1}, sqrt),
		Function("EXP", Arity{1, 1}, exp),
		Function("LN", Arity{1, 1}, ln),
		Function("POW", Arity{2, 2}, pow),
		Function("PI", Arity{0, 0}, niladic(bigfloat.Pi)),
		Function("E", Arity{0, 0}, niladic(func(out *big.Float) *big.Float {
			one := new(big.Float).SetPrec(out.Prec()).SetInt64(1)
			return bigfloat.Exp(out, one)
		})),
	}
}

var standardRegistry = defaultRegistry.With(MathFuncs()...)

// StandardRegistry returns the default operators together with MathFuncs.
// The result is shared; use With to extend it.
func StandardRegistry() *Registry {
	return standardRegistry
}

func monadic(f func(float64) float64) Reducer {
	return func(xs []float64) (float64, error) {
		return f(xs[0]), nil
	}
}

func fold(f func(a, b float64) float64) Reducer {
	return func(xs []float64) (float64, error) {
		r := xs[0]
		for _, x := range xs[1:] {
			r = f(r, x)
		}
		return r, nil
	}
}

// niladic wraps a constant computed with big.Float.
func niladic(f func(out *big.Float) *big.Float) Reducer {
	return func([]float64) (float64, error) {
		r := new(big.Float).SetPrec(bigPrec)
		f(r)
		x, _ := r.Float64()
		return x, nil
	}
}

func mean(xs []float64) (float64, error) {
	s, _ := sum(xs)
	return s / float64(len(xs)), nil
}

func round(xs []float64) (float64, error) {
	if len(xs) == 1 {
		return math.Round(xs[0]), nil
	}
	x, n := xs[0], xs[1]
	if n != math.Trunc(n) || math.Abs(n) > 308 {
		return 0, &DomainError{X: n, Arg: 2, Func: "ROUND"}
	}
	if !finite(x) || x != 0 && n >= 15-math.Floor(math.Log10(math.Abs(x))) {
		// x has no digits beyond n places.
		return x, nil
	}
	p := math.Pow(10, n)
	y := x * p
	if math.IsInf(y, 0) {
		return x, nil
	}
	return math.Round(y) / p, nil
}

func sqrt(xs []float64) (float64, error) {
	if xs[0] < 0 {
		return 0, &DomainError{X: xs[0], Arg: 1, Func: "SQRT"}
	}
	return math.Sqrt(xs[0]), nil
}

func finite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

func exp(xs []float64) (float64, error) {
	x := xs[0]
	if !finite(x) || math.Abs(x) > expLimit {
		return math.Exp(x), nil
	}
	z := new(big.Float).SetPrec(bigPrec).SetFloat64(x)
	r, _ := bigfloat.Exp(new(big.Float).SetPrec(bigPrec), z).Float64()
	return r, nil
}

func ln(xs []float64) (float64, error) {
	x := xs[0]
	if x <= 0 {
		return 0, &DomainError{X: x, Arg: 1, Func: "LN"}
	}
	if !finite(x) {
		return math.Log(x), nil
	}
	z := new(big.Float).SetPrec(bigPrec).SetFloat64(x)
	bigfloat.Log(z, z)
	r, _ := z.Float64()
	return r, nil
}

func pow(xs []float64) (float64, error) {
	x, y := xs[0], xs[1]
	if x < 0 && y != math.Trunc(y) {
		// Guard against invalid exponentiations, i.e. negative base with a
		// fractional exponent.
		return 0, &DomainError{X: x, Arg: 1, Func: "POW"}
	}
	if x <= 0 || !finite(x) || !finite(y) || math.Abs(y*math.Log(x)) > expLimit {
		return math.Pow(x, y), nil
	}
	bx := new(big.Float).SetPrec(bigPrec).SetFloat64(x)
	by := new(big.Float).SetPrec(bigPrec).SetFloat64(y)
	bigfloat.Pow(bx, bx, by)
	r, _ := bx.Float64()
	return r, nil
}

// DomainError is an error returned when an operation is applied to arguments
// outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X float64
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the operation.
	Func string
}

func (err *DomainError) Error() string {
	r := strconv.FormatFloat(err.X, 'g', -1, 64) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}
