package exprtree_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/exprtree"
)

func ExampleFunction() {
	nargin := exprtree.Function("NARGIN", exprtree.Arity{Min: 0, Max: -1}, func(xs []float64) (float64, error) {
		return float64(len(xs)), nil
	})
	reg := exprtree.StandardRegistry().With(nargin)
	for _, src := range []string{"NARGIN()", "NARGIN(100)", "NARGIN(3, 2, 1)"} {
		a, err := exprtree.Parse(src, reg)
		if err != nil {
			panic(err)
		}
		r, _ := a.Eval(nil, exprtree.NullAsZero)
		fmt.Println(r, a)
	}

	// Output:
	// 0 (NARGIN[])
	// 1 (NARGIN[(100)])
	// 3 (NARGIN[(3), (2), (1)])
}

func ExampleEvalString() {
	x := 2.5
	r, err := exprtree.EvalString("3+4*ABS(-x)", exprtree.Vars{"x": &x}, exprtree.NullAsZero)
	fmt.Println(r, err)

	// Output:
	// 13 <nil>
}

func TestMathFuncs(t *testing.T) {
	cases := []struct {
		name  string
		arity exprtree.Arity
		args  []float64
		r     float64
	}{
		{"ABS", exprtree.Arity{Min: 1, Max: 1}, []float64{-3}, 3},
		{"MIN", exprtree.Arity{Min: 1, Max: -1}, []float64{4, -1, 2}, -1},
		{"MAX", exprtree.Arity{Min: 1, Max: -1}, []float64{4, -1, 2}, 4},
		{"SUM", exprtree.Arity{Min: 1, Max: -1}, []float64{4, -1, 2}, 5},
		{"AVG", exprtree.Arity{Min: 1, Max: -1}, []float64{4, -1, 3}, 2},
		{"ROUND", exprtree.Arity{Min: 1, Max: 2}, []float64{-2.5}, -3},
		{"ROUND", exprtree.Arity{Min: 1, Max: 2}, []float64{2, 308}, 2},
		{"ROUND", exprtree.Arity{Min: 1, Max: 2}, []float64{1e10, 300}, 1e10},
		{"ROUND", exprtree.Arity{Min: 1, Max: 2}, []float64{0.1, 20}, 0.1},
		{"ROUND", exprtree.Arity{Min: 1, Max: 2}, []float64{0, 300}, 0},
		{"ROUND", exprtree.Arity{Min: 1, Max: 2}, []float64{5, -308}, 0},
		{"SQRT", exprtree.Arity{Min: 1, Max: 1}, []float64{2}, math.Sqrt2},
		{"EXP", exprtree.Arity{Min: 1, Max: 1}, []float64{2}, math.E * math.E},
		{"LN", exprtree.Arity{Min: 1, Max: 1}, []float64{10}, math.Ln10},
		{"POW", exprtree.Arity{Min: 2, Max: 2}, []float64{9, 0.5}, 3},
		{"PI", exprtree.Arity{Min: 0, Max: 0}, nil, math.Pi},
		{"E", exprtree.Arity{Min: 0, Max: 0}, nil, math.E},
	}
	reg := exprtree.StandardRegistry()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			op, ok := reg.Lookup(c.name)
			require.True(t, ok)
			assert.True(t, op.IsFunction)
			assert.Equal(t, c.arity, op.Arity)
			r, err := op.Reduce(c.args)
			require.NoError(t, err)
			assert.InDelta(t, c.r, r, 1e-14*math.Max(1, math.Abs(c.r)))
		})
	}
}

func TestMathFuncsLarge(t *testing.T) {
	cases := []struct {
		src string
		r   float64
	}{
		{"EXP(-1000)", 0},
		{"EXP(1/0)", math.Inf(1)},
		{"EXP(-1/0)", 0},
		{"LN(1/0)", math.Inf(1)},
		{"POW(10,400)", math.Inf(1)},
		{"POW(10,-400)", 0},
		{"POW(0,-1)", math.Inf(1)},
		{"SQRT(1/0)", math.Inf(1)},
	}
	for _, c := range cases {
		r, err := exprtree.EvalString(c.src, nil, exprtree.NullAsZero)
		if assert.NoError(t, err, c.src) {
			assert.Equal(t, c.r, r, c.src)
		}
	}
}

func TestDomainErrorMessage(t *testing.T) {
	_, err := exprtree.EvalString("SQRT(-4)", nil, exprtree.NullAsZero)
	require.Error(t, err)
	assert.Equal(t, "-4 outside domain of SQRT (argument 1)", err.Error())
	_, err = exprtree.EvalString("1%0", nil, exprtree.NullAsZero)
	require.Error(t, err)
	assert.Equal(t, "0 outside domain of % (argument 2)", err.Error())
}

func TestStandardRegistry(t *testing.T) {
	want := []string{"%", "*", "+", "-", "/", "ABS", "AVG", "E", "EXP", "LN", "MAX", "MIN", "PI", "POW", "ROUND", "SQRT", "SUM"}
	assert.Equal(t, want, exprtree.StandardRegistry().Names())
	assert.Equal(t, []string{"%", "*", "+", "-", "/"}, exprtree.DefaultRegistry().Names())
	_, err := exprtree.Parse("ABS(1)", exprtree.DefaultRegistry())
	assert.ErrorIs(t, err, exprtree.ErrMissingOperator, "default registry has no functions, so ABS is a variable")
}
