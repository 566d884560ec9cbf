package exprtree

import "strconv"

// DefaultMaxDepth is the nesting limit used when no MaxDepth option is given.
const DefaultMaxDepth = 256

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type depthopt int

// MaxDepth limits how deeply parentheses, function calls, and unary operators
// may nest. Panics if n is not positive.
func MaxDepth(n int) ParseOption {
	if n <= 0 {
		panic("exprtree: invalid max depth " + strconv.Itoa(n))
	}
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.maxdepth = int(o)
	return p
}
