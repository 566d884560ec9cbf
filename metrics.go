package exprtree

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation outcomes, used as metric label values.
const (
	outcomeSuccess    = "success"
	outcomeLex        = "lex_error"
	outcomeSyntax     = "syntax_error"
	outcomeUnresolved = "unresolved_variable"
	outcomeNull       = "null_value"
	outcomeDomain     = "domain_error"
	outcomeOther      = "other_error"
)

type metrics struct {
	evaluations *prometheus.CounterVec
	nodes       prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		evaluations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "exprtree_evaluations_total",
			Help: "Total number of expression evaluations by outcome.",
		}, []string{"outcome"}),
		nodes: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "exprtree_tree_nodes",
			Help:    "Number of nodes in parsed expression trees.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// outcome classifies the result of an evaluation.
func outcome(err error) string {
	var (
		lexErr  *LexError
		synErr  *SyntaxError
		unres   *UnresolvedVariableError
		nullErr *NullValueError
		domErr  *DomainError
	)
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &lexErr):
		return outcomeLex
	case errors.As(err, &synErr):
		return outcomeSyntax
	case errors.As(err, &unres):
		return outcomeUnresolved
	case errors.As(err, &nullErr):
		return outcomeNull
	case errors.As(err, &domErr):
		return outcomeDomain
	default:
		return outcomeOther
	}
}
