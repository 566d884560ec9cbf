package exprtree

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Interpreter ties normalization, parsing, and evaluation together with
// logging and metrics. It is safe for concurrent use.
type Interpreter struct {
	cfg     Config
	reg     *Registry
	logger  log.Logger
	metrics *metrics
}

// New creates an interpreter. A nil reg means StandardRegistry. Metrics are
// registered with registerer unless it is nil.
func New(cfg Config, reg *Registry, logger log.Logger, registerer prometheus.Registerer) (*Interpreter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid interpreter config")
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if reg == nil {
		reg = standardRegistry
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Interpreter{
		cfg:     cfg,
		reg:     reg,
		logger:  logger,
		metrics: newMetrics(registerer),
	}, nil
}

// Config returns the interpreter's configuration.
func (in *Interpreter) Config() Config {
	return in.cfg
}

// Parse normalizes and parses src.
func (in *Interpreter) Parse(src string) (*Expr, error) {
	a, err := Parse(Normalize(src, in.cfg.International), in.reg, MaxDepth(in.cfg.MaxDepth))
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	in.metrics.nodes.Observe(float64(a.tree.Len()))
	return a, nil
}

// Evaluate parses src and evaluates it with vars under policy. Errors keep
// their types for errors.As.
func (in *Interpreter) Evaluate(src string, vars Vars, policy NullPolicy) (float64, error) {
	_, r, err := in.Run(src, vars, policy)
	return r, err
}

// EvaluateDefault evaluates src like Evaluate under the configured null
// policy.
func (in *Interpreter) EvaluateDefault(src string, vars Vars) (float64, error) {
	return in.Evaluate(src, vars, in.cfg.NullPolicy)
}

// Run evaluates src like Evaluate and also returns the parsed expression, or
// nil if src did not parse.
func (in *Interpreter) Run(src string, vars Vars, policy NullPolicy) (*Expr, float64, error) {
	start := time.Now()
	a, r, err := in.evaluate(src, vars, policy)
	in.metrics.evaluations.WithLabelValues(outcome(err)).Inc()
	nodes := 0
	if a != nil {
		nodes = a.tree.Len()
	}
	logger := log.With(in.logger, "expr", src, "policy", policy, "nodes", nodes, "duration", time.Since(start))
	if err != nil {
		level.Debug(logger).Log("msg", "expression evaluation failed", "err", err)
		return a, 0, err
	}
	level.Debug(logger).Log("msg", "expression evaluated", "result", r)
	return a, r, nil
}

func (in *Interpreter) evaluate(src string, vars Vars, policy NullPolicy) (*Expr, float64, error) {
	a, err := in.Parse(src)
	if err != nil {
		return nil, 0, err
	}
	r, err := a.Eval(vars, policy)
	if err != nil {
		return a, 0, errors.Wrap(err, "evaluate")
	}
	return a, r, nil
}

// EvaluateFunc evaluates src like Evaluate and delivers the result to done
// before returning.
func (in *Interpreter) EvaluateFunc(src string, vars Vars, policy NullPolicy, done func(float64, error)) {
	done(in.Evaluate(src, vars, policy))
}
