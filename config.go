package exprtree

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Config configures an Interpreter.
type Config struct {
	// International swaps ',' and '.' before tokenizing.
	International bool `yaml:"international"`
	// MaxDepth limits expression nesting. Zero means DefaultMaxDepth.
	MaxDepth int `yaml:"max_depth"`
	// NullPolicy is the policy used by Interpreter.EvaluateDefault and the
	// command line tool.
	NullPolicy NullPolicy `yaml:"null_policy"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxDepth:   DefaultMaxDepth,
		NullPolicy: NullAsZero,
	}
}

// Validate checks the config.
func (cfg *Config) Validate() error {
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("invalid max_depth %d: must not be negative", cfg.MaxDepth)
	}
	if cfg.NullPolicy < NullAsZero || cfg.NullPolicy > ThrowOnNull {
		return fmt.Errorf("invalid null_policy %v", cfg.NullPolicy)
	}
	return nil
}

// LoadConfig reads a YAML config. Fields missing from the document keep their
// default values.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	b, err := io.ReadAll(r)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.UnmarshalWithOptions(b, &cfg, yaml.DisallowUnknownField()); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadVars reads variable values from a YAML mapping of names to numbers.
// A null value yields a null variable:
//
//	A: 2
//	B: ~
func LoadVars(r io.Reader) (Vars, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read variables")
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrap(err, "parse variables")
	}
	vars := make(Vars, len(m))
	for k, v := range m {
		x, err := number(v)
		if err != nil {
			return nil, errors.Wrapf(err, "variable %q", k)
		}
		vars[k] = x
	}
	return vars, nil
}

// number converts a decoded YAML scalar to a variable value.
func number(v any) (*float64, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return Num(v), nil
	case uint64:
		return Num(float64(v)), nil
	case int64:
		return Num(float64(v)), nil
	case int:
		return Num(float64(v)), nil
	case string:
		// YAML has no literal for every float; accept what strconv accepts.
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", v)
		}
		return Num(x), nil
	default:
		return nil, fmt.Errorf("not a number: %v", v)
	}
}
