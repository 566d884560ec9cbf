package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/scott-cotton/cli"

	"github.com/zephyrtronium/exprtree"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}

// MainConfig holds the command line options.
type MainConfig struct {
	Vars    string `cli:"name=vars desc='YAML file mapping variable names to values (~ for null)'"`
	Config  string `cli:"name=config desc='YAML interpreter config file'"`
	Null    string `cli:"name=null desc='null policy: zero, drop, or throw'"`
	Intl    bool   `cli:"name=intl desc='swap , and . before parsing'"`
	Echo    bool   `cli:"name=echo desc='print parse trees'"`
	Verbose bool   `cli:"name=v desc='log every evaluation'"`
	Fmt     string `cli:"name=fmt desc='result formatting verb (default %g)'"`

	// Given holds name=value definitions from -given, applied after Vars.
	Given exprtree.Vars

	Main *cli.Command
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{Given: exprtree.Vars{}}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, &cli.Opt{
		Name:        "given",
		Description: "name=value variable definition (any number of times, value null for null)",
		Type:        cli.NamedFuncOpt(cfg.givenOpt, "(name=value)"),
	})
	return cli.NewCommandAt(&cfg.Main, "exprtree").
		WithSynopsis("exprtree [opts] [expressions]").
		WithDescription("exprtree evaluates arithmetic expressions, one per argument or per line of stdin.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return run(cfg, cc, args)
		})
}

func (cfg *MainConfig) givenOpt(_ *cli.Context, a string) (any, error) {
	d := strings.SplitN(a, "=", 2)
	if len(d) != 2 {
		return nil, fmt.Errorf(`%w: variable definitions must be "name=value", not %q`, cli.ErrUsage, a)
	}
	name, val := strings.TrimSpace(d[0]), strings.TrimSpace(d[1])
	if val == "null" || val == "~" {
		cfg.Given[name] = nil
		return nil, nil
	}
	x, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: value of %s: %w", cli.ErrUsage, name, err)
	}
	cfg.Given[name] = exprtree.Num(x)
	return x, nil
}

func run(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	lvl := level.AllowInfo()
	if cfg.Verbose {
		lvl = level.AllowDebug()
	}
	logger := level.NewFilter(log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)), lvl)

	icfg, err := loadConfig(cfg)
	if err != nil {
		return err
	}
	vars, err := loadVars(cfg)
	if err != nil {
		return err
	}
	in, err := exprtree.New(icfg, nil, logger, nil)
	if err != nil {
		return err
	}

	verb := cfg.Fmt
	if verb == "" {
		verb = "%g"
	}
	errc := color.New(color.FgRed)
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		errc.DisableColor()
	}

	failed := 0
	eval := func(src string) {
		a, r, err := in.Run(src, vars, icfg.NullPolicy)
		if cfg.Echo && a != nil {
			fmt.Fprintf(cc.Out, "%v : ", a)
		}
		if err != nil {
			failed++
			errc.Fprintf(os.Stderr, "%s: %v\n", src, err)
			return
		}
		fmt.Fprintf(cc.Out, verb+"\n", r)
	}
	if len(args) > 0 {
		for _, src := range args {
			eval(src)
		}
	} else if err := eachLine(cc.In, eval); err != nil {
		return err
	}
	if failed > 0 {
		level.Info(logger).Log("msg", "some expressions failed", "failed", failed)
		return errors.Errorf("%d expressions failed", failed)
	}
	return nil
}

func loadConfig(cfg *MainConfig) (exprtree.Config, error) {
	icfg := exprtree.DefaultConfig()
	if cfg.Config != "" {
		f, err := os.Open(cfg.Config)
		if err != nil {
			return icfg, err
		}
		defer f.Close()
		icfg, err = exprtree.LoadConfig(f)
		if err != nil {
			return icfg, errors.Wrapf(err, "loading %s", cfg.Config)
		}
	}
	if cfg.Intl {
		icfg.International = true
	}
	if cfg.Null != "" {
		p, err := exprtree.ParseNullPolicy(cfg.Null)
		if err != nil {
			return icfg, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		icfg.NullPolicy = p
	}
	return icfg, nil
}

func loadVars(cfg *MainConfig) (exprtree.Vars, error) {
	vars := exprtree.Vars{}
	if cfg.Vars != "" {
		f, err := os.Open(cfg.Vars)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		vars, err = exprtree.LoadVars(f)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", cfg.Vars)
		}
	}
	for k, v := range cfg.Given {
		vars[k] = v
	}
	return vars, nil
}

func eachLine(r io.Reader, f func(string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		f(line)
	}
	return sc.Err()
}
