// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     engine
// Description: Run context owning the registry, DAG pool and canceller
// Author:      Mike Stoffels
// Created:     2026-09-27
// License:     MIT
// ============================================================================

// Package engine bundles the value layer into one run context. A Context is
// single-threaded; concurrent callers build one Context each.
package engine

import (
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	pverrors "github.com/msto63/paramval/foundation/core/errors"
	pvlog "github.com/msto63/paramval/foundation/core/log"
	"github.com/msto63/paramval/pkg/cancel"
	"github.com/msto63/paramval/pkg/core/cache"
	"github.com/msto63/paramval/pkg/core/config"
	"github.com/msto63/paramval/pkg/core/logging"
	"github.com/msto63/paramval/pkg/dag"
	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
	"github.com/msto63/paramval/pkg/poly"
	"github.com/msto63/paramval/pkg/ratfunc"
)

// Config holds run context settings
type Config struct {
	// CancelCacheSize bounds the memoizing canceller; negative disables it
	CancelCacheSize int
	CancelCacheTTL  time.Duration
	Checkpoints     int
	CheckpointSeed  int64
	DisableFolding  bool
	Rounding        fraction.RoundingMode
}

// DefaultConfig returns the settings of an unconfigured run
func DefaultConfig() Config {
	return Config{
		CancelCacheSize: 4096,
		CheckpointSeed:  1,
		Rounding:        fraction.TiesToEven,
	}
}

// ConfigFrom converts the engine section of the application configuration
func ConfigFrom(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return DefaultConfig(), nil
	}
	mode, err := fraction.ParseRoundingMode(cfg.Engine.Rounding)
	if err != nil {
		return Config{}, err
	}
	return Config{
		CancelCacheSize: cfg.Engine.CancelCacheSize,
		CancelCacheTTL:  cfg.Engine.CancelCacheTTL.Duration,
		Checkpoints:     cfg.Engine.Checkpoints,
		CheckpointSeed:  cfg.Engine.CheckpointSeed,
		DisableFolding:  cfg.Engine.DisableFolding,
		Rounding:        mode,
	}, nil
}

// Option customizes a Context
type Option func(*Context)

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithCanceller replaces the default memoized GCD canceller
func WithCanceller(cc cancel.Canceller) Option {
	return func(c *Context) { c.canceller = cc }
}

// WithRegistry shares an existing registry
func WithRegistry(reg *param.Registry) Option {
	return func(c *Context) { c.reg = reg }
}

// Context owns everything one evaluation run needs
type Context struct {
	id        string
	cfg       Config
	logger    *logging.Logger
	reg       *param.Registry
	pool      *dag.Pool
	eval      *dag.Evaluator
	canceller cancel.Canceller
	memo      *cancel.Memo
}

// New creates a run context
func New(cfg Config, opts ...Option) *Context {
	c := &Context{
		id:  uuid.New().String(),
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logging.New("engine")
	}
	if c.reg == nil {
		c.reg = param.NewRegistry()
	}
	if c.canceller == nil {
		if cfg.CancelCacheSize >= 0 {
			c.memo = cancel.NewMemoWithTTL(cancel.NewGCD(), cfg.CancelCacheSize, cfg.CancelCacheTTL)
			c.canceller = c.memo
		} else {
			c.canceller = cancel.NewGCD()
		}
	}

	var poolOpts []dag.Option
	if cfg.DisableFolding {
		poolOpts = append(poolOpts, dag.WithoutFolding())
	}
	if cfg.Checkpoints > 0 {
		poolOpts = append(poolOpts, dag.WithCheckpoints(cfg.Checkpoints, cfg.CheckpointSeed))
	}
	c.pool = dag.NewPool(c.reg, poolOpts...)
	c.eval = c.pool.NewEvaluator()

	c.logger.Debug("run context created",
		"run_id", c.id,
		"folding", !cfg.DisableFolding,
		"checkpoints", cfg.Checkpoints,
		"rounding", cfg.Rounding.String(),
	)
	return c
}

// ID returns the run ID
func (c *Context) ID() string { return c.id }

// Config returns the settings the context was built with
func (c *Context) Config() Config { return c.cfg }

// Logger returns the context logger
func (c *Context) Logger() *logging.Logger { return c.logger }

// Registry returns the parameter registry
func (c *Context) Registry() *param.Registry { return c.reg }

// Pool returns the expression pool
func (c *Context) Pool() *dag.Pool { return c.pool }

// Evaluator returns the memoizing evaluator over the pool
func (c *Context) Evaluator() *dag.Evaluator { return c.eval }

// Canceller returns the canceller used by rational functions
func (c *Context) Canceller() cancel.Canceller { return c.canceller }

// CancelStats returns the canceller cache counters; ok is false when the
// canceller is not memoized
func (c *Context) CancelStats() (stats cache.Stats, ok bool) {
	if c.memo == nil {
		return cache.Stats{}, false
	}
	return c.memo.Stats(), true
}

// ParseFraction parses a scalar literal
func (c *Context) ParseFraction(s string) (*fraction.Fraction, error) {
	return fraction.Parse(s)
}

// ParsePolynomial parses a polynomial literal, registering its parameters
func (c *Context) ParsePolynomial(s string) (*poly.Polynomial, error) {
	return poly.Parse(c.reg, s)
}

// ParseRational parses a rational function literal
func (c *Context) ParseRational(s string) (*ratfunc.RationalFunction, error) {
	return ratfunc.Parse(c.reg, c.canceller, s)
}

// ParsePoint builds a point from parameter names and scalar literals.
// Parameters not named are zero.
func (c *Context) ParsePoint(values map[string]string) (*param.Point, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	pt := param.NewPoint(c.reg)
	for _, name := range names {
		if name == "" {
			return nil, pverrors.InvalidInput(pverrors.ModuleEngine, "parse_point", name, "parameter name")
		}
		v, err := fraction.Parse(values[name])
		if err != nil {
			return nil, pverrors.NewErrorBuilder(pverrors.ModuleEngine).
				Operation("parse_point").
				Messagef("value of %s", name).
				Code(pverrors.CodeInvalidInput).
				Cause(err).
				Build()
		}
		pt.SetByName(name, v)
	}
	return pt, nil
}

// Build interns the rational function literals into the pool
func (c *Context) Build(exprs ...string) ([]dag.Handle, error) {
	handles := make([]dag.Handle, len(exprs))
	for i, s := range exprs {
		r, err := c.ParseRational(s)
		if err != nil {
			return nil, err
		}
		handles[i] = c.pool.FromRational(r)
	}
	return handles, nil
}

// Cancel parses two polynomial literals and reduces their quotient
func (c *Context) Cancel(num, den string) (*ratfunc.RationalFunction, error) {
	n, err := c.ParsePolynomial(num)
	if err != nil {
		return nil, err
	}
	d, err := c.ParsePolynomial(den)
	if err != nil {
		return nil, err
	}
	timer := c.logger.StartTimer("cancel").WithField("run_id", c.id)
	r, err := ratfunc.New(n, d, c.canceller)
	timer.StopWithError(err)
	return r, err
}

// Result is the outcome of evaluating one expression at one point
type Result struct {
	Expression string
	Handle     dag.Handle
	Value      *fraction.Fraction
	Double     float64
	Lo, Hi     float64
}

// Evaluate parses expr as a rational function, interns it and evaluates it
// at the given point
func (c *Context) Evaluate(expr string, point map[string]string) (*Result, error) {
	r, err := c.ParseRational(expr)
	if err != nil {
		return nil, err
	}
	pt, err := c.ParsePoint(point)
	if err != nil {
		return nil, err
	}
	return c.EvaluateHandle(c.pool.FromRational(r), pt), nil
}

// EvaluateHandle evaluates an interned expression at pt
func (c *Context) EvaluateHandle(h dag.Handle, pt *param.Point) *Result {
	timer := c.logger.StartTimer("evaluate").
		WithField("run_id", c.id).
		WithField("point", pt.Key())
	defer timer.Stop()

	v := c.eval.Evaluate(h, pt)
	lo, hi := c.pool.EvaluatePointInterval(h, pt)
	return &Result{
		Expression: c.pool.Describe(h),
		Handle:     h,
		Value:      v,
		Double:     v.ToDouble(c.cfg.Rounding),
		Lo:         lo,
		Hi:         hi,
	}
}

// LogStats writes pool and cache counters at info level
func (c *Context) LogStats() {
	st := c.pool.Stats()
	fields := pvlog.Fields{
		"run_id":    c.id,
		"constants": st.Constants,
		"variables": st.Variables,
		"operators": st.Operators,
	}
	if cs, ok := c.CancelStats(); ok {
		fields["cancel_hits"] = cs.Hits
		fields["cancel_misses"] = cs.Misses
	}
	hits, misses := c.eval.MemoStats()
	fields["memo_hits"] = hits
	fields["memo_misses"] = misses
	c.logger.Logger.Info("run statistics", fields)
}

// Import reads a dag-json document and interns its functions into the
// context pool
func (c *Context) Import(r io.Reader) ([]dag.Handle, error) {
	src, roots, err := dag.LoadJSON(r, param.NewRegistry(), dag.WithoutFolding())
	if err != nil {
		return nil, err
	}
	return c.pool.Import(src, roots...), nil
}

// Export formats
const (
	FormatJSON = "json"
	FormatDot  = "dot"
)

// Export writes the expressions reachable from roots as dag-json or dot
func (c *Context) Export(w io.Writer, format string, roots ...dag.Handle) error {
	switch format {
	case FormatJSON, "":
		return c.pool.WriteJSON(w, roots...)
	case FormatDot:
		return c.pool.WriteGraphviz(w, roots...)
	}
	return pverrors.InvalidInput(pverrors.ModuleEngine, "export", format, "json or dot")
}
