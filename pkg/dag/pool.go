// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     dag
// Description: Hash-consed expression DAG over parameters and fractions
// Author:      Mike Stoffels
// Created:     2026-09-21
// License:     MIT
// ============================================================================

// Package dag stores parametric values as a shared expression graph. Every
// distinct node is interned once in a Pool and named by its Handle, the
// insertion sequence number. Operands always have smaller handles than the
// node using them, so ascending handle order is a topological order.
//
// Evaluation is lazy: nothing is expanded until a node is evaluated at a
// point, converted to an interval or turned into a rational function.
//
// A Pool is not safe for concurrent use.
package dag

import (
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"strings"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
)

// Handle names an interned node
type Handle int

// Kind tags the variant of an Entry
type Kind uint8

// Entry variants, in their comparison order
const (
	KindConstant Kind = iota
	KindVariable
	KindOperator
)

// String returns the variant name
func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindVariable:
		return "variable"
	case KindOperator:
		return "operator"
	}
	return "unknown"
}

// Entry is the content of a node. Only the fields of its Kind are set.
type Entry struct {
	Kind     Kind
	Value    *fraction.Fraction
	Param    int
	Op       Op
	Operands []Handle
}

// ConstantEntry describes a constant node
func ConstantEntry(f *fraction.Fraction) Entry {
	return Entry{Kind: KindConstant, Value: f}
}

// VariableEntry describes the parameter with the given registry index
func VariableEntry(index int) Entry {
	return Entry{Kind: KindVariable, Param: index}
}

// OperatorEntry describes op applied to operands
func OperatorEntry(op Op, operands ...Handle) Entry {
	return Entry{Kind: KindOperator, Op: op, Operands: operands}
}

// key is the content address of e
func (e Entry) key() string {
	switch e.Kind {
	case KindConstant:
		return "c" + e.Value.String()
	case KindVariable:
		return "v" + strconv.Itoa(e.Param)
	}
	var sb strings.Builder
	sb.WriteByte('o')
	sb.WriteString(strconv.Itoa(int(e.Op)))
	for _, h := range e.Operands {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(h)))
	}
	return sb.String()
}

// Option configures a Pool
type Option func(*Pool)

// WithoutFolding keeps operators over constants as operator nodes
func WithoutFolding() Option {
	return func(p *Pool) {
		p.fold = false
	}
}

// WithCheckpoints enables ValueEqual, which compares nodes by evaluating them
// at n pseudo-random points drawn from seed. Interning stays structural.
func WithCheckpoints(n int, seed int64) Option {
	return func(p *Pool) {
		if n <= 0 {
			return
		}
		p.checks = &checkpoints{n: n, rng: rand.New(rand.NewSource(seed))}
	}
}

// Pool interns nodes for one run
type Pool struct {
	reg     *param.Registry
	entries []Entry
	index   map[string]Handle
	fold    bool
	checks  *checkpoints
}

// NewPool creates an empty pool over reg
func NewPool(reg *param.Registry, opts ...Option) *Pool {
	p := &Pool{
		reg:   reg,
		index: make(map[string]Handle),
		fold:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the registry variables refer to
func (p *Pool) Registry() *param.Registry {
	return p.reg
}

// Len returns the number of interned nodes
func (p *Pool) Len() int {
	return len(p.entries)
}

// Folding reports whether constant operands are folded
func (p *Pool) Folding() bool {
	return p.fold
}

// Entry returns a copy of the content of h. It panics on an unknown handle.
func (p *Pool) Entry(h Handle) Entry {
	p.check(h)
	e := p.entries[h]
	e.Operands = slices.Clone(e.Operands)
	return e
}

// Kind returns the variant of h
func (p *Pool) Kind(h Handle) Kind {
	p.check(h)
	return p.entries[h].Kind
}

// Lookup returns the handle of e if it is interned
func (p *Pool) Lookup(e Entry) (Handle, bool) {
	h, ok := p.index[e.key()]
	return h, ok
}

// Intern returns the handle of e, inserting it with the next handle on first
// sight. It panics on content that can never be valid: an unregistered
// parameter, an unknown operand, or an operator Apply would reject.
func (p *Pool) Intern(e Entry) Handle {
	switch e.Kind {
	case KindConstant:
		if e.Value == nil {
			panic("dag: constant without value")
		}
	case KindVariable:
		p.reg.Get(e.Param)
	case KindOperator:
		if !e.Op.Supported() || len(e.Operands) != e.Op.Arity() {
			panic(fmt.Sprintf("dag: cannot intern %s with %d operands", e.Op, len(e.Operands)))
		}
		for _, h := range e.Operands {
			p.check(h)
		}
	default:
		panic(fmt.Sprintf("dag: unknown entry kind %d", e.Kind))
	}

	k := e.key()
	if h, ok := p.index[k]; ok {
		return h
	}
	h := Handle(len(p.entries))
	e.Operands = slices.Clone(e.Operands)
	p.entries = append(p.entries, e)
	p.index[k] = h
	return h
}

// Constant interns the constant f
func (p *Pool) Constant(f *fraction.Fraction) Handle {
	return p.Intern(ConstantEntry(f))
}

// Int interns the integer constant n
func (p *Pool) Int(n int64) Handle {
	return p.Constant(fraction.FromInt64(n))
}

// Variable interns the parameter with the given registry index
func (p *Pool) Variable(index int) Handle {
	return p.Intern(VariableEntry(index))
}

// Parameter registers name and interns its variable
func (p *Pool) Parameter(name string) Handle {
	return p.Variable(p.reg.Register(name))
}

// Apply interns op over operands. Unsupported operators and wrong operand
// counts are errors; unknown handles panic. With folding enabled an operator
// whose operands are all constants becomes the constant it computes.
func (p *Pool) Apply(op Op, operands ...Handle) (Handle, error) {
	if !op.Supported() {
		return 0, pverrors.DagUnsupportedOperator(op.String())
	}
	if len(operands) != op.Arity() {
		return 0, pverrors.DagArity(op.String(), len(operands), op.Arity())
	}
	for _, h := range operands {
		p.check(h)
	}

	if p.fold && p.allConstant(operands) {
		args := make([]*fraction.Fraction, len(operands))
		for i, h := range operands {
			args[i] = p.entries[h].Value
		}
		return p.Constant(applyFraction(op, args)), nil
	}
	return p.Intern(OperatorEntry(op, operands...)), nil
}

// ApplyNamed resolves name with ParseOp and applies it
func (p *Pool) ApplyNamed(name string, operands ...Handle) (Handle, error) {
	op, err := ParseOp(name)
	if err != nil {
		return 0, err
	}
	return p.Apply(op, operands...)
}

func (p *Pool) allConstant(hs []Handle) bool {
	for _, h := range hs {
		if p.entries[h].Kind != KindConstant {
			return false
		}
	}
	return true
}

func (p *Pool) must(op Op, operands ...Handle) Handle {
	h, err := p.Apply(op, operands...)
	if err != nil {
		panic(err)
	}
	return h
}

// Add returns a + b
func (p *Pool) Add(a, b Handle) Handle { return p.must(OpAdd, a, b) }

// Subtract returns a - b
func (p *Pool) Subtract(a, b Handle) Handle { return p.must(OpSubtract, a, b) }

// Multiply returns a * b
func (p *Pool) Multiply(a, b Handle) Handle { return p.must(OpMultiply, a, b) }

// Divide returns a / b
func (p *Pool) Divide(a, b Handle) Handle { return p.must(OpDivide, a, b) }

// Negate returns -a
func (p *Pool) Negate(a Handle) Handle { return p.must(OpNegate, a) }

// Reciprocal returns 1/a
func (p *Pool) Reciprocal(a Handle) Handle { return p.must(OpReciprocal, a) }

// applyFraction computes op over concrete values
func applyFraction(op Op, args []*fraction.Fraction) *fraction.Fraction {
	switch op {
	case OpAdd:
		return args[0].Add(args[1])
	case OpSubtract:
		return args[0].Subtract(args[1])
	case OpMultiply:
		return args[0].Multiply(args[1])
	case OpDivide:
		return args[0].Divide(args[1])
	case OpNegate:
		return args[0].Negate()
	case OpReciprocal:
		return args[0].Reciprocal()
	}
	panic("dag: no fraction rule for " + op.String())
}

// IsZero reports whether h is the constant 0
func (p *Pool) IsZero(h Handle) bool {
	p.check(h)
	e := p.entries[h]
	return e.Kind == KindConstant && e.Value.IsZero()
}

// IsOne reports whether h is the constant 1
func (p *Pool) IsOne(h Handle) bool {
	p.check(h)
	e := p.entries[h]
	return e.Kind == KindConstant && e.Value.IsOne()
}

// Compare is a total order on nodes: constants by value, then variables by
// index, then operators by priority, arity, operator and operands in turn.
func (p *Pool) Compare(a, b Handle) int {
	if a == b {
		return 0
	}
	p.check(a)
	p.check(b)
	ea, eb := p.entries[a], p.entries[b]
	if ea.Kind != eb.Kind {
		return cmpInt(int(ea.Kind), int(eb.Kind))
	}

	switch ea.Kind {
	case KindConstant:
		if c := ea.Value.Compare(eb.Value); c != 0 {
			return c
		}
		// 0 and -0 compare equal as values
		return strings.Compare(ea.Value.String(), eb.Value.String())
	case KindVariable:
		return cmpInt(ea.Param, eb.Param)
	}

	if c := cmpInt(ea.Op.priority(), eb.Op.priority()); c != 0 {
		return c
	}
	if c := cmpInt(len(ea.Operands), len(eb.Operands)); c != 0 {
		return c
	}
	if c := cmpInt(int(ea.Op), int(eb.Op)); c != 0 {
		return c
	}
	for i := range ea.Operands {
		if c := p.Compare(ea.Operands[i], eb.Operands[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Sort orders hs by Compare
func (p *Pool) Sort(hs []Handle) {
	slices.SortFunc(hs, p.Compare)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Stats counts nodes per variant and per operator
type Stats struct {
	Constants int
	Variables int
	Operators int
	ByOp      map[string]int
}

// Total returns the number of nodes counted
func (s Stats) Total() int {
	return s.Constants + s.Variables + s.Operators
}

// Stats counts every interned node
func (p *Pool) Stats() Stats {
	return p.count(func(Handle) bool { return true })
}

// Reachable returns the handles reachable from roots in ascending order
func (p *Pool) Reachable(roots ...Handle) []Handle {
	return p.reachable(roots, nil)
}

// reachable walks operands from roots without entering nodes for which stop
// reports true
func (p *Pool) reachable(roots []Handle, stop func(Handle) bool) []Handle {
	seen := make(map[Handle]bool)
	stack := slices.Clone(roots)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p.check(h)
		if seen[h] || (stop != nil && stop(h)) {
			continue
		}
		seen[h] = true
		stack = append(stack, p.entries[h].Operands...)
	}
	out := make([]Handle, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// StatsOf counts the nodes reachable from roots
func (p *Pool) StatsOf(roots ...Handle) Stats {
	seen := make(map[Handle]bool)
	for _, h := range p.Reachable(roots...) {
		seen[h] = true
	}
	return p.count(func(h Handle) bool { return seen[h] })
}

func (p *Pool) count(include func(Handle) bool) Stats {
	s := Stats{ByOp: make(map[string]int)}
	for i, e := range p.entries {
		if !include(Handle(i)) {
			continue
		}
		switch e.Kind {
		case KindConstant:
			s.Constants++
		case KindVariable:
			s.Variables++
		case KindOperator:
			s.Operators++
			s.ByOp[e.Op.String()]++
		}
	}
	return s
}

// Describe renders h as an infix expression; shared nodes are expanded
func (p *Pool) Describe(h Handle) string {
	p.check(h)
	e := p.entries[h]
	switch e.Kind {
	case KindConstant:
		return e.Value.String()
	case KindVariable:
		return p.reg.Get(e.Param)
	}
	switch e.Op {
	case OpNegate:
		return "-(" + p.Describe(e.Operands[0]) + ")"
	case OpReciprocal:
		return "1/(" + p.Describe(e.Operands[0]) + ")"
	}
	sym := map[Op]string{OpAdd: "+", OpSubtract: "-", OpMultiply: "*", OpDivide: "/"}[e.Op]
	return "(" + p.Describe(e.Operands[0]) + sym + p.Describe(e.Operands[1]) + ")"
}

func (p *Pool) check(h Handle) {
	if h < 0 || int(h) >= len(p.entries) {
		panic(fmt.Sprintf("dag: unknown handle %d (pool has %d nodes)", h, len(p.entries)))
	}
}

// Import copies the expressions reachable from roots in src into p and
// returns their handles in p. Parameters are matched by name and registered
// in p's registry when missing.
func (p *Pool) Import(src *Pool, roots ...Handle) []Handle {
	mapped := make(map[Handle]Handle)
	for _, h := range src.Reachable(roots...) {
		e := src.entries[h]
		switch e.Kind {
		case KindConstant:
			mapped[h] = p.Constant(e.Value)
		case KindVariable:
			mapped[h] = p.Parameter(src.reg.Get(e.Param))
		default:
			operands := make([]Handle, len(e.Operands))
			for i, o := range e.Operands {
				operands[i] = mapped[o]
			}
			mapped[h] = p.must(e.Op, operands...)
		}
	}

	out := make([]Handle, len(roots))
	for i, r := range roots {
		out[i] = mapped[r]
	}
	return out
}
