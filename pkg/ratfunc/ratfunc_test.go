package ratfunc

import (
	"errors"
	"testing"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/cancel"
	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
	"github.com/msto63/paramval/pkg/poly"
)

func setup(names ...string) (*param.Registry, cancel.Canceller) {
	reg := param.NewRegistry()
	for _, n := range names {
		reg.Register(n)
	}
	return reg, cancel.NewGCD()
}

func TestScenarioEvaluate(t *testing.T) {
	reg, c := setup("x")
	r := MustParse(reg, c, "x/(x+1)")

	pt := param.NewPoint(reg)
	pt.SetByName("x", fraction.FromInt64(3))

	got := r.Evaluate(pt)
	if got.String() != "3/4" {
		t.Errorf("Evaluate(x=3) = %v, want 3/4", got)
	}
	if d := got.Float64(); d != 0.75 {
		t.Errorf("Float64() = %v, want 0.75", d)
	}
	if d := r.EvaluateDouble([]float64{3}); d != 0.75 {
		t.Errorf("EvaluateDouble(3) = %v, want 0.75", d)
	}
}

func TestArithmetic(t *testing.T) {
	reg, c := setup("x", "y")
	p := func(s string) *RationalFunction { return MustParse(reg, c, s) }

	tests := []struct {
		name string
		op   func() (*RationalFunction, error)
		want string
	}{
		{"add cross-multiplies", func() (*RationalFunction, error) { return p("1/x").Add(p("1/y")) }, "(x+y)/(x*y)"},
		{"add common denominator cancels", func() (*RationalFunction, error) { return p("x/(x+1)").Add(p("1/(x+1)")) }, "1"},
		{"subtract self", func() (*RationalFunction, error) { return p("x/(y+1)").Subtract(p("x/(y+1)")) }, "0"},
		{"multiply cancels pairwise", func() (*RationalFunction, error) { return p("(x^2+-1)/y").Multiply(p("y/(x+1)")) }, "x+-1"},
		{"multiply by zero", func() (*RationalFunction, error) { return p("x/y").Multiply(p("0")) }, "0"},
		{"divide", func() (*RationalFunction, error) { return p("x/(x+1)").Divide(p("x^2/(x+1)")) }, "1/x"},
		{"divide by zero", func() (*RationalFunction, error) { return p("x").Divide(p("0")) }, "invalid"},
		{"constant sum", func() (*RationalFunction, error) { return p("1/3").Add(p("1/6")) }, "1/2"},
		{"pow", func() (*RationalFunction, error) { return p("x/(x+1)").Pow(2) }, "x^2/(x^2+2*x+1)"},
		{"negative pow", func() (*RationalFunction, error) { return p("x/(x+1)").Pow(-1) }, "(x+1)/x"},
		{"inf + 1", func() (*RationalFunction, error) { return p("inf").Add(p("1")) }, "inf"},
		{"inf + -inf", func() (*RationalFunction, error) { return p("inf").Add(p("-inf")) }, "invalid"},
		{"inf * 0", func() (*RationalFunction, error) { return p("inf").Multiply(p("0")) }, "invalid"},
		{"inf + x", func() (*RationalFunction, error) { return p("inf").Add(p("x")) }, "inf"},
		{"x - inf", func() (*RationalFunction, error) { return p("x").Subtract(p("inf")) }, "-inf"},
		{"inf * x", func() (*RationalFunction, error) { return p("inf").Multiply(p("x")) }, "invalid"},
		{"-inf / 2", func() (*RationalFunction, error) { return p("-inf").Divide(p("2")) }, "-inf"},
		{"1 / inf", func() (*RationalFunction, error) { return p("1").Divide(p("inf")) }, "0"},
		{"invalid + 1", func() (*RationalFunction, error) { return p("invalid").Add(p("1")) }, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInverses(t *testing.T) {
	reg, c := setup("x")
	r := MustParse(reg, c, "(x+1)/(2*x)")

	if got := r.AddInverse().String(); got != "(-x+-1)/(2*x)" {
		t.Errorf("AddInverse() = %v", got)
	}
	if got := r.MultInverse().String(); got != "2*x/(x+1)" {
		t.Errorf("MultInverse() = %v", got)
	}
	if got := MustParse(reg, c, "0").MultInverse(); !got.IsInvalid() {
		t.Errorf("MultInverse(0) = %v, want invalid", got)
	}
	if got := MustParse(reg, c, "-inf").MultInverse(); !got.IsZero() {
		t.Errorf("MultInverse(-inf) = %v, want 0", got)
	}
}

func TestParseNormalises(t *testing.T) {
	reg, c := setup("x", "y")
	tests := []struct {
		in   string
		want string
	}{
		{"(2*x+2)/(4*x+4)", "1/2"},
		{"(x^2+-1)/(x+-1)", "x+1"},
		{"x/(-2*y)", "-x/(2*y)"},
		{"-1.25", "-5/4"},
		{"1.2e3", "1200"},
		{"3/4", "3/4"},
		{" ( x + 1 ) ", "x+1"},
		{"-0", "0"},
	}

	for _, tt := range tests {
		got, err := Parse(reg, c, tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseUnparseRoundTrip(t *testing.T) {
	reg, c := setup("p", "q")
	literals := []string{"x/(x+1)", "3/4", "(p+1)/(2*q)", "-x/2", "inf", "-inf", "invalid", "0", "p^2+-q", "1/(p*q)"}

	for _, lit := range literals {
		r := MustParse(reg, c, lit)
		if r.String() != lit {
			t.Errorf("String(Parse(%q)) = %q", lit, r.String())
		}
		back, err := Parse(reg, c, r.String())
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", r.String(), err)
		}
		if !back.Equal(r) {
			t.Errorf("Parse(String(%v)) = %v", r, back)
		}
	}
}

func TestParseScalarLiteralsShadowParameters(t *testing.T) {
	reg, c := setup("inf", "nan", "invalid")
	tests := []struct {
		in   string
		want func(*RationalFunction) bool
	}{
		{"inf", (*RationalFunction).IsPosInf},
		{"-inf", (*RationalFunction).IsNegInf},
		{"nan", (*RationalFunction).IsInvalid},
		{"invalid", (*RationalFunction).IsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(reg, c, tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if !tt.want(got) || !got.IsConstant() {
				t.Errorf("Parse(%q) = %v, want the extended constant", tt.in, got)
			}
		})
	}

	if reg.Size() != 3 {
		t.Errorf("registry size = %d, want 3", reg.Size())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	reg, c := setup("x")
	inputs := []string{"", "x/0", "x//y", "(x+1", "x)/(y", "x/y/x", "1/(x", "x/", "1.5*x/2"}

	for _, in := range inputs {
		_, err := Parse(reg, c, in)
		if err == nil {
			t.Errorf("Parse(%q) should fail", in)
			continue
		}
		if !pverrors.HasModuleCode(err, pverrors.CodeRatFuncInvalidLiteral) {
			t.Errorf("Parse(%q) error = %v, want %s", in, err, pverrors.CodeRatFuncInvalidLiteral)
		}
	}
}

func TestPredicates(t *testing.T) {
	reg, c := setup("x")
	tests := []struct {
		lit                                 string
		zero, one, constant, posInf, negInf bool
		invalid                             bool
	}{
		{"0", true, false, true, false, false, false},
		{"1", false, true, true, false, false, false},
		{"x/(x+1)", false, false, false, false, false, false},
		{"7/3", false, false, true, false, false, false},
		{"inf", false, false, true, true, false, false},
		{"-inf", false, false, true, false, true, false},
		{"invalid", false, false, true, false, false, true},
	}

	for _, tt := range tests {
		r := MustParse(reg, c, tt.lit)
		got := []bool{r.IsZero(), r.IsOne(), r.IsConstant(), r.IsPosInf(), r.IsNegInf(), r.IsInvalid()}
		want := []bool{tt.zero, tt.one, tt.constant, tt.posInf, tt.negInf, tt.invalid}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("%s: predicate %d = %v, want %v", tt.lit, i, got[i], want[i])
			}
		}
	}

	if got := MustParse(reg, c, "7/3").Constant(); got.String() != "7/3" {
		t.Errorf("Constant() = %v, want 7/3", got)
	}
}

func TestNewWithZeroDenominator(t *testing.T) {
	reg, c := setup("x")
	tests := []struct {
		num  string
		want string
	}{
		{"3", "inf"},
		{"-2", "-inf"},
		{"0", "invalid"},
		{"x+1", "inf"},
	}

	for _, tt := range tests {
		r, err := New(poly.MustParse(reg, tt.num), poly.New(reg), c)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if r.String() != tt.want {
			t.Errorf("New(%s, 0) = %v, want %v", tt.num, r, tt.want)
		}
	}
}

func TestEvaluateAtPole(t *testing.T) {
	reg, c := setup("x")
	pt := param.NewPoint(reg)
	if got := MustParse(reg, c, "1/x").Evaluate(pt); !got.IsInvalid() {
		t.Errorf("Evaluate(1/x, x=0) = %v, want invalid", got)
	}
}

func TestCancellerFailurePropagates(t *testing.T) {
	reg, _ := setup("x")
	down := errors.New("backend down")
	failing := cancel.Func(func(num, den *poly.Polynomial) (*poly.Polynomial, *poly.Polynomial, error) {
		return nil, nil, down
	})

	a := FromParameter(reg, 0, failing)
	b := FromInt64(reg, 2, failing)
	_, err := a.Add(b.MultInverse())
	if !errors.Is(err, down) {
		t.Fatalf("Add() error = %v, want backend failure", err)
	}
	if !pverrors.HasModuleCode(err, pverrors.CodeCancelFailed) {
		t.Errorf("Add() error code = %v", err)
	}
}
