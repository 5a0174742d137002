package cancel

import (
	"errors"
	"math/big"
	"math/rand"
	"testing"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/param"
	"github.com/msto63/paramval/pkg/poly"
)

func newRegistry(names ...string) *param.Registry {
	reg := param.NewRegistry()
	for _, n := range names {
		reg.Register(n)
	}
	return reg
}

func TestPolyGCD(t *testing.T) {
	reg := newRegistry("x", "y", "z")
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"shared linear factor", "(x+1)*(x-2)", "(x+1)*(x+3)", "x+1"},
		{"multivariate factor", "(x+y)*(x*y+1)", "(x+y)*(x-y)", "x+y"},
		{"integer content", "6*x+6", "4*x+4", "2*x+2"},
		{"constant operand", "6", "4*x+2", "2"},
		{"coprime", "x+1", "y", "1"},
		{"negative inputs", "-x^2+1", "-x+1", "x+-1"},
		{"zero operand", "0", "-3*y", "3*y"},
		{"factor in inner variable", "y*z+z", "x*y+x", "y+1"},
		{"identical", "x^2*y+z", "x^2*y+z", "x^2*y+z"},
		{"disjoint variables", "6*x^2+4", "10*y*z+2", "2"},
		{"disjoint with negative content", "-4*x*y+-8", "6*z", "2"},
		{"constant coefficient in outer variable", "(x+1)*(2*y+2)", "(x+1)*(4*y*z+6)", "2*x+2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PolyGCD(product(t, reg, tt.a), product(t, reg, tt.b))
			if got.String() != tt.want {
				t.Errorf("PolyGCD(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// product parses a "(f)*(g)*..." literal by multiplying its parenthesised factors
func product(t *testing.T, reg *param.Registry, s string) *poly.Polynomial {
	t.Helper()
	result := poly.FromInt64(reg, 1)
	depth, start := 0, 0
	factors := []string{}
	for i, c := range s {
		switch c {
		case '(':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				factors = append(factors, s[start:i])
			}
		}
	}
	if len(factors) == 0 {
		factors = []string{s}
	}
	for _, f := range factors {
		p, err := poly.Parse(reg, f)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", f, err)
		}
		result = result.Multiply(p)
	}
	return result
}

func randomPoly(rng *rand.Rand, reg *param.Registry) *poly.Polynomial {
	terms := make([]poly.Term, rng.Intn(3)+1)
	for i := range terms {
		exp := make([]int, reg.Size())
		for j := range exp {
			exp[j] = rng.Intn(3)
		}
		terms[i] = poly.Term{Exp: exp, Coef: big.NewInt(rng.Int63n(7) - 3)}
	}
	return poly.FromTerms(reg, terms...)
}

func TestPolyGCDContainsConstructedFactor(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	reg := newRegistry("x", "y")

	for i := 0; i < 40; i++ {
		g, f1, f2 := randomPoly(rng, reg), randomPoly(rng, reg), randomPoly(rng, reg)
		if g.IsZero() || f1.IsZero() || f2.IsZero() {
			continue
		}
		a, b := g.Multiply(f1), g.Multiply(f2)
		gcd := PolyGCD(a, b)

		if _, err := gcd.DivideExact(g); err != nil {
			t.Fatalf("gcd(%v, %v) = %v does not contain %v", a, b, gcd, g)
		}
		if _, err := a.DivideExact(gcd); err != nil {
			t.Fatalf("gcd %v does not divide %v", gcd, a)
		}
		if _, err := b.DivideExact(gcd); err != nil {
			t.Fatalf("gcd %v does not divide %v", gcd, b)
		}
	}
}

func TestPolyGCDThreeVariables(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	reg := newRegistry("x", "y", "z")

	for i := 0; i < 30; i++ {
		g, f1, f2 := randomPoly(rng, reg), randomPoly(rng, reg), randomPoly(rng, reg)
		if g.IsZero() || f1.IsZero() || f2.IsZero() {
			continue
		}
		a, b := g.Multiply(f1), g.Multiply(f2)
		gcd := PolyGCD(a, b)

		if _, err := gcd.DivideExact(g); err != nil {
			t.Fatalf("gcd(%v, %v) = %v does not contain %v", a, b, gcd, g)
		}
		if _, err := a.DivideExact(gcd); err != nil {
			t.Fatalf("gcd %v does not divide %v", gcd, a)
		}
		if _, err := b.DivideExact(gcd); err != nil {
			t.Fatalf("gcd %v does not divide %v", gcd, b)
		}
	}
}

func TestCancel(t *testing.T) {
	reg := newRegistry("x", "y")
	tests := []struct {
		name     string
		num, den string
		wantNum  string
		wantDen  string
	}{
		{"difference of squares", "x^2+-1", "x+-1", "x+1", "1"},
		{"negative denominator", "2*x", "-4*x", "-1", "2"},
		{"zero numerator", "0", "x+1", "0", "1"},
		{"already reduced", "x", "y+1", "x", "y+1"},
		{"integer content only", "6*x+3", "9*y", "2*x+1", "3*y"},
		{"zero denominator", "x", "0", "x", "0"},
	}

	gcd := NewGCD()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, d, err := gcd.Cancel(poly.MustParse(reg, tt.num), poly.MustParse(reg, tt.den))
			if err != nil {
				t.Fatalf("Cancel() error = %v", err)
			}
			if n.String() != tt.wantNum || d.String() != tt.wantDen {
				t.Errorf("Cancel(%s, %s) = (%v, %v), want (%s, %s)", tt.num, tt.den, n, d, tt.wantNum, tt.wantDen)
			}
		})
	}
}

func TestMemo(t *testing.T) {
	reg := newRegistry("x")
	calls := 0
	counting := Func(func(num, den *poly.Polynomial) (*poly.Polynomial, *poly.Polynomial, error) {
		calls++
		return NewGCD().Cancel(num, den)
	})
	memo := NewMemo(counting, 16)

	for i := 0; i < 3; i++ {
		n, d, err := memo.Cancel(poly.MustParse(reg, "x^2+-1"), poly.MustParse(reg, "x+1"))
		if err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if n.String() != "x+-1" || d.String() != "1" {
			t.Errorf("Cancel() = (%v, %v), want (x+-1, 1)", n, d)
		}
	}

	if calls != 1 {
		t.Errorf("wrapped canceller called %d times, want 1", calls)
	}
	if stats := memo.Stats(); stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v, want 2 hits and 1 miss", stats)
	}
}

func TestMemoSeparatesRegistries(t *testing.T) {
	memo := NewMemo(NewGCD(), 16)
	first := newRegistry("x")
	second := newRegistry("y", "x")

	if _, _, err := memo.Cancel(poly.MustParse(first, "x"), poly.MustParse(first, "x+1")); err != nil {
		t.Fatal(err)
	}
	n, _, err := memo.Cancel(poly.MustParse(second, "x"), poly.MustParse(second, "x+1"))
	if err != nil {
		t.Fatal(err)
	}
	if n.Registry() != second {
		t.Error("Memo returned a polynomial bound to another registry")
	}
}

func TestFuncWrapsFailures(t *testing.T) {
	reg := newRegistry("x")
	backendDown := errors.New("backend down")
	failing := Func(func(num, den *poly.Polynomial) (*poly.Polynomial, *poly.Polynomial, error) {
		return nil, nil, backendDown
	})

	_, _, err := failing.Cancel(poly.MustParse(reg, "x"), poly.MustParse(reg, "x"))
	if !pverrors.HasModuleCode(err, pverrors.CodeCancelFailed) {
		t.Errorf("error code = %v, want %v", err, pverrors.CodeCancelFailed)
	}
	if !errors.Is(err, backendDown) {
		t.Error("Cancel() error should wrap the backend error")
	}

	_, _, err = NewMemo(failing, 4).Cancel(poly.MustParse(reg, "x"), poly.MustParse(reg, "x"))
	if err == nil {
		t.Error("Memo should pass failures through")
	}
}

func BenchmarkPolyGCDThreeVariables(b *testing.B) {
	reg := newRegistry("x", "y", "z")
	g := poly.MustParse(reg, "x*y+z^2+-3")
	f1 := poly.MustParse(reg, "x^2*z+y+2")
	f2 := poly.MustParse(reg, "y^2*z+-x+1")
	p, q := g.Multiply(f1), g.Multiply(f2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PolyGCD(p, q)
	}
}
