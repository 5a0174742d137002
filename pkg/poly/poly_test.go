package poly

import (
	"math/big"
	"math/rand"
	"testing"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
)

func newRegistry(names ...string) *param.Registry {
	reg := param.NewRegistry()
	for _, n := range names {
		reg.Register(n)
	}
	return reg
}

func randomTerm(rng *rand.Rand, nvars int) Term {
	exp := make([]int, nvars)
	for i := range exp {
		exp[i] = rng.Intn(4)
	}
	return Term{Exp: exp, Coef: big.NewInt(rng.Int63n(11) - 5)}
}

func randomPoly(rng *rand.Rand, reg *param.Registry, n int) *Polynomial {
	terms := make([]Term, n)
	for i := range terms {
		terms[i] = randomTerm(rng, reg.Size())
	}
	return FromTerms(reg, terms...)
}

func assertCanonical(t *testing.T, p *Polynomial) {
	t.Helper()
	for i, term := range p.terms {
		if term.Coef.Sign() == 0 {
			t.Fatalf("%v: zero coefficient at %d", p, i)
		}
		if len(term.Exp) != p.reg.Size() {
			t.Fatalf("%v: exponent vector %v not adjusted to %d", p, term.Exp, p.reg.Size())
		}
		if i > 0 && compareExp(p.terms[i-1].Exp, term.Exp) <= 0 {
			t.Fatalf("%v: terms %d and %d out of order", p, i-1, i)
		}
	}
}

func TestScenarioEvaluate(t *testing.T) {
	reg := newRegistry("p", "q")
	p := MustParse(reg, "2*p^2*q - 3*q + 5")

	if got := p.String(); got != "2*p^2*q+-3*q+5" {
		t.Errorf("String() = %v, want 2*p^2*q+-3*q+5", got)
	}

	pt := param.NewPoint(reg)
	pt.SetByName("p", fraction.FromInt64(2))
	pt.SetByName("q", fraction.FromInt64(1))
	if got := p.Evaluate(pt); got.String() != "10" {
		t.Errorf("Evaluate(p=2, q=1) = %v, want 10", got)
	}
	if got := p.EvaluateDouble([]float64{2, 1}); got != 10 {
		t.Errorf("EvaluateDouble(2, 1) = %v, want 10", got)
	}
}

func TestBuildFromParameters(t *testing.T) {
	reg := newRegistry("p", "q")
	p := FromParameter(reg, 0)
	q := FromParameter(reg, 1)

	built := p.Multiply(p).Multiply(q).MultiplyConstant(big.NewInt(2)).
		Subtract(q.MultiplyConstant(big.NewInt(3))).
		Add(FromInt64(reg, 5))

	if !built.Equal(MustParse(reg, "2*p^2*q+-3*q+5")) {
		t.Errorf("built = %v, want 2*p^2*q+-3*q+5", built)
	}
	assertCanonical(t, built)
}

func TestCanonicalFormAfterOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	reg := newRegistry("x", "y", "z")

	acc := New(reg)
	for i := 0; i < 60; i++ {
		q := randomPoly(rng, reg, rng.Intn(6)+1)
		switch i % 3 {
		case 0:
			acc = acc.Add(q)
		case 1:
			acc = acc.Subtract(q)
		default:
			acc = acc.Multiply(q).Add(q)
			if acc.NumTerms() > 200 {
				acc = q
			}
		}
		assertCanonical(t, acc)
	}
}

func TestAlgebraicIdentities(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	reg := newRegistry("a", "b")
	one := FromInt64(reg, 1)
	zero := New(reg)

	for i := 0; i < 50; i++ {
		p := randomPoly(rng, reg, rng.Intn(5)+1)
		q := randomPoly(rng, reg, rng.Intn(5)+1)
		r := randomPoly(rng, reg, rng.Intn(5)+1)

		if !p.Add(q).Equal(q.Add(p)) {
			t.Fatalf("add(%v, %v) is not commutative", p, q)
		}
		if !p.Add(q).Add(r).Equal(p.Add(q.Add(r))) {
			t.Fatalf("add(%v, %v, %v) is not associative", p, q, r)
		}
		if !p.Multiply(q).Equal(q.Multiply(p)) {
			t.Fatalf("multiply(%v, %v) is not commutative", p, q)
		}
		if !p.Multiply(q.Add(r)).Equal(p.Multiply(q).Add(p.Multiply(r))) {
			t.Fatalf("multiply does not distribute over %v, %v, %v", p, q, r)
		}
		if !p.Multiply(one).Equal(p) {
			t.Fatalf("multiply(%v, 1) = %v", p, p.Multiply(one))
		}
		if !p.Multiply(zero).IsZero() {
			t.Fatalf("multiply(%v, 0) = %v", p, p.Multiply(zero))
		}
		if !p.Subtract(p).IsZero() {
			t.Fatalf("%v - itself = %v", p, p.Subtract(p))
		}
		if !p.Negate().Negate().Equal(p) {
			t.Fatalf("double negation of %v changed it", p)
		}
	}
}

func TestGeobucketMatchesNaiveSum(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	reg := newRegistry("x", "y", "z")

	for round := 0; round < 20; round++ {
		terms := make([]Term, rng.Intn(300)+1)
		for i := range terms {
			terms[i] = randomTerm(rng, reg.Size())
		}

		naive := New(reg)
		for _, term := range terms {
			if term.Coef.Sign() != 0 {
				naive = naive.Add(fromSorted(reg, []Term{term}))
			}
		}

		rng.Shuffle(len(terms), func(i, j int) { terms[i], terms[j] = terms[j], terms[i] })
		g := NewGeobucket(reg)
		for i, term := range terms {
			if i%7 == 0 {
				g.Add(FromTerms(reg, term))
			} else {
				g.AddTerm(term)
			}
		}
		got := g.Canonicalise()

		if !got.Equal(naive) {
			t.Fatalf("round %d: Canonicalise() = %v, want %v", round, got, naive)
		}
		assertCanonical(t, got)
		if g.Len() != 0 {
			t.Errorf("Len() after Canonicalise() = %d, want 0", g.Len())
		}
	}
}

func TestGeobucketCascade(t *testing.T) {
	reg := newRegistry("x")
	g := NewGeobucket(reg)
	for e := 0; e < 40; e++ {
		g.AddTerm(NewTerm(big.NewInt(1), e))
	}
	for i, b := range g.buckets {
		if len(b) > bucketCapacity(i) {
			t.Errorf("bucket %d holds %d terms, capacity %d", i+1, len(b), bucketCapacity(i))
		}
	}
	if got := g.Canonicalise().NumTerms(); got != 40 {
		t.Errorf("NumTerms() = %d, want 40", got)
	}
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 0}, {4, 0}, {5, 1}, {16, 1}, {17, 2}, {64, 2}, {65, 3},
	}
	for _, tt := range tests {
		if got := bucketIndex(tt.n); got != tt.want {
			t.Errorf("bucketIndex(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestAdjustAfterRegistryGrowth(t *testing.T) {
	reg := newRegistry("x")
	p := MustParse(reg, "x^2+1")

	reg.Register("y")
	q := MustParse(reg, "y")
	sum := p.Add(q)

	if got := sum.String(); got != "x^2+y+1" {
		t.Errorf("String() = %v, want x^2+y+1", got)
	}
	assertCanonical(t, sum)
	assertCanonical(t, p)
}

func TestParseUnparseRoundTrip(t *testing.T) {
	reg := newRegistry("p", "q", "r")
	literals := []string{
		"0", "7", "-7", "p", "-p", "p*q", "2*p^2*q+-3*q+5", "p^10+-1",
		"q+123456789012345678901234567890*r^3",
	}

	for _, lit := range literals {
		p := MustParse(reg, lit)
		if p.String() != lit {
			t.Errorf("String(Parse(%q)) = %q", lit, p.String())
		}
		back, err := Parse(reg, p.String())
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", p.String(), err)
		}
		if !back.Equal(p) {
			t.Errorf("Parse(String(%v)) = %v", p, back)
		}
	}
}

func TestParseNormalises(t *testing.T) {
	reg := newRegistry("x", "y")
	tests := []struct {
		in   string
		want string
	}{
		{"x*x", "x^2"},
		{"y*x", "x*y"},
		{"2*3*x", "6*x"},
		{"x + x - 2*x", "0"},
		{"1 + x", "x+1"},
		{"-x - -y", "-x+y"},
		{"x^0", "1"},
		{" 4 * y ^ 2 ", "4*y^2"},
	}

	for _, tt := range tests {
		got, err := Parse(reg, tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	reg := newRegistry("x")
	inputs := []string{"", "x+", "x^", "1.5*x", "3/4", "x**2", "(x)", "x y", "2x"}

	for _, in := range inputs {
		_, err := Parse(reg, in)
		if err == nil {
			t.Errorf("Parse(%q) should fail", in)
			continue
		}
		if !pverrors.HasModuleCode(err, pverrors.CodePolyInvalidLiteral) {
			t.Errorf("Parse(%q) error code = %v", in, err)
		}
	}
}

func TestPredicatesAndDegree(t *testing.T) {
	reg := newRegistry("x", "y")
	p := MustParse(reg, "x^3*y+x*y^2+4")

	if p.Degree() != 4 || p.DegreeIn(0) != 3 || p.DegreeIn(1) != 2 {
		t.Errorf("degrees = %d, %d, %d", p.Degree(), p.DegreeIn(0), p.DegreeIn(1))
	}
	if New(reg).Degree() != -1 {
		t.Errorf("Degree(0) = %d, want -1", New(reg).Degree())
	}
	if p.IsConstant() || !FromInt64(reg, 3).IsConstant() || !New(reg).IsConstant() {
		t.Error("IsConstant() mismatch")
	}
	if !FromInt64(reg, 1).IsOne() || FromInt64(reg, -1).IsOne() {
		t.Error("IsOne() mismatch")
	}
	if got := FromInt64(reg, -9).Constant(); got.Int64() != -9 {
		t.Errorf("Constant() = %v, want -9", got)
	}
	if lt := p.LeadingTerm(); lt.Coef.Int64() != 1 || lt.Exp[0] != 3 {
		t.Errorf("LeadingTerm() = %v", lt)
	}
	if vars := MustParse(reg, "y^2+3").Variables(); len(vars) != 1 || vars[0] != 1 {
		t.Errorf("Variables() = %v, want [1]", vars)
	}
}

func TestPow(t *testing.T) {
	reg := newRegistry("x")
	got := MustParse(reg, "x+1").Pow(3)
	if got.String() != "x^3+3*x^2+3*x+1" {
		t.Errorf("Pow(3) = %v", got)
	}
	if !MustParse(reg, "x+1").Pow(0).IsOne() {
		t.Error("Pow(0) should be 1")
	}
}

func TestDivideExact(t *testing.T) {
	reg := newRegistry("x", "y")
	a := MustParse(reg, "x+y")
	b := MustParse(reg, "2*x+-3*y^2+1")

	q, err := a.Multiply(b).DivideExact(b)
	if err != nil {
		t.Fatalf("DivideExact() error = %v", err)
	}
	if !q.Equal(a) {
		t.Errorf("DivideExact() = %v, want %v", q, a)
	}

	if _, err := MustParse(reg, "x^2+1").DivideExact(MustParse(reg, "x+1")); err == nil {
		t.Error("DivideExact(x^2+1, x+1) should fail")
	} else if !pverrors.HasModuleCode(err, pverrors.CodePolyInexactDivision) {
		t.Errorf("error code = %v", err)
	}

	if _, err := MustParse(reg, "3*x+2").DivideExact(FromInt64(reg, 2)); err == nil {
		t.Error("DivideExact(3x+2, 2) should fail")
	}
}

func TestContentAndCoefficients(t *testing.T) {
	reg := newRegistry("x", "y")
	p := MustParse(reg, "6*x^2*y+-9*x+12*y")

	if got := p.Content(); got.Int64() != 3 {
		t.Errorf("Content() = %v, want 3", got)
	}
	if got := p.DivideByInt(big.NewInt(3)).String(); got != "2*x^2*y+-3*x+4*y" {
		t.Errorf("DivideByInt(3) = %v", got)
	}

	coeffs := p.CoefficientsIn(0)
	want := []string{"12*y", "-9", "6*y"}
	if len(coeffs) != len(want) {
		t.Fatalf("CoefficientsIn(0) has %d entries, want %d", len(coeffs), len(want))
	}
	for k, c := range coeffs {
		if c.String() != want[k] {
			t.Errorf("coefficient of x^%d = %v, want %v", k, c, want[k])
		}
	}

	rebuilt := New(reg)
	for k, c := range coeffs {
		rebuilt = rebuilt.Add(c.ShiftIn(0, k))
	}
	if !rebuilt.Equal(p) {
		t.Errorf("recombined coefficients = %v, want %v", rebuilt, p)
	}
}

func TestLeadingCoefficientIn(t *testing.T) {
	reg := newRegistry("x", "y")
	tests := []struct {
		name    string
		poly    string
		index   int
		want    string
		wantDeg int
	}{
		{"outer variable", "6*x^2*y+-9*x+12*y", 0, "6*y", 2},
		{"inner variable", "6*x^2*y+-9*x+12*y", 1, "6*x^2+12", 1},
		{"absent variable", "x+1", 1, "x+1", 0},
		{"zero", "0", 0, "0", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MustParse(reg, tt.poly)
			lc, deg := p.LeadingCoefficientIn(tt.index)
			if lc.String() != tt.want || deg != tt.wantDeg {
				t.Errorf("LeadingCoefficientIn(%d) = (%v, %d), want (%v, %d)", tt.index, lc, deg, tt.want, tt.wantDeg)
			}
			if deg >= 0 {
				coeffs := p.CoefficientsIn(tt.index)
				if !coeffs[deg].Equal(lc) {
					t.Errorf("LeadingCoefficientIn(%d) = %v, CoefficientsIn gives %v", tt.index, lc, coeffs[deg])
				}
			}
		})
	}
}

func TestEvaluateSkipsUnusedParameters(t *testing.T) {
	reg := newRegistry("x", "y")
	p := MustParse(reg, "3*y+1")

	pt := param.NewPoint(reg)
	pt.Set(0, fraction.Invalid())
	pt.Set(1, fraction.New(1, 3))

	if got := p.Evaluate(pt); got.String() != "2" {
		t.Errorf("Evaluate() = %v, want 2", got)
	}
}
