package dual

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
)

func TestPoleDistance(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{0, math.Pi / 2},
		{math.Pi / 2, 0},
		{-math.Pi / 2, 0},
		{math.Pi, math.Pi / 2},
		{math.Pi/2 + 0.25, 0.25},
	}

	for _, tt := range tests {
		if got := PoleDistance(tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("PoleDistance(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}

	if got := PoleDistance(3 * math.Pi / 2); got >= HardMargin {
		t.Errorf("PoleDistance(3π/2) = %v, want below the hard margin", got)
	}
}

func TestGuardIndices(t *testing.T) {
	_, err := guardLog([]float64{0.5}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	adv, err := guardLog([]float64{1e-7}, true)
	if err != nil || adv == nil || adv.Index != -1 {
		t.Errorf("scalar advisory = %+v, %v", adv, err)
	}

	adv, err = guardTan([]float64{0, 1, math.Pi/2 - 1e-7}, false)
	if err != nil || adv == nil || adv.Index != 2 {
		t.Errorf("sequence advisory = %+v, %v", adv, err)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
		is   error
	}{
		{&DomainError{Op: "log", Reason: ReasonNonPositive, Index: -1, Value: -5}, "dual: log: real part <= 0 (x=-5)", ErrDomain},
		{&DomainError{Op: "tan", Reason: ReasonPole, Index: 3, Value: 1.5}, "(x[3]=1.5)", ErrDomain},
		{&ShapeMismatchError{Op: "add", LeftName: "a", Left: 3, RightName: "b", Right: 2}, "a length 3, b length 2", ErrShapeMismatch},
		{&TypeConstraintError{Part: "real", Type: "string"}, `invalid type string for "real"`, ErrTypeConstraint},
	}

	for _, tt := range tests {
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Errorf("%q does not contain %q", tt.err.Error(), tt.want)
		}
		if !errors.Is(tt.err, tt.is) {
			t.Errorf("%T does not unwrap to %v", tt.err, tt.is)
		}
	}
}

func TestAdvisoryString(t *testing.T) {
	a := Advisory{Op: "log", Message: AdviseNearZero, Index: -1, Value: 1e-7}
	if got := a.String(); !strings.HasPrefix(got, "log: ") || !strings.HasSuffix(got, "(x=1e-07)") {
		t.Errorf("String() = %q", got)
	}
	a.Index = 1
	if got := a.String(); !strings.HasSuffix(got, "(x[1]=1e-07)") {
		t.Errorf("String() = %q", got)
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Advise(Advisory{Op: "tan", Index: i})
		}(i)
	}
	wg.Wait()

	if c.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", c.Len())
	}
	got := c.Advisories()
	got[0].Op = "changed"
	if c.Advisories()[0].Op != "tan" {
		t.Error("Advisories exposed internal storage")
	}
}

func TestReport(t *testing.T) {
	advs := []Advisory{{Op: "log"}, {Op: "tan"}}

	var seen []string
	Report(SinkFunc(func(a Advisory) { seen = append(seen, a.Op) }), advs)
	if len(seen) != 2 || seen[0] != "log" || seen[1] != "tan" {
		t.Errorf("seen = %v", seen)
	}

	Report(nil, advs)
	Report(Discard, advs)
}

func TestValue(t *testing.T) {
	s := Scalar(2)
	if !s.IsScalar() || s.Len() != 1 || s.Kind().String() != "scalar" {
		t.Errorf("unexpected scalar %v", s)
	}
	if s.At(5) != 2 {
		t.Error("scalar At does not broadcast")
	}

	q := Sequence(1, 2, 3)
	if q.IsScalar() || q.Len() != 3 || q.Kind() != KindSequence {
		t.Errorf("unexpected sequence %v", q)
	}
	if _, ok := q.Float(); ok {
		t.Error("Float on a sequence reported ok")
	}

	if Scalar(1).Equal(Sequence(1)) {
		t.Error("scalar and one-element sequence compared equal")
	}
	if !Scalar(math.NaN()).Equal(Scalar(math.NaN())) {
		t.Error("identical NaN bits compared unequal")
	}
	if Scalar(0).Equal(Scalar(math.Copysign(0, -1))) {
		t.Error("+0 and -0 compared equal")
	}

	var zero Value
	if x, ok := zero.Float(); !ok || x != 0 {
		t.Errorf("zero Value = %v, %v", x, ok)
	}
	if Kind(7).String() != "Kind(7)" {
		t.Errorf("Kind(7).String() = %q", Kind(7).String())
	}
}
