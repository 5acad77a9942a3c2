package dual

import (
	"math"

	"github.com/san-kum/dualx/internal/kernel"
)

// Guard margins shared by tan and log.
const (
	// HardMargin is the distance to a singularity below which evaluation fails.
	HardMargin = 1e-10
	// SoftMargin is the distance below which evaluation succeeds with an advisory.
	SoftMargin = 1e-6
)

// PoleDistance returns |x - (π/2 + nπ)| for the nearest odd multiple of π/2.
// n is rounded half to even.
func PoleDistance(x float64) float64 {
	n := math.RoundToEven((x - math.Pi/2) / math.Pi)
	return math.Abs(x - (math.Pi/2 + n*math.Pi))
}

// guardTan scans the whole of xs for a hard violation before looking for a
// soft one, so an error always wins over an advisory.
func guardTan(xs []float64, scalar bool) (*Advisory, error) {
	if i := kernel.AnyIndex(xs, func(x float64) bool { return PoleDistance(x) < HardMargin }); i >= 0 {
		return nil, &DomainError{Op: "tan", Reason: ReasonPole, Index: elemIndex(i, scalar), Value: xs[i]}
	}
	if idx := kernel.AllIndex(xs, func(x float64) bool { return PoleDistance(x) < SoftMargin }); idx != nil {
		return newAdvisory("tan", AdvisePole, xs, idx, scalar), nil
	}
	return nil, nil
}

// guardLog applies the three log checks in order, each over the whole of xs.
func guardLog(xs []float64, scalar bool) (*Advisory, error) {
	if i := kernel.AnyIndex(xs, func(x float64) bool { return x <= 0 }); i >= 0 {
		return nil, &DomainError{Op: "log", Reason: ReasonNonPositive, Index: elemIndex(i, scalar), Value: xs[i]}
	}
	if i := kernel.AnyIndex(xs, func(x float64) bool { return x <= HardMargin }); i >= 0 {
		return nil, &DomainError{Op: "log", Reason: ReasonNearZero, Index: elemIndex(i, scalar), Value: xs[i]}
	}
	if idx := kernel.AllIndex(xs, func(x float64) bool { return x < SoftMargin }); idx != nil {
		return newAdvisory("log", AdviseNearZero, xs, idx, scalar), nil
	}
	return nil, nil
}

func elemIndex(i int, scalar bool) int {
	if scalar {
		return -1
	}
	return i
}

// appendAdvisory returns inherited plus adv, or inherited copied when adv is nil.
func appendAdvisory(inherited []Advisory, adv *Advisory) []Advisory {
	if adv == nil {
		return mergeAdvisories(inherited)
	}
	return mergeAdvisories(inherited, []Advisory{*adv})
}
