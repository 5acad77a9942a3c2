package dual

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Advisory messages.
const (
	AdvisePole     = "value close to an odd multiple of π/2; numerical instability possible"
	AdviseNearZero = "log input close to zero; numerical instability possible"
)

// Advisory is a non-fatal numerical-instability signal. The computation that
// raised it completed and its result is valid.
type Advisory struct {
	Op      string
	Message string
	// Index of the first element inside the soft margin, -1 for scalars.
	Index int
	Value float64
	// Indices lists every element inside the soft margin. Nil for scalars.
	Indices []int

	// id identifies the guarded call that raised the advisory. Zero for
	// advisories built outside this package.
	id uint64
}

var advisorySeq atomic.Uint64

func newAdvisory(op, msg string, xs []float64, flagged []int, scalar bool) *Advisory {
	a := &Advisory{Op: op, Message: msg, Index: -1, Value: xs[flagged[0]], id: advisorySeq.Add(1)}
	if !scalar {
		a.Index = flagged[0]
		a.Indices = flagged
	}
	return a
}

// Elements returns the sequence indices a covers, or nil for a scalar.
func (a Advisory) Elements() []int {
	if a.Indices != nil {
		return append([]int(nil), a.Indices...)
	}
	if a.Index >= 0 {
		return []int{a.Index}
	}
	return nil
}

func (a Advisory) String() string {
	switch {
	case a.Index < 0:
		return fmt.Sprintf("%s: %s (x=%g)", a.Op, a.Message, a.Value)
	case len(a.Indices) > 1:
		return fmt.Sprintf("%s: %s (x[%d]=%g and %d more)", a.Op, a.Message, a.Index, a.Value, len(a.Indices)-1)
	default:
		return fmt.Sprintf("%s: %s (x[%d]=%g)", a.Op, a.Message, a.Index, a.Value)
	}
}

// Sink receives advisories.
type Sink interface {
	Advise(a Advisory)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(a Advisory)

func (f SinkFunc) Advise(a Advisory) { f(a) }

// Discard drops every advisory.
var Discard Sink = SinkFunc(func(Advisory) {})

// Collector is a Sink that keeps advisories in arrival order.
// It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Advisory
}

func (c *Collector) Advise(a Advisory) {
	c.mu.Lock()
	c.items = append(c.items, a)
	c.mu.Unlock()
}

// Advisories returns a copy of everything collected so far.
func (c *Collector) Advisories() []Advisory {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Advisory, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of collected advisories.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Report forwards advisories to s. A nil sink discards them.
func Report(s Sink, advisories []Advisory) {
	if s == nil {
		return
	}
	for _, a := range advisories {
		s.Advise(a)
	}
}

// mergeAdvisories returns a fresh slice so results never share backing
// storage with their operands. An advisory reached through both operands of
// a binary op appears once.
func mergeAdvisories(lists ...[]Advisory) []Advisory {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	if n == 0 {
		return nil
	}
	out := make([]Advisory, 0, n)
	seen := make(map[uint64]struct{}, n)
	for _, l := range lists {
		for _, a := range l {
			if a.id != 0 {
				if _, dup := seen[a.id]; dup {
					continue
				}
				seen[a.id] = struct{}{}
			}
			out = append(out, a)
		}
	}
	return out
}

// cloneAdvisories copies advs deeply for callers outside the package.
func cloneAdvisories(advs []Advisory) []Advisory {
	if len(advs) == 0 {
		return nil
	}
	out := make([]Advisory, len(advs))
	for i, a := range advs {
		if a.Indices != nil {
			a.Indices = append([]int(nil), a.Indices...)
		}
		out[i] = a
	}
	return out
}
