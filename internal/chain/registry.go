package chain

import (
	"fmt"
	"sort"
	"sync"
)

type kind uint8

const (
	kindSin kind = iota
	kindCos
	kindTan
	kindLog
	kindExp
	kindPow
	kindAdd
	kindSub
	kindMul
)

// Arity classes reported by Op.
const (
	ArityUnary  = "unary"
	ArityPower  = "power"
	ArityBinary = "binary"
)

// Op describes a registered op. Primitive ops map onto a dual-number
// operation; derived ops expand into a fixed list of primitive steps.
type Op struct {
	Name  string
	Doc   string
	Arity string
	// Expands is nil for primitives.
	Expands []Step

	kind kind
}

// Primitive reports whether o maps directly onto a dual-number operation.
func (o Op) Primitive() bool {
	return o.Expands == nil
}

var primitives = []Op{
	{Name: "sin", Doc: "sine", Arity: ArityUnary, kind: kindSin},
	{Name: "cos", Doc: "cosine", Arity: ArityUnary, kind: kindCos},
	{Name: "tan", Doc: "tangent, fails near odd multiples of π/2", Arity: ArityUnary, kind: kindTan},
	{Name: "log", Doc: "natural logarithm, fails for inputs <= 1e-10", Arity: ArityUnary, kind: kindLog},
	{Name: "exp", Doc: "exponential", Arity: ArityUnary, kind: kindExp},
	{Name: "pow", Doc: "raise to a real exponent", Arity: ArityPower, kind: kindPow},
	{Name: "add", Doc: "add a constant or x", Arity: ArityBinary, kind: kindAdd},
	{Name: "sub", Doc: "subtract a constant or x", Arity: ArityBinary, kind: kindSub},
	{Name: "mul", Doc: "multiply by a constant or x", Arity: ArityBinary, kind: kindMul},
}

// Registry maps op names to ops. It is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Op
}

// NewRegistry returns a Registry holding the primitives and the built-in
// derived ops.
func NewRegistry() *Registry {
	r := &Registry{ops: make(map[string]Op)}
	for _, op := range primitives {
		r.ops[op.Name] = op
	}

	builtin := []Op{
		{Name: "ln", Doc: "alias for log", Expands: []Step{Unary("log")}},
		{Name: "sqrt", Doc: "square root", Expands: []Step{Power(0.5)}},
		{Name: "square", Doc: "x²", Expands: []Step{Power(2)}},
		{Name: "recip", Doc: "1/x", Expands: []Step{Power(-1)}},
		{Name: "neg", Doc: "negation", Expands: []Step{WithConstant("mul", -1, 0)}},
	}
	for _, op := range builtin {
		if err := r.Register(op); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a derived op. Its expansion may reference primitives and
// ops registered earlier; it is flattened at registration.
func (r *Registry) Register(op Op) error {
	if op.Name == "" {
		return fmt.Errorf("%w: op needs a name", ErrInvalidStep)
	}
	if len(op.Expands) == 0 {
		return fmt.Errorf("%w: %s expands to nothing", ErrInvalidStep, op.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ops[op.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOp, op.Name)
	}

	var flat []Step
	for i, s := range op.Expands {
		base, ok := r.ops[s.Op]
		if !ok {
			return &StepError{Index: i, Op: s.Op, Err: ErrUnknownOp}
		}
		if base.Primitive() {
			if _, err := build(base, s); err != nil {
				return &StepError{Index: i, Op: s.Op, Err: err}
			}
			flat = append(flat, s)
			continue
		}
		if s.hasArgs() {
			return &StepError{Index: i, Op: s.Op, Err: fmt.Errorf("%w: derived op takes no arguments", ErrInvalidStep)}
		}
		flat = append(flat, base.Expands...)
	}

	op.Expands = flat
	op.Arity = ArityUnary
	r.ops[op.Name] = op
	return nil
}

// Lookup returns the op registered under name.
func (r *Registry) Lookup(name string) (Op, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.ops[name]
	if !ok {
		return Op{}, fmt.Errorf("%w: %s", ErrUnknownOp, name)
	}
	return op, nil
}

// Names returns every registered op name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Register adds a derived op to the default registry.
func Register(op Op) error { return defaultRegistry.Register(op) }

// Lookup finds an op in the default registry.
func Lookup(name string) (Op, error) { return defaultRegistry.Lookup(name) }

// Names lists the ops in the default registry.
func Names() []string { return defaultRegistry.Names() }

// Compile compiles steps against the default registry.
func Compile(name string, steps []Step) (*Chain, error) {
	return defaultRegistry.Compile(name, steps)
}
