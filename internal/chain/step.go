package chain

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandX makes a binary step combine with the chain input instead of a
// constant.
const OperandX = "x"

// Step is one stage of a chain program as written in config files.
type Step struct {
	Op       string   `yaml:"op" json:"op"`
	Exponent *float64 `yaml:"exponent,omitempty" json:"exponent,omitempty"`
	Real     float64  `yaml:"real,omitempty" json:"real,omitempty"`
	Dual     float64  `yaml:"dual,omitempty" json:"dual,omitempty"`
	Operand  string   `yaml:"operand,omitempty" json:"operand,omitempty"`
}

// Unary returns a step with no arguments.
func Unary(op string) Step {
	return Step{Op: op}
}

// Power returns a pow step.
func Power(p float64) Step {
	return Step{Op: "pow", Exponent: &p}
}

// WithConstant returns a binary step against the constant (real, dual).
func WithConstant(op string, real, dual float64) Step {
	return Step{Op: op, Real: real, Dual: dual}
}

// WithInput returns a binary step against the chain input.
func WithInput(op string) Step {
	return Step{Op: op, Operand: OperandX}
}

func (s Step) hasArgs() bool {
	return s.Exponent != nil || s.Real != 0 || s.Dual != 0 || s.Operand != ""
}

// String renders s in the compact form accepted by Parse.
func (s Step) String() string {
	switch {
	case s.Exponent != nil:
		return s.Op + ":" + formatFloat(*s.Exponent)
	case s.Operand != "":
		return s.Op + ":" + s.Operand
	case s.Dual != 0:
		return s.Op + ":" + formatFloat(s.Real) + ":" + formatFloat(s.Dual)
	case s.Real != 0:
		return s.Op + ":" + formatFloat(s.Real)
	default:
		return s.Op
	}
}

// Parse reads a comma-separated step list such as "sin,pow:3,add:2:1,mul:x".
// For pow the argument is the exponent; for add, sub and mul it is either x
// or a constant real part with an optional dual part.
func Parse(expr string) ([]Step, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	fields := strings.Split(expr, ",")
	steps := make([]Step, 0, len(fields))
	for i, f := range fields {
		parts := strings.Split(strings.TrimSpace(f), ":")
		s := Step{Op: strings.ToLower(parts[0])}
		if s.Op == "" {
			return nil, &StepError{Index: i, Op: f, Err: fmt.Errorf("%w: empty op", ErrInvalidStep)}
		}

		args := parts[1:]
		if len(args) > 2 {
			return nil, &StepError{Index: i, Op: s.Op, Err: fmt.Errorf("%w: too many arguments", ErrInvalidStep)}
		}
		if len(args) > 0 {
			if err := s.parseArgs(args); err != nil {
				return nil, &StepError{Index: i, Op: s.Op, Err: err}
			}
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func (s *Step) parseArgs(args []string) error {
	if s.Op == "pow" {
		if len(args) != 1 {
			return fmt.Errorf("%w: pow takes one exponent", ErrInvalidStep)
		}
		p, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("%w: exponent %q: %v", ErrInvalidStep, args[0], err)
		}
		s.Exponent = &p
		return nil
	}

	if strings.EqualFold(args[0], OperandX) {
		if len(args) != 1 {
			return fmt.Errorf("%w: operand x takes no dual part", ErrInvalidStep)
		}
		s.Operand = OperandX
		return nil
	}

	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("%w: constant %q: %v", ErrInvalidStep, a, err)
		}
		vals[i] = v
	}
	s.Real = vals[0]
	if len(vals) == 2 {
		s.Dual = vals[1]
	}
	return nil
}

// Format is the inverse of Parse.
func Format(steps []Step) string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.String()
	}
	return strings.Join(out, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
