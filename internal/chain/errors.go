package chain

import (
	"errors"
	"fmt"

	"github.com/san-kum/dualx/internal/dual"
)

var (
	// ErrUnknownOp indicates a step naming an op that is not registered.
	ErrUnknownOp = errors.New("chain: unknown op")

	// ErrInvalidStep indicates a step whose arguments do not fit its op.
	ErrInvalidStep = errors.New("chain: invalid step")

	// ErrDuplicateOp indicates a registration under a name already in use.
	ErrDuplicateOp = errors.New("chain: op already registered")

	// ErrStrict indicates advisories raised while strict mode was on.
	ErrStrict = errors.New("chain: advisory raised in strict mode")
)

// StepError wraps a compile or evaluation failure with the step that caused it.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StrictError carries the advisories that failed a strict evaluation.
type StrictError struct {
	Advisories []dual.Advisory
}

func (e *StrictError) Error() string {
	if len(e.Advisories) == 0 {
		return ErrStrict.Error()
	}
	return fmt.Sprintf("%v: %s", ErrStrict, e.Advisories[0])
}

func (e *StrictError) Unwrap() error {
	return ErrStrict
}
