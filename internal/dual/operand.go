package dual

// Operand is the contract shared by Number and Array, so code composing
// dual-number operations can be written once for both variants.
type Operand[T any] interface {
	Add(o T) (T, error)
	Sub(o T) (T, error)
	Mul(o T) (T, error)
	Pow(p float64) T
	Sin() T
	Cos() T
	Tan() (T, error)
	Log() (T, error)
	Exp() T
	Advisories() []Advisory
}

var (
	_ Operand[Number] = Number{}
	_ Operand[Array]  = Array{}
)
