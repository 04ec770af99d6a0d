package kernels

import "errors"

// Sentinel errors kernels wrap with context via fmt.Errorf("...: %w", ...).
var (
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrRankMismatch     = errors.New("rank mismatch")
	ErrDivideByZero     = errors.New("divide by zero")
	ErrZeroNorm         = errors.New("zero norm")
	ErrOutOfBounds      = errors.New("index out of bounds")
	ErrInvalidDimension = errors.New("invalid dimension")
)
