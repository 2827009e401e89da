package abtest

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter reports an input outside its domain: a rate outside
	// (0,1), a non-positive count or ratio, or conversions above visitors.
	ErrInvalidParameter = errors.New("invalid_parameter")

	// ErrInfeasibleEffectSize reports an effect that pushes the treatment rate
	// to 100% or beyond.
	ErrInfeasibleEffectSize = errors.New("infeasible_effect_size")

	// ErrSampleSizeOverflow reports a required size that does not fit in an
	// int, which only happens for effects vanishingly close to zero.
	ErrSampleSizeOverflow = errors.New("sample_size_overflow")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
