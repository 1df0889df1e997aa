package bond

import (
	"errors"
	"fmt"
)

// ErrArgument marks caller mistakes detected before any computation.
var ErrArgument = errors.New("invalid argument")

// ArgumentError reports a delta request for a tenor that is not a market curve key.
type ArgumentError struct {
	Tenor     float64
	Available []float64
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("bond: tenor %g is not a market curve point (available %v)", e.Tenor, e.Available)
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrArgument
}
