package curve

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain matches every *DomainError via errors.Is.
	ErrDomain = errors.New("curve: domain error")
	// ErrBootstrap matches every *BootstrapError via errors.Is.
	ErrBootstrap = errors.New("curve: bootstrap failed")
)

// DomainError reports malformed curve input: empty curve, non-positive or
// duplicate tenor, non-finite rate, bad frequency.
type DomainError struct {
	Op     string
	Tenor  float64
	Reason string
}

func (e *DomainError) Error() string {
	if e.Tenor != 0 {
		return fmt.Sprintf("%s: tenor %g: %s", e.Op, e.Tenor, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// BootstrapError reports the grid point whose par solve failed.
type BootstrapError struct {
	Index      int
	YearFrac   float64
	MarketRate float64
	Err        error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap: grid index %d (t=%.6f, rate=%.8f): %v", e.Index, e.YearFrac, e.MarketRate, e.Err)
}

func (e *BootstrapError) Is(target error) bool {
	return target == ErrBootstrap
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// Causes wrapped by BootstrapError besides solver errors.
var (
	ErrInfeasible = errors.New("no positive discount factor reprices the par instrument")
	ErrResidual   = errors.New("par residual above tolerance")
)
