package chemistry

import (
	"errors"
	"fmt"
	"math"
)

var ErrChemistryQuery = errors.New("chemistry query failed")

// ChemistryQueryError reports a failed provider query. Slice is -1 until the
// caller attaches the axial slice being computed.
type ChemistryQueryError struct {
	Slice int
	Op    string
	Err   error
}

func (e *ChemistryQueryError) Error() string {
	if e.Slice < 0 {
		return fmt.Sprintf("chemistry %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("chemistry %s at slice %d: %v", e.Op, e.Slice, e.Err)
}

func (e *ChemistryQueryError) Unwrap() error { return e.Err }

func (e *ChemistryQueryError) Is(target error) bool { return target == ErrChemistryQuery }

func NewQueryError(op string, err error) error {
	return &ChemistryQueryError{Slice: -1, Op: op, Err: err}
}

// AtSlice attaches a slice index to err, wrapping it as a ChemistryQueryError
// if it is not one already
func AtSlice(err error, slice int, op string) error {
	var cqe *ChemistryQueryError
	if errors.As(err, &cqe) {
		c := *cqe
		c.Slice = slice
		if len(c.Op) == 0 {
			c.Op = op
		}
		return &c
	}
	return &ChemistryQueryError{Slice: slice, Op: op, Err: err}
}

// CheckState rejects states no provider can evaluate
func CheckState(s State, nGas, nSurface int) error {
	switch {
	case !(s.T > 0) || math.IsInf(s.T, 0):
		return fmt.Errorf("temperature must be positive and finite, have %v", s.T)
	case !(s.P > 0) || math.IsInf(s.P, 0):
		return fmt.Errorf("pressure must be positive and finite, have %v", s.P)
	case len(s.Y) != nGas:
		return fmt.Errorf("have %d mass fractions for %d gas species", len(s.Y), nGas)
	case nSurface > 0 && len(s.Coverages) != nSurface:
		return fmt.Errorf("have %d coverages for %d surface species", len(s.Coverages), nSurface)
	}
	for k, y := range s.Y {
		if math.IsNaN(y) || math.IsInf(y, 0) || y < -1.e-8 {
			return fmt.Errorf("mass fraction %d is invalid: %v", k, y)
		}
	}
	for k, th := range s.Coverages {
		if math.IsNaN(th) || math.IsInf(th, 0) {
			return fmt.Errorf("coverage %d is invalid: %v", k, th)
		}
	}
	return nil
}
