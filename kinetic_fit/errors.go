package kinetic_fit

import (
	"errors"
	"fmt"
)

var ErrInsufficientData = errors.New("insufficient experimental data")

type InsufficientDataError struct {
	Points, Parameters int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%d experimental points cannot determine %d parameters, need at least %d",
		e.Points, e.Parameters, e.Parameters+1)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }
