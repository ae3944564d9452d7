package PlugFlow1D

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration              = errors.New("invalid reactor configuration")
	ErrNonConvergentEnergyBalance = errors.New("energy balance did not converge")
)

type ConfigurationError struct {
	Field, Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErrorf(field, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NonConvergentEnergyBalance reports a segment whose outlet temperature could
// not be found within the iteration budget, or whose closure residual exceeds
// tolerance at the accepted temperature
type NonConvergentEnergyBalance struct {
	Slice      int
	Residual   float64 // W
	Iterations int
	Err        error
}

func (e *NonConvergentEnergyBalance) Error() string {
	msg := fmt.Sprintf("energy balance at slice %d: residual %.6g W after %d iterations",
		e.Slice, e.Residual, e.Iterations)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NonConvergentEnergyBalance) Unwrap() error { return e.Err }

func (e *NonConvergentEnergyBalance) Is(target error) bool {
	return target == ErrNonConvergentEnergyBalance
}
