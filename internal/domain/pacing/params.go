package pacing

import "errors"

// ErrInvalidMinDaysLeft is returned when MinDaysLeft is below 1.
var ErrInvalidMinDaysLeft = errors.New("minimum days left must be at least 1")

// Params defines the configurable parts of the pacing computation.
type Params struct {
	// MinDaysLeft is the smallest divisor used when spreading the remaining
	// pages over the days until the deadline. A deadline that is today or
	// already passed is treated as this many days away.
	MinDaysLeft int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinDaysLeft: 1,
	}
}

// Validate checks the parameters.
func (p *Params) Validate() error {
	if p.MinDaysLeft < 1 {
		return ErrInvalidMinDaysLeft
	}
	return nil
}
