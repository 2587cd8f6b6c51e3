package planner

import "errors"

// ErrInvalidAlreadyComplete is returned when the number of completed lessons is negative.
var ErrInvalidAlreadyComplete = errors.New("already complete must be a non-negative integer")
