package balancer

import "errors"

// ErrInvalidInput is returned when the requested group count is zero or
// negative, or when the total weight does not fit in an int.
var ErrInvalidInput = errors.New("invalid balancing input")
