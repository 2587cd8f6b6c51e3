package balancer

// Weighted is implemented by values that expose a non-negative integer weight.
type Weighted interface {
	Weight() int
}
