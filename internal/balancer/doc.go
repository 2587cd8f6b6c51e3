// Package balancer condenses an ordered sequence of weighted items into
// contiguous groups whose sums approximate an even share of the total weight.
// The algorithm is a single greedy pass; it never reorders or splits items.
package balancer
