package balancer

import (
	"fmt"
	"math"
)

// Balance splits items into contiguous groups whose weights approach an even
// share of the total. The threshold is Average(items, weightOf, targetCount).
//
// Every group takes at least one item and keeps taking items while its running
// weight is below the threshold. Groups never look further ahead than the next
// item, so the final group may overshoot and the number of groups is not forced
// to equal targetCount. When the threshold is zero every item forms its own group.
//
// The returned groups alias the input slice; concatenating them yields items.
func Balance[T any](items []T, weightOf func(T) int, targetCount int) ([][]T, error) {
	groups, _, err := BalanceWithAverage(items, weightOf, targetCount)
	return groups, err
}

// BalanceWithAverage is Balance that also reports the threshold it used.
func BalanceWithAverage[T any](items []T, weightOf func(T) int, targetCount int) ([][]T, int, error) {
	average, err := Average(items, weightOf, targetCount)
	if err != nil {
		return nil, 0, err
	}

	groups := make([][]T, 0, min(targetCount, len(items)))
	for cursor := 0; cursor < len(items); {
		start := cursor
		sum := 0
		for {
			sum += weightOf(items[cursor])
			cursor++
			if sum >= average || cursor == len(items) {
				break
			}
		}
		groups = append(groups, items[start:cursor:cursor])
	}

	return groups, average, nil
}

// Average returns floor(total weight / targetCount). Totals that do not fit
// in an int are rejected.
func Average[T any](items []T, weightOf func(T) int, targetCount int) (int, error) {
	if targetCount <= 0 {
		return 0, fmt.Errorf("%w: target count must be a positive integer, got %d", ErrInvalidInput, targetCount)
	}

	total := 0
	for i, item := range items {
		weight := weightOf(item)
		if (weight > 0 && total > math.MaxInt-weight) || (weight < 0 && total < math.MinInt-weight) {
			return 0, fmt.Errorf("%w: total weight overflows at item %d", ErrInvalidInput, i)
		}
		total += weight
	}
	return total / targetCount, nil
}

// BalanceWeighted is Balance for items that carry their own weight.
func BalanceWeighted[T Weighted](items []T, targetCount int) ([][]T, error) {
	return Balance(items, func(item T) int { return item.Weight() }, targetCount)
}

// BalanceInts balances plain integer weights.
func BalanceInts(weights []int, targetCount int) ([][]int, error) {
	return Balance(weights, identity, targetCount)
}

func identity(w int) int {
	return w
}
