// Package collections holds small generic slice helpers.
package collections

// Apply applies the applicator function to each item in the input slice.
func Apply[T, V any](items []T, applicator func(T) V) []V {
	result := make([]V, len(items))
	for i, item := range items {
		result[i] = applicator(item)
	}
	return result
}

// Filter returns the items for which keep returns true, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	var result []T
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

// MinBy returns the item with the smallest score. ok is false for an empty slice.
// Ties keep the earliest item.
func MinBy[T any](items []T, score func(T) int) (best T, ok bool) {
	bestScore := 0
	for _, item := range items {
		s := score(item)
		if !ok || s < bestScore {
			best, bestScore, ok = item, s, true
		}
	}
	return best, ok
}
