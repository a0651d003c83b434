package merge

// CombinationsWithReplacement calls fn with every nondecreasing tuple of r
// indices in [0, n), in lexicographic order. fn must not retain idx. Returning
// false from fn stops the walk; the result reports whether it ran to the end.
func CombinationsWithReplacement(n, r int, fn func(idx []int) bool) bool {
	if r < 0 || n <= 0 && r > 0 {
		return true
	}
	idx := make([]int, r)
	for {
		if !fn(idx) {
			return false
		}
		// Rightmost position that can still grow.
		k := r - 1
		for k >= 0 && idx[k] == n-1 {
			k--
		}
		if k < 0 {
			return true
		}
		idx[k]++
		for j := k + 1; j < r; j++ {
			idx[j] = idx[k]
		}
	}
}
