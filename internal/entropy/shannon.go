// Package entropy measures how evenly a change is spread.
package entropy

import (
	"math"

	"github.com/masmgr/git-bard/internal/git"
)

// Normalized returns the Shannon entropy of weights divided by its maximum,
// log2(n). The result is in [0, 1]:
//   - 0 = everything in one bucket
//   - 1 = weights spread evenly
//
// Zero weights count as buckets. When every weight is zero the distribution
// is treated as uniform.
func Normalized(weights []int) float64 {
	if len(weights) < 2 {
		return 0.0
	}

	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 1.0
	}

	// -Σ(p_i × log2(p_i))
	h := 0.0
	for _, w := range weights {
		if w > 0 {
			p := float64(w) / float64(total)
			h -= p * math.Log2(p)
		}
	}

	n := math.Log2(float64(len(weights)))
	return clamp01(h / n)
}

// OfFiles returns the normalized entropy of churn across files.
func OfFiles(files []git.FileDiff) float64 {
	weights := make([]int, len(files))
	for i, f := range files {
		weights[i] = f.Churn()
	}
	return Normalized(weights)
}

// OfGroups returns the normalized entropy of the given churn per group.
func OfGroups(groups map[string]int) float64 {
	weights := make([]int, 0, len(groups))
	for _, w := range groups {
		weights = append(weights, w)
	}
	return Normalized(weights)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0.0
	}
	if v > 1 {
		return 1.0
	}
	return v
}
