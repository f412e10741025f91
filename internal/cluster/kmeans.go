// Package cluster implements a fixed-seed, deterministic k-means over
// dense float64 vectors, and the dynamic cluster-count heuristic used
// by the clustered distillation strategy.
package cluster

import (
	"fmt"
	"math"
	"math/rand"
)

// ChooseK applies the stepwise cluster-count heuristic for n points.
func ChooseK(n int) int {
	switch {
	case n <= 10:
		return 3
	case n <= 40:
		return 5
	case n <= 120:
		return 7
	default:
		k := n / 20
		if k < 8 {
			k = 8
		}
		if k > 12 {
			k = 12
		}
		return k
	}
}

// Result is the outcome of a k-means run. Labels[i] is the cluster
// index assigned to points[i]; clusters whose centroid received no
// points are omitted, so Labels values are not guaranteed to be a
// contiguous 0..k-1 range, and Centroids is keyed by the same sparse
// label set.
type Result struct {
	Labels    []int
	Centroids map[int][]float64
}

// Run partitions points into k clusters using Lloyd's algorithm with
// a fixed-seed deterministic initialization. If centroid
// initialization degenerates and a cluster ends up empty, it is
// dropped rather than re-seeded (per the clustered strategy's
// tie-breaking rule).
func Run(points [][]float64, k int, seed int64) (*Result, error) {
	n := len(points)
	if n == 0 {
		return nil, fmt.Errorf("cluster: no points to cluster")
	}
	if k <= 0 {
		return nil, fmt.Errorf("cluster: invalid cluster count %d", k)
	}
	if k > n {
		k = n
	}
	dim := len(points[0])
	for _, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("cluster: inconsistent point dimension: want %d, got %d", dim, len(p))
		}
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := initCentroids(points, k, rng)

	labels := make([]int, n)
	const maxIterations = 100
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		newCentroids := recompute(points, labels, k, dim)
		if !changed && iter > 0 {
			centroids = newCentroids
			break
		}
		centroids = newCentroids
	}

	return buildResult(labels, centroids), nil
}

func initCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	perm := rng.Perm(n)
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		idx := perm[i%n]
		centroids[i] = append([]float64(nil), points[idx]...)
	}
	return centroids
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if c == nil {
			continue
		}
		d := squaredDistance(p, c)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

func recompute(points [][]float64, labels []int, k, dim int) [][]float64 {
	sums := make([][]float64, k)
	counts := make([]int, k)
	for i := range sums {
		sums[i] = make([]float64, dim)
	}

	for i, p := range points {
		label := labels[i]
		counts[label]++
		for d := 0; d < dim; d++ {
			sums[label][d] += p[d]
		}
	}

	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		if counts[i] == 0 {
			centroids[i] = nil
			continue
		}
		c := make([]float64, dim)
		for d := 0; d < dim; d++ {
			c[d] = sums[i][d] / float64(counts[i])
		}
		centroids[i] = c
	}
	return centroids
}

func buildResult(labels []int, centroids [][]float64) *Result {
	present := map[int]bool{}
	for _, l := range labels {
		present[l] = true
	}

	centroidMap := make(map[int][]float64, len(present))
	filteredLabels := make([]int, len(labels))
	for i, l := range labels {
		if centroids[l] == nil {
			// Degenerated to an empty cluster on a later recompute;
			// the point's prior assignment still stands but carries
			// no valid centroid. Leave the label as-is; it is omitted
			// from Centroids and callers drop empty clusters from output.
			filteredLabels[i] = l
			continue
		}
		filteredLabels[i] = l
		centroidMap[l] = centroids[l]
	}

	return &Result{Labels: filteredLabels, Centroids: centroidMap}
}
