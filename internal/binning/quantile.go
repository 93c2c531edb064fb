package binning

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var ErrEmptySample = errors.New("no finite values to derive quantiles from")

// QCut assigns every value to one of k quantile bins derived from the
// values themselves. The result is in input order.
func QCut(values []float64, k int) ([]int, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: bin count %d", ErrInvalidBins, k)
	}
	return QCutAt(values, Fractions(k))
}

// QCutAt is QCut with explicit quantile fractions in ascending order.
func QCutAt(values, fractions []float64) ([]int, error) {
	edges, err := Edges(values, fractions)
	if err != nil {
		return nil, err
	}
	return Assign(values, edges), nil
}

// Fractions returns k evenly spaced fractions 1/k .. 1. The zero fraction is
// left out: everything at or below the minimum already lands in bin 0.
func Fractions(k int) []float64 {
	if k < 1 {
		return nil
	}
	step := 1.0 / float64(k)
	out := make([]float64, k)
	for i := 1; i < k; i++ {
		out[i-1] = float64(i) * step
	}
	out[k-1] = 1
	return out
}

// Edges computes the quantile value at every fraction over the sorted,
// de-duplicated, NaN-free sample of values.
func Edges(values, fractions []float64) ([]float64, error) {
	if len(fractions) == 0 {
		return nil, fmt.Errorf("%w: no quantile fractions", ErrInvalidBins)
	}
	for i, q := range fractions {
		if math.IsNaN(q) || q < 0 || q > 1 {
			return nil, fmt.Errorf("%w: fraction %g outside [0, 1]", ErrInvalidBins, q)
		}
		if i > 0 && q < fractions[i-1] {
			return nil, fmt.Errorf("%w: fractions not ascending at index %d", ErrInvalidBins, i)
		}
	}
	sample := uniqueSorted(values)
	if len(sample) == 0 {
		return nil, ErrEmptySample
	}
	edges := make([]float64, len(fractions))
	for i, q := range fractions {
		edges[i] = Quantile(sample, q)
	}
	return edges, nil
}

// Assign returns, for each value, the count of edges strictly below it.
// NaN sorts after every edge.
func Assign(values, edges []float64) []int {
	ids := make([]int, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			ids[i] = len(edges)
			continue
		}
		ids[i] = searchLeft(edges, v)
	}
	return ids
}

func searchLeft(edges []float64, v float64) int {
	lo, hi := 0, len(edges)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if edges[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Quantile interpolates linearly between the closest ranks of a sorted
// sample. The virtual index and the two-sided lerp match numpy's "linear"
// method bit for bit.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	virtual := float64(n)*q - q
	prev := math.Floor(virtual)
	gamma := virtual - prev
	lo := clampIndex(int(prev), n)
	hi := clampIndex(int(prev)+1, n)
	if lo == n-1 && virtual >= float64(n-1) {
		return sorted[n-1]
	}
	return lerp(sorted[lo], sorted[hi], gamma)
}

func lerp(a, b, t float64) float64 {
	diff := b - a
	if t >= 0.5 {
		return b - diff*(1-t)
	}
	return a + diff*t
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func uniqueSorted(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
