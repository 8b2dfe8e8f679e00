package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// popStdDev is the population standard deviation.
func popStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	_, variance := stat.PopMeanVariance(xs, nil)
	return math.Sqrt(variance)
}

func indexes(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// Slope is the least-squares slope of `ys` against their index; 0 for fewer than 2 values.
func Slope(ys []float64) float64 {
	if len(ys) < 2 {
		return 0
	}
	_, beta := stat.LinearRegression(indexes(len(ys)), ys, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0
	}
	return beta
}

// Median of `xs`, which is left untouched.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// PopStdDev is the exported population standard deviation.
func PopStdDev(xs []float64) float64 { return popStdDev(xs) }

// Mean is the arithmetic mean, 0 when empty.
func Mean(xs []float64) float64 { return mean(xs) }
