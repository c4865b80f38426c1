package utils

import (
	"math"
)

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Sum calculates the sum of a slice of float64 values
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// Mean calculates the mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// SampleVariance calculates the sample (n-1) variance. Fewer than two values yield 0.
func SampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return sumSquaredDeviations(values) / float64(len(values)-1)
}

// SampleStdDev calculates the sample standard deviation
func SampleStdDev(values []float64) float64 {
	return math.Sqrt(SampleVariance(values))
}

func sumSquaredDeviations(values []float64) float64 {
	mean := Mean(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares
}

// Pearson returns the Pearson correlation coefficient of the first n paired values,
// where n is the shorter of the two lengths. ok is false when either series has zero
// variance over those points (or there are no points), in which case r is 0.
func Pearson(xs, ys []float64) (r float64, ok bool) {
	n := min(len(xs), len(ys))
	if n == 0 {
		return 0, false
	}
	xs, ys = xs[:n], ys[:n]
	meanX, meanY := Mean(xs), Mean(ys)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX*varY <= 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}
