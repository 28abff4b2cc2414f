package train

import "math"

// MeanStd computes the mean and the population standard
// deviation.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, x := range values {
		mean += x
	}
	mean /= float64(len(values))
	for _, x := range values {
		std += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(std / float64(len(values)))
}
