package estimator

import (
	"math"

	"seismo-index-lab/internal/domain"
)

// runningCounts returns the cumulative event count Nm[i] = i+1 as floats.
func runningCounts(n int) []float64 {
	counts := make([]float64, n)
	for i := range counts {
		counts[i] = float64(i + 1)
	}
	return counts
}

// computeTrajectory calculates the per-event index value
// log10(Nm[i]) - log10(Veq[i]) + b*Mc over the retained events.
// Volumes must be the rebased, time-ordered Veq.
func computeTrajectory(volumes []float64, b, mc float64) []float64 {
	traj := make([]float64, len(volumes))
	for i, v := range volumes {
		nm := float64(i + 1)
		traj[i] = math.Log10(nm) - math.Log10(v) + b*mc
	}
	return traj
}

// computeWeights returns w[i] = Nm[i]^2 / sum(Nm[j]^2). Later events carry
// more weight: higher cumulative counts are statistically more reliable.
func computeWeights(n int) []float64 {
	if n == 0 {
		return nil
	}
	weights := make([]float64, n)
	sum := 0.0
	for i := range weights {
		nm := float64(i + 1)
		weights[i] = nm * nm
		sum += weights[i]
	}
	if sum == 0 {
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// weightedMean calculates sum(w[i]*x[i]). Weights are assumed normalized.
func weightedMean(weights, values []float64) float64 {
	mean := 0.0
	for i, w := range weights {
		mean += w * values[i]
	}
	return mean
}

// computeSigmaError calculates the weighted population spread
// sqrt(sum(w*traj^2) - sigma^2). A radicand driven negative by
// floating-point cancellation is clamped to 0 before the root.
func computeSigmaError(weights, traj []float64, sigma float64) float64 {
	sumSq := 0.0
	for i, w := range weights {
		sumSq += w * traj[i] * traj[i]
	}
	radicand := sumSq - sigma*sigma
	if radicand < 0 {
		radicand = 0
	}
	return math.Sqrt(radicand)
}

// computeRSquared calculates the linear-space coefficient of determination
// between actual and predicted cumulative counts under the given weights.
// The total sum of squares is taken about the unweighted mean of the actual
// counts. A zero total sum of squares leaves R^2 undefined: NaN.
func computeRSquared(counts, predicted, weights []float64) float64 {
	n := len(counts)
	if n == 0 {
		return math.NaN()
	}

	mean := 0.0
	for _, c := range counts {
		mean += c
	}
	mean /= float64(n)

	ssRes := 0.0
	ssTot := 0.0
	for i, w := range weights {
		dr := counts[i] - predicted[i]
		dt := counts[i] - mean
		ssRes += w * dr * dr
		ssTot += w * dt * dt
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

// predictedCount maps a rebased volume through the fitted model:
// Nfit = 10^(log10(V) - b*Mc + sigma).
func predictedCount(volume, b, mc, sigma float64) float64 {
	return math.Pow(10, math.Log10(volume)-b*mc+sigma)
}

// computeFitCurve samples the fitted model at n evenly spaced volumes
// spanning [first, last], both ends inclusive. n == 1 degenerates to the
// single sample at first.
func computeFitCurve(first, last float64, n int, b, mc, sigma float64) domain.FitCurve {
	if n <= 0 {
		return domain.FitCurve{}
	}

	curve := domain.FitCurve{
		Volumes: make([]float64, n),
		Counts:  make([]float64, n),
	}
	if n == 1 {
		curve.Volumes[0] = first
		curve.Counts[0] = predictedCount(first, b, mc, sigma)
		return curve
	}

	step := (last - first) / float64(n-1)
	for i := 0; i < n; i++ {
		curve.Volumes[i] = first + step*float64(i)
	}
	// Pin the final sample to the exact range end.
	curve.Volumes[n-1] = last
	for i, v := range curve.Volumes {
		curve.Counts[i] = predictedCount(v, b, mc, sigma)
	}
	return curve
}
