// Package verification checks stored estimates against recomputation.
// It verifies that persisted estimates match what the estimator produces
// from the same stored rows today.
package verification

import (
	"context"
	"fmt"
	"math"

	"seismo-index-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons. Storage keeps
// full float64 precision, so the tolerance only absorbs math library drift
// across platforms.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between stored and recomputed values.
type FieldDivergence struct {
	Field    string      // field name
	Expected interface{} // stored value
	Actual   interface{} // recomputed value
}

// VerificationResult contains the result of verifying a single estimate.
type VerificationResult struct {
	EstimateID      string            // verified estimate ID
	Match           bool              // true if all fields match
	Divergences     []FieldDivergence // list of divergent fields
	StoredSigma     float64           // sigma from the stored estimate
	RecomputedSigma float64           // sigma from the recomputation
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalEstimates     int                  // total estimates verified
	MatchedEstimates   int                  // estimates that matched
	DivergentEstimates int                  // estimates with divergences
	Results            []VerificationResult // individual results
}

// Verifier interface for estimate recompute verification.
type Verifier interface {
	// VerifyEstimate verifies a single estimate by ID. It loads the stored
	// estimate, recomputes from the stored raw rows under the same
	// parameters, and compares all fields.
	VerifyEstimate(ctx context.Context, estimateID string) (*VerificationResult, error)

	// VerifyAll verifies all stored estimates.
	// Returns a report with individual results.
	VerifyAll(ctx context.Context) (*VerificationReport, error)
}

// CompareEstimates compares a stored estimate against its recomputation and
// returns divergences. Floats compare within FloatTolerance; CreatedAt is a
// run timestamp, not a result, and is not compared.
func CompareEstimates(stored, recomputed *domain.IndexEstimate) []FieldDivergence {
	var divergences []FieldDivergence

	// Identity must match exactly
	if stored.EstimateID != recomputed.EstimateID {
		divergences = append(divergences, FieldDivergence{
			Field:    "EstimateID",
			Expected: stored.EstimateID,
			Actual:   recomputed.EstimateID,
		})
	}

	if stored.DatasetID != recomputed.DatasetID {
		divergences = append(divergences, FieldDivergence{
			Field:    "DatasetID",
			Expected: stored.DatasetID,
			Actual:   recomputed.DatasetID,
		})
	}

	// Parameters
	if !floatEquals(stored.Params.BValue, recomputed.Params.BValue) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Params.BValue",
			Expected: stored.Params.BValue,
			Actual:   recomputed.Params.BValue,
		})
	}

	if !floatEquals(stored.Params.MagnitudeCutoff, recomputed.Params.MagnitudeCutoff) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Params.MagnitudeCutoff",
			Expected: stored.Params.MagnitudeCutoff,
			Actual:   recomputed.Params.MagnitudeCutoff,
		})
	}

	if !floatEquals(stored.Params.VolumeStart, recomputed.Params.VolumeStart) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Params.VolumeStart",
			Expected: stored.Params.VolumeStart,
			Actual:   recomputed.Params.VolumeStart,
		})
	}

	if !floatEquals(stored.Params.VolumeEnd, recomputed.Params.VolumeEnd) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Params.VolumeEnd",
			Expected: stored.Params.VolumeEnd,
			Actual:   recomputed.Params.VolumeEnd,
		})
	}

	// Scalar results (critical for verification)
	if !floatEquals(stored.Vs, recomputed.Vs) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Vs",
			Expected: stored.Vs,
			Actual:   recomputed.Vs,
		})
	}

	if !floatEquals(stored.Sigma, recomputed.Sigma) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Sigma",
			Expected: stored.Sigma,
			Actual:   recomputed.Sigma,
		})
	}

	if !floatEquals(stored.SigmaError, recomputed.SigmaError) {
		divergences = append(divergences, FieldDivergence{
			Field:    "SigmaError",
			Expected: stored.SigmaError,
			Actual:   recomputed.SigmaError,
		})
	}

	if !floatEquals(stored.RSquared, recomputed.RSquared) {
		divergences = append(divergences, FieldDivergence{
			Field:    "RSquared",
			Expected: stored.RSquared,
			Actual:   recomputed.RSquared,
		})
	}

	// Degenerate outcome must match exactly
	if stored.Reason != recomputed.Reason {
		divergences = append(divergences, FieldDivergence{
			Field:    "Reason",
			Expected: stored.Reason,
			Actual:   recomputed.Reason,
		})
	}

	if stored.Diagnostic != recomputed.Diagnostic {
		divergences = append(divergences, FieldDivergence{
			Field:    "Diagnostic",
			Expected: stored.Diagnostic,
			Actual:   recomputed.Diagnostic,
		})
	}

	// Vector results
	divergences = append(divergences, compareFloatSlices("EventVolumes", stored.EventVolumes, recomputed.EventVolumes)...)
	divergences = append(divergences, compareFloatSlices("Trajectory", stored.Trajectory, recomputed.Trajectory)...)
	divergences = append(divergences, compareFloatSlices("Curve.Volumes", stored.Curve.Volumes, recomputed.Curve.Volumes)...)
	divergences = append(divergences, compareFloatSlices("Curve.Counts", stored.Curve.Counts, recomputed.Curve.Counts)...)

	return divergences
}

// compareFloatSlices compares two float slices element-wise. A length
// mismatch is one divergence; otherwise each divergent index reports
// separately.
func compareFloatSlices(field string, expected, actual []float64) []FieldDivergence {
	if len(expected) != len(actual) {
		return []FieldDivergence{{
			Field:    field + ".length",
			Expected: len(expected),
			Actual:   len(actual),
		}}
	}

	var divergences []FieldDivergence
	for i := range expected {
		if !floatEquals(expected[i], actual[i]) {
			divergences = append(divergences, FieldDivergence{
				Field:    fmt.Sprintf("%s[%d]", field, i),
				Expected: expected[i],
				Actual:   actual[i],
			})
		}
	}
	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
// Non-finite values compare by class: NaN matches NaN (R-squared is NaN on
// single-event fits) and infinities must match in sign (a boundary event at
// rebased volume zero stores +Inf trajectory values).
func floatEquals(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= FloatTolerance
}
