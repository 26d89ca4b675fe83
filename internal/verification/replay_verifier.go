package verification

import (
	"context"

	"seismo-index-lab/internal/replay"
	"seismo-index-lab/internal/storage"
)

// ReplayVerifier implements Verifier interface.
type ReplayVerifier struct {
	estimateStore storage.EstimateStore
	runner        *replay.Runner
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	EstimateStore storage.EstimateStore
	Runner        *replay.Runner
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	return &ReplayVerifier{
		estimateStore: opts.EstimateStore,
		runner:        opts.Runner,
	}
}

// VerifyEstimate verifies a single estimate by recomputing it.
func (v *ReplayVerifier) VerifyEstimate(ctx context.Context, estimateID string) (*VerificationResult, error) {
	stored, recomputed, err := v.runner.Recompute(ctx, estimateID)
	if err != nil {
		return nil, err
	}

	divergences := CompareEstimates(stored, recomputed)

	return &VerificationResult{
		EstimateID:      estimateID,
		Match:           len(divergences) == 0,
		Divergences:     divergences,
		StoredSigma:     stored.Sigma,
		RecomputedSigma: recomputed.Sigma,
	}, nil
}

// VerifyAll verifies all stored estimates.
func (v *ReplayVerifier) VerifyAll(ctx context.Context) (*VerificationReport, error) {
	estimates, err := v.estimateStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		TotalEstimates: len(estimates),
		Results:        make([]VerificationResult, 0, len(estimates)),
	}

	for _, estimate := range estimates {
		result, err := v.VerifyEstimate(ctx, estimate.EstimateID)
		if err != nil {
			// Record error as divergence
			report.Results = append(report.Results, VerificationResult{
				EstimateID:  estimate.EstimateID,
				Match:       false,
				StoredSigma: estimate.Sigma,
				Divergences: []FieldDivergence{
					{Field: "Error", Expected: nil, Actual: err.Error()},
				},
			})
			report.DivergentEstimates++
			continue
		}

		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedEstimates++
		} else {
			report.DivergentEstimates++
		}
	}

	return report, nil
}

var _ Verifier = (*ReplayVerifier)(nil)
