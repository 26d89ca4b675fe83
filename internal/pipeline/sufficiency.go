package pipeline

import (
	"context"
	"fmt"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/ingestion"
	"seismo-index-lab/internal/storage"
)

// Sufficiency thresholds. Two samples make one interpolation segment, the
// minimum an alignment can work with.
const (
	minDatasets          = 1
	minSamplesPerDataset = 2
	minEventsPerDataset  = 1
)

// SufficiencyCheck represents a single data sufficiency check.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult holds the outcome of all sufficiency checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string // integrity problems found while checking
}

// SufficiencyChecker validates stored data before estimation. Checks are
// advisory: a failed check marks the report, it does not stop the run.
type SufficiencyChecker struct {
	datasetStore storage.DatasetStore
	sampleStore  storage.InjectionSampleStore
	eventStore   storage.CatalogEventStore
}

// NewSufficiencyChecker creates a checker over the given stores.
func NewSufficiencyChecker(
	datasetStore storage.DatasetStore,
	sampleStore storage.InjectionSampleStore,
	eventStore storage.CatalogEventStore,
) *SufficiencyChecker {
	return &SufficiencyChecker{
		datasetStore: datasetStore,
		sampleStore:  sampleStore,
		eventStore:   eventStore,
	}
}

// Check runs all sufficiency checks over the stored datasets. Store reads
// happen once up front; datasets arrive ordered by created_at, so check
// actuals and integrity errors come out deterministic.
func (c *SufficiencyChecker) Check(ctx context.Context) (*SufficiencyResult, error) {
	datasets, err := c.datasetStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading datasets: %w", err)
	}

	samples := make(map[string][]*domain.InjectionSample, len(datasets))
	events := make(map[string][]*domain.CatalogEvent, len(datasets))
	for _, d := range datasets {
		s, err := c.sampleStore.GetByDatasetID(ctx, d.DatasetID)
		if err != nil {
			return nil, fmt.Errorf("loading samples for %s: %w", d.DatasetID, err)
		}
		samples[d.DatasetID] = s

		e, err := c.eventStore.GetByDatasetID(ctx, d.DatasetID)
		if err != nil {
			return nil, fmt.Errorf("loading events for %s: %w", d.DatasetID, err)
		}
		events[d.DatasetID] = e
	}

	result := &SufficiencyResult{}
	result.Checks = append(result.Checks, checkDatasetCount(datasets))
	result.Checks = append(result.Checks, checkInjectionSamples(datasets, samples))

	monotonicity, integrityErrors := checkVolumeMonotonicity(datasets, samples)
	result.Checks = append(result.Checks, monotonicity)
	result.Errors = append(result.Errors, integrityErrors...)

	result.Checks = append(result.Checks, checkCatalogEvents(datasets, events))
	result.Checks = append(result.Checks, checkEventsInWindow(datasets, samples, events))

	result.AllPass = len(result.Errors) == 0
	for _, check := range result.Checks {
		if !check.Pass {
			result.AllPass = false
		}
	}
	return result, nil
}

// checkDatasetCount verifies at least one dataset is registered.
func checkDatasetCount(datasets []*domain.Dataset) SufficiencyCheck {
	return SufficiencyCheck{
		Name:      "Datasets registered",
		Threshold: fmt.Sprintf(">= %d", minDatasets),
		Actual:    fmt.Sprintf("%d", len(datasets)),
		Pass:      len(datasets) >= minDatasets,
	}
}

// checkInjectionSamples verifies every dataset has enough samples to
// interpolate over.
func checkInjectionSamples(datasets []*domain.Dataset, samples map[string][]*domain.InjectionSample) SufficiencyCheck {
	check := SufficiencyCheck{
		Name:      "Injection samples per dataset",
		Threshold: fmt.Sprintf(">= %d", minSamplesPerDataset),
	}
	if len(datasets) == 0 {
		check.Actual = "no datasets"
		return check
	}

	minCount := -1
	for _, d := range datasets {
		if n := len(samples[d.DatasetID]); minCount < 0 || n < minCount {
			minCount = n
		}
	}
	check.Actual = fmt.Sprintf("min %d across %d datasets", minCount, len(datasets))
	check.Pass = minCount >= minSamplesPerDataset
	return check
}

// checkVolumeMonotonicity verifies cumulative volume never decreases within
// any dataset. Violations also come back as integrity errors, one per
// dataset.
func checkVolumeMonotonicity(datasets []*domain.Dataset, samples map[string][]*domain.InjectionSample) (SufficiencyCheck, []string) {
	check := SufficiencyCheck{
		Name:      "Volume monotonicity",
		Threshold: "non-decreasing",
	}
	if len(datasets) == 0 {
		check.Actual = "no datasets"
		return check, nil
	}

	var errs []string
	for _, d := range datasets {
		if err := ingestion.ValidateVolumeMonotonicity(samples[d.DatasetID]); err != nil {
			errs = append(errs, fmt.Sprintf("dataset %q: %v", d.Name, err))
		}
	}
	check.Actual = fmt.Sprintf("%d of %d datasets violate", len(errs), len(datasets))
	check.Pass = len(errs) == 0
	return check, errs
}

// checkCatalogEvents verifies every dataset has at least one earthquake.
func checkCatalogEvents(datasets []*domain.Dataset, events map[string][]*domain.CatalogEvent) SufficiencyCheck {
	check := SufficiencyCheck{
		Name:      "Catalog events per dataset",
		Threshold: fmt.Sprintf(">= %d", minEventsPerDataset),
	}
	if len(datasets) == 0 {
		check.Actual = "no datasets"
		return check
	}

	minCount := -1
	for _, d := range datasets {
		if n := len(events[d.DatasetID]); minCount < 0 || n < minCount {
			minCount = n
		}
	}
	check.Actual = fmt.Sprintf("min %d across %d datasets", minCount, len(datasets))
	check.Pass = minCount >= minEventsPerDataset
	return check
}

// checkEventsInWindow verifies every dataset has at least one earthquake
// inside its injection time window. Events outside the window interpolate to
// NaN and are dropped before fitting, so a dataset failing here estimates
// degenerate no matter the parameters.
func checkEventsInWindow(datasets []*domain.Dataset, samples map[string][]*domain.InjectionSample, events map[string][]*domain.CatalogEvent) SufficiencyCheck {
	check := SufficiencyCheck{
		Name:      "Events inside injection window",
		Threshold: ">= 1",
	}
	if len(datasets) == 0 {
		check.Actual = "no datasets"
		return check
	}

	minCount := -1
	for _, d := range datasets {
		count := 0
		if s := samples[d.DatasetID]; len(s) > 0 {
			t0, t1 := s[0].T, s[len(s)-1].T
			for _, e := range events[d.DatasetID] {
				if e.T >= t0 && e.T <= t1 {
					count++
				}
			}
		}
		if minCount < 0 || count < minCount {
			minCount = count
		}
	}
	check.Actual = fmt.Sprintf("min %d across %d datasets", minCount, len(datasets))
	check.Pass = minCount >= 1
	return check
}
