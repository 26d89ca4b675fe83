package pipeline

import (
	"context"
	"errors"
	"fmt"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/ingestion"
	"seismo-index-lab/internal/ingestion/stub"
	"seismo-index-lab/internal/storage"
)

// LoadFixtures seeds the stores with the built-in synthetic datasets, one
// per scenario. Each fixture routes through the ingestion manager so dataset
// IDs, row ordering and validation behave exactly as live ingestion does.
// Already-seeded fixtures are skipped, so loading is idempotent.
func LoadFixtures(
	ctx context.Context,
	datasetStore storage.DatasetStore,
	sampleStore storage.InjectionSampleStore,
	eventStore storage.CatalogEventStore,
) error {
	for _, raw := range FixtureDatasets() {
		mgr := ingestion.NewManager(ingestion.ManagerOptions{
			Source:       stub.NewStubSource(raw),
			DatasetStore: datasetStore,
			SampleStore:  sampleStore,
			EventStore:   eventStore,
		})
		if _, err := mgr.IngestDataset(ctx); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return fmt.Errorf("loading fixture %q: %w", raw.Meta.Name, err)
		}
	}
	return nil
}

// FixtureDatasets returns the built-in datasets in scenario order.
func FixtureDatasets() []*domain.RawDataset {
	return []*domain.RawDataset{
		uniformRampDataset(),
		uniformRampWindowedDataset(),
		stagedRampupDataset(),
	}
}

// FixtureByScenario returns the fixture dataset paired with a scenario.
func FixtureByScenario(scenarioID string) (*domain.RawDataset, bool) {
	switch scenarioID {
	case domain.ScenarioUniformRamp:
		return uniformRampDataset(), true
	case domain.ScenarioUniformRampWindowed:
		return uniformRampWindowedDataset(), true
	case domain.ScenarioStagedRampup:
		return stagedRampupDataset(), true
	}
	return nil, false
}

// uniformRampDataset is the reference case: an accelerating ramp with three
// catalog events. Under b=1, Mc=1 the earliest survivor sits at volume 50,
// leaving two rebased events at 150 and 400.
func uniformRampDataset() *domain.RawDataset {
	return &domain.RawDataset{
		Meta: domain.DatasetMeta{
			Name:       "uniform ramp",
			Region:     "synthetic",
			WellName:   "SYN-1",
			TimeUnit:   "days",
			VolumeUnit: "m3",
			Notes:      "accelerating ramp, three catalog events",
		},
		Series: domain.InjectionSeries{
			Times:   []float64{0, 1, 2, 3},
			Volumes: []float64{0, 100, 300, 600},
		},
		Catalog: domain.EarthquakeCatalog{
			Times:      []float64{0.5, 1.5, 2.5},
			Magnitudes: []float64{2.0, 2.5, 3.0},
		},
	}
}

// uniformRampWindowedDataset is a constant-rate ramp sized for the
// volume-window scenario (Vstart=100, Vend=500).
func uniformRampWindowedDataset() *domain.RawDataset {
	return &domain.RawDataset{
		Meta: domain.DatasetMeta{
			Name:       "uniform ramp windowed",
			Region:     "synthetic",
			WellName:   "SYN-2",
			TimeUnit:   "days",
			VolumeUnit: "m3",
			Notes:      "constant-rate ramp for volume-window runs",
		},
		Series: domain.InjectionSeries{
			Times:   []float64{0, 1, 2, 3, 4, 5},
			Volumes: []float64{0, 100, 200, 300, 400, 500},
		},
		Catalog: domain.EarthquakeCatalog{
			Times:      []float64{0.5, 1.5, 2.5, 3.5, 4.5},
			Magnitudes: []float64{1.2, 1.8, 2.1, 1.5, 2.6},
		},
	}
}

// stagedRampupDataset is a stepped injection with a shut-in plateau between
// days 6 and 8. One event falls below Mc=1 and one below Mc=0.8, so the two
// scenarios retain different catalogs from the same data.
func stagedRampupDataset() *domain.RawDataset {
	return &domain.RawDataset{
		Meta: domain.DatasetMeta{
			Name:       "staged rampup",
			Region:     "synthetic",
			WellName:   "SYN-3",
			TimeUnit:   "days",
			VolumeUnit: "m3",
			Notes:      "stepped injection with a shut-in plateau",
		},
		Series: domain.InjectionSeries{
			Times:   []float64{0, 2, 4, 6, 8, 10},
			Volumes: []float64{0, 50, 250, 600, 600, 900},
		},
		Catalog: domain.EarthquakeCatalog{
			Times:      []float64{1.0, 3.0, 5.0, 7.0, 9.0, 9.5},
			Magnitudes: []float64{0.9, 1.4, 2.2, 1.1, 1.7, 0.5},
		},
	}
}
