package stub

import (
	"context"

	"seismo-index-lab/internal/domain"
)

// StubSource returns a fixed in-memory dataset for testing.
// The catalog can be intentionally unordered to test seq stamping.
// Implements ingestion.Source interface.
type StubSource struct {
	raw *domain.RawDataset
}

// NewStubSource creates a new stub source with the given dataset.
func NewStubSource(raw *domain.RawDataset) *StubSource {
	return &StubSource{raw: raw}
}

// Fetch returns a copy of the dataset to prevent mutation of the fixture.
// A nil fixture yields nil, nil.
func (s *StubSource) Fetch(_ context.Context) (*domain.RawDataset, error) {
	if s.raw == nil {
		return nil, nil
	}

	copy := domain.RawDataset{
		Meta: s.raw.Meta,
		Series: domain.InjectionSeries{
			Times:   append([]float64(nil), s.raw.Series.Times...),
			Volumes: append([]float64(nil), s.raw.Series.Volumes...),
		},
		Catalog: domain.EarthquakeCatalog{
			Times:      append([]float64(nil), s.raw.Catalog.Times...),
			Magnitudes: append([]float64(nil), s.raw.Catalog.Magnitudes...),
		},
	}
	return &copy, nil
}
