package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/idhash"
	"seismo-index-lab/internal/storage"
)

// Manager orchestrates ingestion from a source to storage.
// It assigns dataset identity, enforces deterministic row ordering and uses
// the storage layer for duplicate rejection.
type Manager struct {
	source Source

	datasetStore storage.DatasetStore
	eventStore   storage.CatalogEventStore
	sampleStore  storage.InjectionSampleStore

	nowMs func() int64
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Source Source

	DatasetStore storage.DatasetStore
	EventStore   storage.CatalogEventStore
	SampleStore  storage.InjectionSampleStore

	// NowMs supplies dataset creation timestamps. Defaults to wall clock.
	NowMs func() int64
}

// NewManager creates a new ingestion manager with the provided source and stores.
func NewManager(opts ManagerOptions) *Manager {
	nowMs := opts.NowMs
	if nowMs == nil {
		nowMs = func() int64 { return time.Now().UnixMilli() }
	}

	return &Manager{
		source:       opts.Source,
		datasetStore: opts.DatasetStore,
		eventStore:   opts.EventStore,
		sampleStore:  opts.SampleStore,
		nowMs:        nowMs,
	}
}

// Result contains statistics from one completed ingest run.
type Result struct {
	RunID       string // random identifier for log correlation
	DatasetID   string // deterministic hash of (name, region, well_name)
	SampleCount int
	EventCount  int
}

// IngestDataset fetches one dataset from the source, validates it and
// stores it. The dataset ID is the deterministic idhash of the metadata,
// so re-ingesting the same dataset is rejected by the storage layer
// (ErrDuplicateKey). Validation runs before any write: a rejected dataset
// leaves no rows behind.
// Returns nil, nil when the source or dataset store is missing, or when
// the source has nothing to offer.
func (m *Manager) IngestDataset(ctx context.Context) (*Result, error) {
	if m.source == nil || m.datasetStore == nil {
		return nil, nil
	}

	raw, err := m.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	if len(raw.Series.Times) != len(raw.Series.Volumes) {
		return nil, fmt.Errorf("injection series: %d times, %d volumes", len(raw.Series.Times), len(raw.Series.Volumes))
	}
	if len(raw.Catalog.Times) != len(raw.Catalog.Magnitudes) {
		return nil, fmt.Errorf("earthquake catalog: %d times, %d magnitudes", len(raw.Catalog.Times), len(raw.Catalog.Magnitudes))
	}

	result := &Result{
		RunID:     uuid.NewString(),
		DatasetID: idhash.ComputeDatasetID(raw.Meta.Name, raw.Meta.Region, raw.Meta.WellName),
	}

	// Enforce deterministic ordering, then validate before the first write
	samples := domain.SamplesFromSeries(result.DatasetID, raw.Series)
	SortInjectionSamples(samples)
	if err := ValidateInjectionSampleOrdering(samples); err != nil {
		return nil, err
	}
	if err := ValidateVolumeMonotonicity(samples); err != nil {
		return nil, err
	}

	events := domain.EventsFromCatalog(result.DatasetID, raw.Catalog)
	SortCatalogEvents(events)

	dataset := &domain.Dataset{
		DatasetID:  result.DatasetID,
		Name:       raw.Meta.Name,
		Region:     raw.Meta.Region,
		WellName:   raw.Meta.WellName,
		TimeUnit:   raw.Meta.TimeUnit,
		VolumeUnit: raw.Meta.VolumeUnit,
		Notes:      raw.Meta.Notes,
		CreatedAt:  m.nowMs(),
	}
	if err := m.datasetStore.Insert(ctx, dataset); err != nil {
		return nil, err
	}

	// Store via bulk insert - storage layer handles duplicates
	if m.sampleStore != nil && len(samples) > 0 {
		if err := m.sampleStore.InsertBulk(ctx, samples); err != nil {
			return nil, err
		}
		result.SampleCount = len(samples)
	}

	if m.eventStore != nil && len(events) > 0 {
		if err := m.eventStore.InsertBulk(ctx, events); err != nil {
			return nil, err
		}
		result.EventCount = len(events)
	}

	return result, nil
}
