package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// InjectionSampleStore is an in-memory implementation of storage.InjectionSampleStore.
type InjectionSampleStore struct {
	mu   sync.RWMutex
	data map[string]*domain.InjectionSample // keyed by (dataset_id, t)
}

// NewInjectionSampleStore creates a new in-memory injection sample store.
func NewInjectionSampleStore() *InjectionSampleStore {
	return &InjectionSampleStore{
		data: make(map[string]*domain.InjectionSample),
	}
}

// sampleKey generates a unique key for an injection sample.
// %g prints the fewest digits that round-trip, so distinct times
// always produce distinct keys.
func sampleKey(datasetID string, t float64) string {
	return fmt.Sprintf("%s|%g", datasetID, t)
}

// InsertBulk adds multiple samples. Fails entire batch on duplicate (dataset_id, t).
func (s *InjectionSampleStore) InsertBulk(_ context.Context, samples []*domain.InjectionSample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(samples))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range samples {
		if p == nil || p.DatasetID == "" {
			return storage.ErrInvalidInput
		}
		key := sampleKey(p.DatasetID, p.T)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range samples {
		copy := *p
		s.data[sampleKey(p.DatasetID, p.T)] = &copy
	}

	return nil
}

// GetByDatasetID retrieves all samples for a dataset, ordered by t ASC.
func (s *InjectionSampleStore) GetByDatasetID(_ context.Context, datasetID string) ([]*domain.InjectionSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.InjectionSample
	for _, p := range s.data {
		if p.DatasetID == datasetID {
			copy := *p
			result = append(result, &copy)
		}
	}

	sortInjectionSamples(result)
	return result, nil
}

// GetByTimeRange retrieves samples for a dataset within [start, end] (inclusive).
func (s *InjectionSampleStore) GetByTimeRange(_ context.Context, datasetID string, start, end float64) ([]*domain.InjectionSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.InjectionSample
	for _, p := range s.data {
		if p.DatasetID == datasetID && p.T >= start && p.T <= end {
			copy := *p
			result = append(result, &copy)
		}
	}

	sortInjectionSamples(result)
	return result, nil
}

func sortInjectionSamples(samples []*domain.InjectionSample) {
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].T < samples[j].T
	})
}

var _ storage.InjectionSampleStore = (*InjectionSampleStore)(nil)
