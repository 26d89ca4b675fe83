package memory

import (
	"context"
	"sort"
	"sync"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// DatasetStore is an in-memory implementation of storage.DatasetStore.
type DatasetStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Dataset // keyed by dataset_id
}

// NewDatasetStore creates a new in-memory dataset store.
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{
		data: make(map[string]*domain.Dataset),
	}
}

// Insert adds a new dataset. Returns ErrDuplicateKey if dataset_id exists.
func (s *DatasetStore) Insert(_ context.Context, d *domain.Dataset) error {
	if d == nil || d.DatasetID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[d.DatasetID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *d
	s.data[d.DatasetID] = &copy
	return nil
}

// GetByID retrieves a dataset by its ID. Returns ErrNotFound if not exists.
func (s *DatasetStore) GetByID(_ context.Context, datasetID string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.data[datasetID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *d
	return &copy, nil
}

// GetByRegion retrieves all datasets for a given region.
func (s *DatasetStore) GetByRegion(_ context.Context, region string) ([]*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Dataset
	for _, d := range s.data {
		if d.Region == region {
			copy := *d
			result = append(result, &copy)
		}
	}

	sortDatasets(result)
	return result, nil
}

// GetAll retrieves all datasets, ordered by created_at ASC.
func (s *DatasetStore) GetAll(_ context.Context) ([]*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Dataset
	for _, d := range s.data {
		copy := *d
		result = append(result, &copy)
	}

	sortDatasets(result)
	return result, nil
}

func sortDatasets(datasets []*domain.Dataset) {
	sort.Slice(datasets, func(i, j int) bool {
		if datasets[i].CreatedAt != datasets[j].CreatedAt {
			return datasets[i].CreatedAt < datasets[j].CreatedAt
		}
		return datasets[i].DatasetID < datasets[j].DatasetID
	})
}

var _ storage.DatasetStore = (*DatasetStore)(nil)
