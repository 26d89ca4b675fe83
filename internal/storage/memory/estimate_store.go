package memory

import (
	"context"
	"sort"
	"sync"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// EstimateStore is an in-memory implementation of storage.EstimateStore.
// Like the relational store it keeps only the scalar row: slice fields are
// blanked on insert so all backends return the same shape.
type EstimateStore struct {
	mu   sync.RWMutex
	data map[string]*domain.IndexEstimate // keyed by estimate_id
}

// NewEstimateStore creates a new in-memory estimate store.
func NewEstimateStore() *EstimateStore {
	return &EstimateStore{
		data: make(map[string]*domain.IndexEstimate),
	}
}

// Insert adds a new estimate. Returns ErrDuplicateKey if estimate_id exists.
func (s *EstimateStore) Insert(_ context.Context, e *domain.IndexEstimate) error {
	if e == nil || e.EstimateID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.EstimateID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	copy.EventVolumes = nil
	copy.Trajectory = nil
	copy.Curve = domain.FitCurve{}
	s.data[e.EstimateID] = &copy
	return nil
}

// GetByID retrieves an estimate by its ID. Returns ErrNotFound if not exists.
// Slice fields are left empty; load them from the point stores.
func (s *EstimateStore) GetByID(_ context.Context, estimateID string) (*domain.IndexEstimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[estimateID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *e
	return &copy, nil
}

// GetByDatasetID retrieves all estimates for a dataset, ordered by created_at ASC.
func (s *EstimateStore) GetByDatasetID(_ context.Context, datasetID string) ([]*domain.IndexEstimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.IndexEstimate
	for _, e := range s.data {
		if e.DatasetID == datasetID {
			copy := *e
			result = append(result, &copy)
		}
	}

	sortEstimates(result)
	return result, nil
}

// GetAll retrieves all estimates, ordered by created_at ASC.
func (s *EstimateStore) GetAll(_ context.Context) ([]*domain.IndexEstimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.IndexEstimate
	for _, e := range s.data {
		copy := *e
		result = append(result, &copy)
	}

	sortEstimates(result)
	return result, nil
}

func sortEstimates(estimates []*domain.IndexEstimate) {
	sort.Slice(estimates, func(i, j int) bool {
		if estimates[i].CreatedAt != estimates[j].CreatedAt {
			return estimates[i].CreatedAt < estimates[j].CreatedAt
		}
		return estimates[i].EstimateID < estimates[j].EstimateID
	})
}

var _ storage.EstimateStore = (*EstimateStore)(nil)
