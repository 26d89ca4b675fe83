package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// FitCurveStore is an in-memory implementation of storage.FitCurveStore.
type FitCurveStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FitCurvePoint // keyed by (estimate_id, point_index)
}

// NewFitCurveStore creates a new in-memory fit curve store.
func NewFitCurveStore() *FitCurveStore {
	return &FitCurveStore{
		data: make(map[string]*domain.FitCurvePoint),
	}
}

// curveKey generates a unique key for a fit curve point.
func curveKey(estimateID string, pointIndex int) string {
	return fmt.Sprintf("%s|%d", estimateID, pointIndex)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (estimate_id, point_index).
func (s *FitCurveStore) InsertBulk(_ context.Context, points []*domain.FitCurvePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range points {
		if p == nil || p.EstimateID == "" {
			return storage.ErrInvalidInput
		}
		key := curveKey(p.EstimateID, p.PointIndex)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range points {
		copy := *p
		s.data[curveKey(p.EstimateID, p.PointIndex)] = &copy
	}

	return nil
}

// GetByEstimateID retrieves all points for an estimate, ordered by point_index ASC.
func (s *FitCurveStore) GetByEstimateID(_ context.Context, estimateID string) ([]*domain.FitCurvePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FitCurvePoint
	for _, p := range s.data {
		if p.EstimateID == estimateID {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PointIndex < result[j].PointIndex
	})

	return result, nil
}

var _ storage.FitCurveStore = (*FitCurveStore)(nil)
