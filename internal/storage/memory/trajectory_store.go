package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// TrajectoryStore is an in-memory implementation of storage.TrajectoryStore.
type TrajectoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TrajectoryPoint // keyed by (estimate_id, event_seq)
}

// NewTrajectoryStore creates a new in-memory trajectory store.
func NewTrajectoryStore() *TrajectoryStore {
	return &TrajectoryStore{
		data: make(map[string]*domain.TrajectoryPoint),
	}
}

// trajectoryKey generates a unique key for a trajectory point.
func trajectoryKey(estimateID string, eventSeq int) string {
	return fmt.Sprintf("%s|%d", estimateID, eventSeq)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (estimate_id, event_seq).
func (s *TrajectoryStore) InsertBulk(_ context.Context, points []*domain.TrajectoryPoint) error {
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
		key := trajectoryKey(p.EstimateID, p.EventSeq)

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
		s.data[trajectoryKey(p.EstimateID, p.EventSeq)] = &copy
	}

	return nil
}

// GetByEstimateID retrieves all points for an estimate, ordered by event_seq ASC.
func (s *TrajectoryStore) GetByEstimateID(_ context.Context, estimateID string) ([]*domain.TrajectoryPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TrajectoryPoint
	for _, p := range s.data {
		if p.EstimateID == estimateID {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EventSeq < result[j].EventSeq
	})

	return result, nil
}

var _ storage.TrajectoryStore = (*TrajectoryStore)(nil)
