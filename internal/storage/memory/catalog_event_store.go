package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage"
)

// CatalogEventStore is an in-memory implementation of storage.CatalogEventStore.
type CatalogEventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CatalogEvent // keyed by (dataset_id, seq)
}

// NewCatalogEventStore creates a new in-memory catalog event store.
func NewCatalogEventStore() *CatalogEventStore {
	return &CatalogEventStore{
		data: make(map[string]*domain.CatalogEvent),
	}
}

// eventKey generates a unique key for a catalog event.
func eventKey(datasetID string, seq int) string {
	return fmt.Sprintf("%s|%d", datasetID, seq)
}

// Insert adds a new catalog event. Returns ErrDuplicateKey if (dataset_id, seq) exists.
func (s *CatalogEventStore) Insert(_ context.Context, e *domain.CatalogEvent) error {
	if e == nil || e.DatasetID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := eventKey(e.DatasetID, e.Seq)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	s.data[key] = &copy
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *CatalogEventStore) InsertBulk(_ context.Context, events []*domain.CatalogEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(events))

	// First pass: check for duplicates (existing + intra-batch)
	for _, e := range events {
		if e == nil || e.DatasetID == "" {
			return storage.ErrInvalidInput
		}
		key := eventKey(e.DatasetID, e.Seq)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, e := range events {
		copy := *e
		s.data[eventKey(e.DatasetID, e.Seq)] = &copy
	}

	return nil
}

// GetByDatasetID retrieves all events for a dataset, ordered by t ASC, seq ASC.
func (s *CatalogEventStore) GetByDatasetID(_ context.Context, datasetID string) ([]*domain.CatalogEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CatalogEvent
	for _, e := range s.data {
		if e.DatasetID == datasetID {
			copy := *e
			result = append(result, &copy)
		}
	}

	sortCatalogEvents(result)
	return result, nil
}

// GetByTimeRange retrieves events for a dataset within [start, end] (inclusive).
func (s *CatalogEventStore) GetByTimeRange(_ context.Context, datasetID string, start, end float64) ([]*domain.CatalogEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CatalogEvent
	for _, e := range s.data {
		if e.DatasetID == datasetID && e.T >= start && e.T <= end {
			copy := *e
			result = append(result, &copy)
		}
	}

	sortCatalogEvents(result)
	return result, nil
}

func sortCatalogEvents(events []*domain.CatalogEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].T != events[j].T {
			return events[i].T < events[j].T
		}
		return events[i].Seq < events[j].Seq
	})
}

var _ storage.CatalogEventStore = (*CatalogEventStore)(nil)
