package storage

import (
	"context"

	"seismo-index-lab/internal/domain"
)

// DatasetStore provides access to datasets storage.
type DatasetStore interface {
	// Insert adds a new dataset. Returns ErrDuplicateKey if dataset_id exists.
	Insert(ctx context.Context, d *domain.Dataset) error

	// GetByID retrieves a dataset by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, datasetID string) (*domain.Dataset, error)

	// GetByRegion retrieves all datasets for a given region.
	GetByRegion(ctx context.Context, region string) ([]*domain.Dataset, error)

	// GetAll retrieves all datasets, ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.Dataset, error)
}

// CatalogEventStore provides access to catalog_events storage.
type CatalogEventStore interface {
	// Insert adds a new catalog event. Returns ErrDuplicateKey if (dataset_id, seq) exists.
	Insert(ctx context.Context, e *domain.CatalogEvent) error

	// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, events []*domain.CatalogEvent) error

	// GetByDatasetID retrieves all events for a dataset, ordered by t ASC, seq ASC.
	GetByDatasetID(ctx context.Context, datasetID string) ([]*domain.CatalogEvent, error)

	// GetByTimeRange retrieves events for a dataset within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, datasetID string, start, end float64) ([]*domain.CatalogEvent, error)
}

// InjectionSampleStore provides access to injection_samples storage.
type InjectionSampleStore interface {
	// InsertBulk adds multiple samples. Fails entire batch on duplicate (dataset_id, t).
	InsertBulk(ctx context.Context, samples []*domain.InjectionSample) error

	// GetByDatasetID retrieves all samples for a dataset, ordered by t ASC.
	GetByDatasetID(ctx context.Context, datasetID string) ([]*domain.InjectionSample, error)

	// GetByTimeRange retrieves samples for a dataset within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, datasetID string, start, end float64) ([]*domain.InjectionSample, error)
}

// EstimateStore provides access to estimates storage. Only the scalar
// fields of an estimate are persisted here; per-event trajectory and fit
// curve samples live in TrajectoryStore and FitCurveStore.
type EstimateStore interface {
	// Insert adds a new estimate. Returns ErrDuplicateKey if estimate_id exists.
	Insert(ctx context.Context, e *domain.IndexEstimate) error

	// GetByID retrieves an estimate by its ID. Returns ErrNotFound if not exists.
	// Slice fields are left empty; load them from the point stores.
	GetByID(ctx context.Context, estimateID string) (*domain.IndexEstimate, error)

	// GetByDatasetID retrieves all estimates for a dataset, ordered by created_at ASC.
	GetByDatasetID(ctx context.Context, datasetID string) ([]*domain.IndexEstimate, error)

	// GetAll retrieves all estimates, ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.IndexEstimate, error)
}

// TrajectoryStore provides access to sigma_trajectory_points storage.
type TrajectoryStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (estimate_id, event_seq).
	InsertBulk(ctx context.Context, points []*domain.TrajectoryPoint) error

	// GetByEstimateID retrieves all points for an estimate, ordered by event_seq ASC.
	GetByEstimateID(ctx context.Context, estimateID string) ([]*domain.TrajectoryPoint, error)
}

// FitCurveStore provides access to fit_curve_points storage.
type FitCurveStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (estimate_id, point_index).
	InsertBulk(ctx context.Context, points []*domain.FitCurvePoint) error

	// GetByEstimateID retrieves all points for an estimate, ordered by point_index ASC.
	GetByEstimateID(ctx context.Context, estimateID string) ([]*domain.FitCurvePoint, error)
}
