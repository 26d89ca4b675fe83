package ingestion

import (
	"context"

	"seismo-index-lab/internal/domain"
)

// Source provides one complete dataset from an external origin.
type Source interface {
	// Fetch returns the dataset's metadata, injection series and earthquake
	// catalog. Catalog events may be unordered; Manager records their source
	// position in seq and the storage layer orders reads by time.
	// A nil dataset with a nil error means the source has nothing to offer.
	Fetch(ctx context.Context) (*domain.RawDataset, error)
}
