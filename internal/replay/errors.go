package replay

import "errors"

// ErrEstimateNotFound is returned when the estimate ID doesn't exist.
var ErrEstimateNotFound = errors.New("estimate not found")

// ErrSourceDataMissing is returned when an estimate's dataset has no stored
// injection samples left to recompute from.
var ErrSourceDataMissing = errors.New("no stored source rows for dataset")
