package ingestion

import (
	"errors"
	"sort"

	"seismo-index-lab/internal/domain"
)

// ErrInvalidOrdering is returned when rows are not properly ordered.
var ErrInvalidOrdering = errors.New("rows are not in deterministic order")

// ErrNonMonotonicVolume is returned when cumulative injected volume
// decreases between consecutive samples.
var ErrNonMonotonicVolume = errors.New("cumulative volume decreases between samples")

// SortCatalogEvents orders events by (t ASC, seq ASC).
// Seq is the event's position within the source catalog, so events sharing
// a time keep their source order.
func SortCatalogEvents(events []*domain.CatalogEvent) {
	sort.Slice(events, func(i, j int) bool {
		return compareCatalogEvents(events[i], events[j]) < 0
	})
}

// SortInjectionSamples orders samples by t ASC.
func SortInjectionSamples(samples []*domain.InjectionSample) {
	sort.Slice(samples, func(i, j int) bool {
		return compareInjectionSamples(samples[i], samples[j]) < 0
	})
}

// ValidateCatalogEventOrdering checks that events are strictly ordered by
// (t, seq). Returns ErrInvalidOrdering if not.
func ValidateCatalogEventOrdering(events []*domain.CatalogEvent) error {
	for i := 1; i < len(events); i++ {
		if compareCatalogEvents(events[i-1], events[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// ValidateInjectionSampleOrdering checks that sample times are strictly
// ascending. Duplicate times also fail: interpolation needs a single volume
// per time. Returns ErrInvalidOrdering if not.
func ValidateInjectionSampleOrdering(samples []*domain.InjectionSample) error {
	for i := 1; i < len(samples); i++ {
		if compareInjectionSamples(samples[i-1], samples[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// ValidateVolumeMonotonicity checks that cumulative volume never decreases
// along time-ordered samples. Returns ErrNonMonotonicVolume if it does.
func ValidateVolumeMonotonicity(samples []*domain.InjectionSample) error {
	for i := 1; i < len(samples); i++ {
		if samples[i].CumulativeVolume < samples[i-1].CumulativeVolume {
			return ErrNonMonotonicVolume
		}
	}
	return nil
}

// compareCatalogEvents returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (t ASC, seq ASC)
func compareCatalogEvents(a, b *domain.CatalogEvent) int {
	if a.T != b.T {
		if a.T < b.T {
			return -1
		}
		return 1
	}
	if a.Seq != b.Seq {
		if a.Seq < b.Seq {
			return -1
		}
		return 1
	}
	return 0
}

// compareInjectionSamples returns comparison result for injection samples.
// Order: t ASC
func compareInjectionSamples(a, b *domain.InjectionSample) int {
	if a.T != b.T {
		if a.T < b.T {
			return -1
		}
		return 1
	}
	return 0
}
