package alignment

import (
	"errors"
	"fmt"
	"math"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/lookup"
)

// ErrLengthMismatch is returned when paired input sequences (injection
// times/volumes or event times/magnitudes) differ in length.
var ErrLengthMismatch = errors.New("paired series lengths do not match")

// Align validates input shapes, sorts the earthquake catalog by time, and
// interpolates cumulative injected volume at each event time. Event times
// outside the injection series' time domain get a NaN volume; volume is
// never extrapolated. Inputs are not modified.
func Align(series domain.InjectionSeries, catalog domain.EarthquakeCatalog) (domain.AlignedCatalog, error) {
	if len(series.Times) != len(series.Volumes) {
		return domain.AlignedCatalog{}, fmt.Errorf("injection series: %w", ErrLengthMismatch)
	}
	if len(catalog.Times) != len(catalog.Magnitudes) {
		return domain.AlignedCatalog{}, fmt.Errorf("earthquake catalog: %w", ErrLengthMismatch)
	}

	sorted := SortCatalog(catalog)
	aligned := domain.AlignedCatalog{
		Times:      sorted.Times,
		Magnitudes: sorted.Magnitudes,
		Volumes:    make([]float64, sorted.Len()),
	}
	for i, t := range sorted.Times {
		v, err := lookup.VolumeAt(t, series)
		if err != nil {
			// Outside the injection time domain: undefined volume.
			aligned.Volumes[i] = math.NaN()
			continue
		}
		aligned.Volumes[i] = v
	}
	return aligned, nil
}
