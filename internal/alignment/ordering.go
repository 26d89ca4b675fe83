package alignment

import (
	"sort"

	"seismo-index-lab/internal/domain"
)

// SortCatalog returns a copy of the catalog ordered ascending by event
// time, with magnitudes permuted identically to times. The sort is stable:
// events with equal times keep their input order. The input catalog is not
// modified.
func SortCatalog(catalog domain.EarthquakeCatalog) domain.EarthquakeCatalog {
	n := catalog.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return catalog.Times[order[i]] < catalog.Times[order[j]]
	})

	sorted := domain.EarthquakeCatalog{
		Times:      make([]float64, n),
		Magnitudes: make([]float64, n),
	}
	for i, idx := range order {
		sorted.Times[i] = catalog.Times[idx]
		sorted.Magnitudes[i] = catalog.Magnitudes[idx]
	}
	return sorted
}
