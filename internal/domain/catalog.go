package domain

// EarthquakeCatalog pairs event times with magnitudes. Catalogs arrive
// unsorted; alignment sorts by time and permutes magnitudes identically.
type EarthquakeCatalog struct {
	Times      []float64 // event times on the injection series' time axis
	Magnitudes []float64 // event magnitudes, paired with Times
}

// Len returns the number of events.
func (c EarthquakeCatalog) Len() int {
	return len(c.Times)
}

// CatalogEvent represents one earthquake catalog row.
// Corresponds to catalog_events table in PostgreSQL.
type CatalogEvent struct {
	DatasetID string  // owning dataset identifier
	Seq       int     // position within the source catalog, tiebreak for equal times
	T         float64 // event time in the dataset's time unit
	Magnitude float64 // event magnitude
}

// CatalogFromEvents assembles an EarthquakeCatalog from stored rows.
func CatalogFromEvents(events []*CatalogEvent) EarthquakeCatalog {
	c := EarthquakeCatalog{
		Times:      make([]float64, len(events)),
		Magnitudes: make([]float64, len(events)),
	}
	for i, row := range events {
		c.Times[i] = row.T
		c.Magnitudes[i] = row.Magnitude
	}
	return c
}

// EventsFromCatalog flattens an EarthquakeCatalog into storable rows.
// Seq records each event's position within the source catalog, which
// stores use as the tiebreak when events share a time.
func EventsFromCatalog(datasetID string, c EarthquakeCatalog) []*CatalogEvent {
	events := make([]*CatalogEvent, len(c.Times))
	for i := range c.Times {
		events[i] = &CatalogEvent{
			DatasetID: datasetID,
			Seq:       i,
			T:         c.Times[i],
			Magnitude: c.Magnitudes[i],
		}
	}
	return events
}

// AlignedCatalog is an earthquake catalog sorted by time with cumulative
// injected volume interpolated at each event time. Volumes are NaN for
// events outside the injection series' time domain; they are never
// extrapolated.
type AlignedCatalog struct {
	Times      []float64
	Magnitudes []float64
	Volumes    []float64
}

// Len returns the number of aligned events.
func (a AlignedCatalog) Len() int {
	return len(a.Times)
}

// FilteredCatalog is the usable earthquake subset after the magnitude
// cutoff and volume-window truncation. Volumes are rebased to the window
// origin (this is Veq); Vs is the earliest survivor's interpolated volume
// before rebasing.
type FilteredCatalog struct {
	Volumes    []float64
	Magnitudes []float64
	Vs         float64
}

// Len returns the number of retained events.
func (f FilteredCatalog) Len() int {
	return len(f.Volumes)
}
