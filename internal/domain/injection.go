package domain

// InjectionSeries is the cumulative fluid-injection history of one site:
// paired sample times and cumulative volumes, both monotonically
// non-decreasing. Units are caller-defined but must match the earthquake
// catalog's time axis; volumes are cubic meters by convention.
type InjectionSeries struct {
	Times   []float64 // sample times, ascending
	Volumes []float64 // cumulative injected volume at each sample time
}

// Len returns the number of samples.
func (s InjectionSeries) Len() int {
	return len(s.Times)
}

// InjectionSample represents one injection telemetry row.
// Corresponds to injection_samples table in ClickHouse.
type InjectionSample struct {
	DatasetID        string  // owning dataset identifier
	T                float64 // sample time in the dataset's time unit
	CumulativeVolume float64 // cumulative injected volume at T
}

// SeriesFromSamples assembles an InjectionSeries from stored rows.
// Rows are assumed already ordered by time, the way sample stores list them.
func SeriesFromSamples(samples []*InjectionSample) InjectionSeries {
	s := InjectionSeries{
		Times:   make([]float64, len(samples)),
		Volumes: make([]float64, len(samples)),
	}
	for i, row := range samples {
		s.Times[i] = row.T
		s.Volumes[i] = row.CumulativeVolume
	}
	return s
}

// SamplesFromSeries flattens an InjectionSeries into storable rows stamped
// with the owning dataset ID. Inverse of SeriesFromSamples.
func SamplesFromSeries(datasetID string, s InjectionSeries) []*InjectionSample {
	samples := make([]*InjectionSample, len(s.Times))
	for i := range s.Times {
		samples[i] = &InjectionSample{
			DatasetID:        datasetID,
			T:                s.Times[i],
			CumulativeVolume: s.Volumes[i],
		}
	}
	return samples
}
