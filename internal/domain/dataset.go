package domain

// Dataset describes one stored injection-site dataset: an injection series
// plus an earthquake catalog sharing a time axis.
// Corresponds to datasets table in PostgreSQL.
type Dataset struct {
	DatasetID  string // PRIMARY KEY, deterministic hash
	Name       string // short human-readable name
	Region     string // geographic region or field name
	WellName   string // injection well identifier
	TimeUnit   string // unit of the shared time axis (e.g. "days")
	VolumeUnit string // unit of cumulative volume (e.g. "m3")
	Notes      string // free-form provenance notes
	CreatedAt  int64  // record creation timestamp (ms)
}

// DatasetMeta describes a dataset before identity assignment. Ingestion
// derives the deterministic DatasetID from Name, Region and WellName and
// stamps CreatedAt on insert.
type DatasetMeta struct {
	Name       string
	Region     string
	WellName   string
	TimeUnit   string
	VolumeUnit string
	Notes      string
}

// RawDataset bundles one dataset as fetched from a source: metadata plus
// the unaligned injection series and earthquake catalog.
type RawDataset struct {
	Meta    DatasetMeta
	Series  InjectionSeries
	Catalog EarthquakeCatalog
}
