package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/idhash"
	"seismo-index-lab/internal/observability"
	"seismo-index-lab/internal/storage"
)

// Loader handles bulk ingestion of a directory of datasets. Each dataset
// is a subdirectory holding injection.csv and catalog.csv plus an optional
// dataset.meta file of KEY=VALUE lines (NAME, REGION, WELL_NAME, TIME_UNIT,
// VOLUME_UNIT, NOTES). The metadata falls back to the directory name and
// the default units.
type Loader struct {
	datasetStore storage.DatasetStore
	eventStore   storage.CatalogEventStore
	sampleStore  storage.InjectionSampleStore
	nowMs        func() int64
	logger       *log.Logger
}

// LoaderOptions contains configuration for creating a Loader.
type LoaderOptions struct {
	DatasetStore storage.DatasetStore
	EventStore   storage.CatalogEventStore
	SampleStore  storage.InjectionSampleStore
	NowMs        func() int64
	Logger       *log.Logger
}

// NewLoader creates a new directory loader.
func NewLoader(opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Loader{
		datasetStore: opts.DatasetStore,
		eventStore:   opts.EventStore,
		sampleStore:  opts.SampleStore,
		nowMs:        opts.NowMs,
		logger:       logger,
	}
}

// LoadResult contains statistics from a directory load.
type LoadResult struct {
	DatasetsIngested  int
	SamplesIngested   int
	EventsIngested    int
	DuplicatesSkipped int
	Errors            int
	Duration          time.Duration
}

// LoadDir ingests every dataset directory under root, in name order.
// Datasets already in storage are counted as duplicates and skipped; other
// failures are counted and logged without stopping the walk.
func (l *Loader) LoadDir(ctx context.Context, root string) (*LoadResult, error) {
	start := time.Now()
	result := &LoadResult{}

	entries, err := os.ReadDir(root)
	if err != nil {
		return result, fmt.Errorf("read dataset dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		seriesPath := filepath.Join(dir, "injection.csv")
		catalogPath := filepath.Join(dir, "catalog.csv")
		if _, err := os.Stat(seriesPath); err != nil {
			// Not a dataset directory
			continue
		}

		meta, err := readMetaFile(filepath.Join(dir, "dataset.meta"))
		if err != nil {
			result.Errors++
			observability.RecordIngestError("metadata")
			l.logger.Printf("Error reading metadata for %s: %v", entry.Name(), err)
			continue
		}
		applyMetaDefaults(&meta, entry.Name())

		mgr := NewManager(ManagerOptions{
			Source:       NewCSVSource(meta, seriesPath, catalogPath),
			DatasetStore: l.datasetStore,
			EventStore:   l.eventStore,
			SampleStore:  l.sampleStore,
			NowMs:        l.nowMs,
		})

		res, err := mgr.IngestDataset(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				result.DuplicatesSkipped++
				l.logger.Printf("Skipping %s: already ingested", entry.Name())
				continue
			}
			result.Errors++
			observability.RecordIngestError("ingest")
			l.logger.Printf("Error ingesting %s: %v", entry.Name(), err)
			continue
		}
		if res == nil {
			continue
		}

		result.DatasetsIngested++
		result.SamplesIngested += res.SampleCount
		result.EventsIngested += res.EventCount
		observability.RecordDatasetIngested(res.SampleCount, res.EventCount)
		l.logger.Printf("Ingested %s: dataset=%s run=%s samples=%d events=%d",
			entry.Name(), idhash.ShortID(res.DatasetID), res.RunID, res.SampleCount, res.EventCount)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// applyMetaDefaults fills the gaps a dataset.meta file may leave.
func applyMetaDefaults(meta *domain.DatasetMeta, dirName string) {
	if meta.Name == "" {
		meta.Name = dirName
	}
	if meta.TimeUnit == "" {
		meta.TimeUnit = "days"
	}
	if meta.VolumeUnit == "" {
		meta.VolumeUnit = "m3"
	}
}

// readMetaFile parses KEY=VALUE lines. A missing file is not an error.
func readMetaFile(path string) (domain.DatasetMeta, error) {
	var meta domain.DatasetMeta

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return meta, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "NAME":
			meta.Name = value
		case "REGION":
			meta.Region = value
		case "WELL_NAME":
			meta.WellName = value
		case "TIME_UNIT":
			meta.TimeUnit = value
		case "VOLUME_UNIT":
			meta.VolumeUnit = value
		case "NOTES":
			meta.Notes = value
		}
	}

	return meta, nil
}
