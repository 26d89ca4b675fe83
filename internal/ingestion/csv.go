package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"seismo-index-lab/internal/domain"
)

// CSVSource reads one dataset from a pair of CSV files: an injection
// history of t,cumulative_volume rows and an earthquake catalog of
// t,magnitude rows. A leading header row is tolerated, '#' starts a
// comment line, and ragged rows are rejected.
type CSVSource struct {
	meta        domain.DatasetMeta
	seriesPath  string
	catalogPath string
}

// NewCSVSource creates a CSV-backed source for one dataset.
func NewCSVSource(meta domain.DatasetMeta, seriesPath, catalogPath string) *CSVSource {
	return &CSVSource{
		meta:        meta,
		seriesPath:  seriesPath,
		catalogPath: catalogPath,
	}
}

// Fetch reads both files. Implements Source.
func (s *CSVSource) Fetch(_ context.Context) (*domain.RawDataset, error) {
	series, err := readInjectionFile(s.seriesPath)
	if err != nil {
		return nil, fmt.Errorf("injection csv: %w", err)
	}

	catalog, err := readCatalogFile(s.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("catalog csv: %w", err)
	}

	return &domain.RawDataset{
		Meta:    s.meta,
		Series:  series,
		Catalog: catalog,
	}, nil
}

func readInjectionFile(path string) (domain.InjectionSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.InjectionSeries{}, err
	}
	defer f.Close()

	return ParseInjectionCSV(f)
}

func readCatalogFile(path string) (domain.EarthquakeCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.EarthquakeCatalog{}, err
	}
	defer f.Close()

	return ParseCatalogCSV(f)
}

// ParseInjectionCSV parses t,cumulative_volume rows into an injection series.
func ParseInjectionCSV(r io.Reader) (domain.InjectionSeries, error) {
	times, volumes, err := parsePairs(r)
	if err != nil {
		return domain.InjectionSeries{}, err
	}
	return domain.InjectionSeries{Times: times, Volumes: volumes}, nil
}

// ParseCatalogCSV parses t,magnitude rows into an earthquake catalog.
func ParseCatalogCSV(r io.Reader) (domain.EarthquakeCatalog, error) {
	times, magnitudes, err := parsePairs(r)
	if err != nil {
		return domain.EarthquakeCatalog{}, err
	}
	return domain.EarthquakeCatalog{Times: times, Magnitudes: magnitudes}, nil
}

// parsePairs reads two-column float rows. Only the first row may be a
// textual header; a non-numeric value anywhere else is an error.
func parsePairs(r io.Reader) ([]float64, []float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var first, second []float64
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row++

		a, errA := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if errA != nil {
			if row == 1 {
				continue
			}
			return nil, nil, fmt.Errorf("row %d: non-numeric value %q", row, rec[0])
		}
		b, errB := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if errB != nil {
			if row == 1 {
				continue
			}
			return nil, nil, fmt.Errorf("row %d: non-numeric value %q", row, rec[1])
		}

		first = append(first, a)
		second = append(second, b)
	}

	return first, second, nil
}
