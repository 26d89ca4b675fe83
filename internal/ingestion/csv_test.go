package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seismo-index-lab/internal/domain"
	"seismo-index-lab/internal/storage/memory"
)

func TestParseInjectionCSV_WithHeader(t *testing.T) {
	input := "t,cumulative_volume\n0,0\n1,100\n2,300\n3,600\n"

	series, err := ParseInjectionCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseInjectionCSV failed: %v", err)
	}

	wantTimes := []float64{0, 1, 2, 3}
	wantVolumes := []float64{0, 100, 300, 600}
	if series.Len() != 4 {
		t.Fatalf("Expected 4 samples, got %d", series.Len())
	}
	for i := range wantTimes {
		if series.Times[i] != wantTimes[i] || series.Volumes[i] != wantVolumes[i] {
			t.Errorf("Sample %d: got (%v, %v), want (%v, %v)",
				i, series.Times[i], series.Volumes[i], wantTimes[i], wantVolumes[i])
		}
	}
}

func TestParseInjectionCSV_WithoutHeader(t *testing.T) {
	input := "0,0\n1,100\n"

	series, err := ParseInjectionCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseInjectionCSV failed: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("Expected 2 samples, got %d", series.Len())
	}
	if series.Times[0] != 0 || series.Volumes[1] != 100 {
		t.Errorf("Unexpected values: %+v", series)
	}
}

func TestParseInjectionCSV_Comments(t *testing.T) {
	input := "# basel stimulation, phase 1\nt,cumulative_volume\n0,0\n# shut-in below\n1,100\n"

	series, err := ParseInjectionCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseInjectionCSV failed: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("Expected 2 samples, got %d", series.Len())
	}
}

func TestParseInjectionCSV_ScientificNotation(t *testing.T) {
	input := "0,0\n1,1.5e3\n"

	series, err := ParseInjectionCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseInjectionCSV failed: %v", err)
	}
	if series.Volumes[1] != 1500 {
		t.Errorf("Expected 1500, got %v", series.Volumes[1])
	}
}

func TestParseInjectionCSV_Whitespace(t *testing.T) {
	input := " 0 , 0 \n 1 , 100 \n"

	series, err := ParseInjectionCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseInjectionCSV failed: %v", err)
	}
	if series.Times[1] != 1 || series.Volumes[1] != 100 {
		t.Errorf("Unexpected values: %+v", series)
	}
}

func TestParseInjectionCSV_RaggedRow(t *testing.T) {
	input := "0,0\n1,100,extra\n"

	if _, err := ParseInjectionCSV(strings.NewReader(input)); err == nil {
		t.Error("Expected error for ragged row")
	}
}

func TestParseInjectionCSV_NonNumericMidFile(t *testing.T) {
	input := "t,cumulative_volume\n0,0\n1,oops\n"

	_, err := ParseInjectionCSV(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected error for non-numeric value")
	}
	if !strings.Contains(err.Error(), "oops") {
		t.Errorf("Error should name the offending value, got: %v", err)
	}
}

func TestParseInjectionCSV_Empty(t *testing.T) {
	series, err := ParseInjectionCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Empty input should not error: %v", err)
	}
	if series.Len() != 0 {
		t.Errorf("Expected empty series, got %d samples", series.Len())
	}
}

func TestParseCatalogCSV(t *testing.T) {
	input := "t,magnitude\n0.5,2.0\n1.5,2.5\n2.5,3.0\n"

	catalog, err := ParseCatalogCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCatalogCSV failed: %v", err)
	}
	if catalog.Len() != 3 {
		t.Fatalf("Expected 3 events, got %d", catalog.Len())
	}
	if catalog.Times[0] != 0.5 || catalog.Magnitudes[2] != 3.0 {
		t.Errorf("Unexpected values: %+v", catalog)
	}
}

func writeDatasetFiles(t *testing.T, dir, injection, catalog string) (string, string) {
	t.Helper()

	seriesPath := filepath.Join(dir, "injection.csv")
	if err := os.WriteFile(seriesPath, []byte(injection), 0o644); err != nil {
		t.Fatalf("write injection.csv: %v", err)
	}
	catalogPath := filepath.Join(dir, "catalog.csv")
	if err := os.WriteFile(catalogPath, []byte(catalog), 0o644); err != nil {
		t.Fatalf("write catalog.csv: %v", err)
	}
	return seriesPath, catalogPath
}

func TestCSVSource_Fetch(t *testing.T) {
	seriesPath, catalogPath := writeDatasetFiles(t, t.TempDir(),
		"t,cumulative_volume\n0,0\n1,100\n2,300\n3,600\n",
		"t,magnitude\n0.5,2.0\n1.5,2.5\n2.5,3.0\n")

	meta := domain.DatasetMeta{Name: "basel geothermal stimulation", Region: "basel", WellName: "BS-1"}
	source := NewCSVSource(meta, seriesPath, catalogPath)

	raw, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if raw.Meta != meta {
		t.Errorf("Meta mismatch: got %+v", raw.Meta)
	}
	if raw.Series.Len() != 4 {
		t.Errorf("Expected 4 samples, got %d", raw.Series.Len())
	}
	if raw.Catalog.Len() != 3 {
		t.Errorf("Expected 3 events, got %d", raw.Catalog.Len())
	}
}

func TestCSVSource_Fetch_MissingFile(t *testing.T) {
	dir := t.TempDir()
	source := NewCSVSource(domain.DatasetMeta{Name: "x"},
		filepath.Join(dir, "absent.csv"), filepath.Join(dir, "absent2.csv"))

	if _, err := source.Fetch(context.Background()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestCSVSource_IntoManager(t *testing.T) {
	seriesPath, catalogPath := writeDatasetFiles(t, t.TempDir(),
		"t,cumulative_volume\n0,0\n1,100\n2,300\n3,600\n",
		"t,magnitude\n2.5,3.0\n0.5,2.0\n1.5,2.5\n")

	events := memory.NewCatalogEventStore()
	mgr := NewManager(ManagerOptions{
		Source:       NewCSVSource(domain.DatasetMeta{Name: "basel", Region: "ch", WellName: "BS-1"}, seriesPath, catalogPath),
		DatasetStore: memory.NewDatasetStore(),
		EventStore:   events,
		SampleStore:  memory.NewInjectionSampleStore(),
	})

	ctx := context.Background()
	res, err := mgr.IngestDataset(ctx)
	if err != nil {
		t.Fatalf("IngestDataset failed: %v", err)
	}
	if res.SampleCount != 4 || res.EventCount != 3 {
		t.Errorf("Expected 4 samples and 3 events, got %d and %d", res.SampleCount, res.EventCount)
	}

	// Seq follows file order even though retrieval is time ordered
	stored, err := events.GetByDatasetID(ctx, res.DatasetID)
	if err != nil {
		t.Fatalf("GetByDatasetID failed: %v", err)
	}
	wantSeqs := []int{1, 2, 0}
	for i := range stored {
		if stored[i].Seq != wantSeqs[i] {
			t.Errorf("Event %d: got seq=%d, want %d", i, stored[i].Seq, wantSeqs[i])
		}
	}
}
