package writer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnovate/bactocloud-dl/internal/models"
)

func testMeasurement(t *testing.T) models.Measurement {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2024-01-15T10:30:00Z")
	if err != nil {
		t.Fatal(err)
	}
	return models.Measurement{
		ID:        "meas-1",
		Timestamp: ts,
		Name:      "Test",
		FileID:    "file-1",
		Raw:       json.RawMessage(`{"_id":"meas-1","name":"Test","result":{"tcc":12345}}`),
	}
}

func TestWriteMeasurementLayout(t *testing.T) {
	root := t.TempDir()
	m := testMeasurement(t)

	paths, err := WriteMeasurement(root, "SN1", m, []byte("FCS3.1 payload"))
	if err != nil {
		t.Fatalf("WriteMeasurement() error = %v", err)
	}

	wantDir := filepath.Join(root, "SN1", "2024-01-15_10-30-00_Test")
	if paths.Dir != wantDir {
		t.Errorf("Dir = %q, want %q", paths.Dir, wantDir)
	}
	if paths.Metadata != filepath.Join(wantDir, "measurement.json") {
		t.Errorf("Metadata = %q, want %q", paths.Metadata, filepath.Join(wantDir, "measurement.json"))
	}
	if paths.Data != filepath.Join(wantDir, "data.fcs") {
		t.Errorf("Data = %q, want %q", paths.Data, filepath.Join(wantDir, "data.fcs"))
	}

	payload, err := os.ReadFile(paths.Data)
	if err != nil {
		t.Fatalf("reading data.fcs: %v", err)
	}
	if string(payload) != "FCS3.1 payload" {
		t.Errorf("data.fcs content = %q, want raw payload bytes", payload)
	}

	doc, err := os.ReadFile(paths.Metadata)
	if err != nil {
		t.Fatalf("reading measurement.json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(doc, &decoded); err != nil {
		t.Fatalf("measurement.json is not valid JSON: %v", err)
	}
	if decoded["name"] != "Test" {
		t.Errorf("measurement.json name = %v, want Test", decoded["name"])
	}
	// Nested computation metadata must survive untouched.
	result, ok := decoded["result"].(map[string]any)
	if !ok || result["tcc"] != float64(12345) {
		t.Errorf("measurement.json lost nested metadata: %v", decoded["result"])
	}
}

func TestWriteMeasurementOverwriteIsIdempotent(t *testing.T) {
	root := t.TempDir()
	m := testMeasurement(t)

	if _, err := WriteMeasurement(root, "SN1", m, []byte("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	paths, err := WriteMeasurement(root, "SN1", m, []byte("second"))
	if err != nil {
		t.Fatalf("second write: %v", err)
	}

	payload, err := os.ReadFile(paths.Data)
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != "second" {
		t.Errorf("rerun did not overwrite payload: got %q", payload)
	}
}

func TestWriteMeasurementWithoutPayload(t *testing.T) {
	root := t.TempDir()
	m := testMeasurement(t)
	m.FileID = ""

	paths, err := WriteMeasurement(root, "SN1", m, nil)
	if err != nil {
		t.Fatalf("WriteMeasurement() error = %v", err)
	}
	if paths.Data != "" {
		t.Errorf("Data path = %q, want empty when no payload", paths.Data)
	}
	if _, err := os.Stat(filepath.Join(paths.Dir, "data.fcs")); !os.IsNotExist(err) {
		t.Errorf("data.fcs should not exist for payload-less measurement")
	}
	if _, err := os.Stat(paths.Metadata); err != nil {
		t.Errorf("measurement.json missing: %v", err)
	}
}

func TestWriteMeasurementSanitizesComponents(t *testing.T) {
	root := t.TempDir()
	m := testMeasurement(t)
	m.Name = "Test/Run: #2"

	paths, err := WriteMeasurement(root, "SN:1", m, nil)
	if err != nil {
		t.Fatalf("WriteMeasurement() error = %v", err)
	}

	wantDir := filepath.Join(root, "SN1", "2024-01-15_10-30-00_TestRun 2")
	if paths.Dir != wantDir {
		t.Errorf("Dir = %q, want %q", paths.Dir, wantDir)
	}
}

func TestFolderNameUnknownDate(t *testing.T) {
	m := models.Measurement{Name: "Test"}
	if got, want := FolderName(m), "unknown_date_Test"; got != want {
		t.Errorf("FolderName() = %q, want %q", got, want)
	}
}
