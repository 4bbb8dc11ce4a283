package models

import (
	"encoding/json"
	"testing"
)

func TestMeasurementUnmarshalPreservesRawDocument(t *testing.T) {
	doc := []byte(`{
		"_id": "m1",
		"device_id": "d1",
		"timestamp": "2024-01-15T10:30:00Z",
		"name": "Test",
		"file_id": "f1",
		"result": {"tcc": 152000, "icc": 34000},
		"settings": {"mode": "continuous"}
	}`)

	var m Measurement
	if err := json.Unmarshal(doc, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if m.ID != "m1" || m.DeviceID != "d1" || m.Name != "Test" || m.FileID != "f1" {
		t.Errorf("typed fields not decoded: %+v", m)
	}
	if m.Timestamp.IsZero() {
		t.Error("timestamp not parsed")
	}
	if got := m.Timestamp.Format("2006-01-02_15-04-05"); got != "2024-01-15_10-30-00" {
		t.Errorf("timestamp = %s, want 2024-01-15_10-30-00", got)
	}

	// The raw document must survive for measurement.json, including the
	// nested computation metadata we do not model.
	var raw map[string]any
	if err := json.Unmarshal(m.Raw, &raw); err != nil {
		t.Fatalf("Raw is not valid JSON: %v", err)
	}
	if _, ok := raw["result"]; !ok {
		t.Error("Raw lost the result field")
	}
	if _, ok := raw["settings"]; !ok {
		t.Error("Raw lost the settings field")
	}
}

func TestMeasurementUnmarshalToleratesBadTimestamp(t *testing.T) {
	for _, doc := range []string{
		`{"_id":"m1","name":"Test"}`,
		`{"_id":"m1","name":"Test","timestamp":"not-a-date"}`,
	} {
		var m Measurement
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			t.Errorf("Unmarshal(%s) error = %v, want tolerant decode", doc, err)
		}
		if !m.Timestamp.IsZero() {
			t.Errorf("Timestamp = %v, want zero for %s", m.Timestamp, doc)
		}
	}
}

func TestMeasurementMarshalRoundTrip(t *testing.T) {
	doc := []byte(`{"_id":"m1","name":"Test","custom":"kept"}`)

	var m Measurement
	if err := json.Unmarshal(doc, &m); err != nil {
		t.Fatal(err)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != string(doc) {
		t.Errorf("Marshal() = %s, want verbatim document %s", out, doc)
	}
}

func TestMeasurementDisplayName(t *testing.T) {
	if got := (Measurement{Name: "Run 1"}).DisplayName(); got != "Run 1" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := (Measurement{}).DisplayName(); got != "unnamed" {
		t.Errorf("DisplayName() = %q, want unnamed", got)
	}
}

func TestDeviceLabel(t *testing.T) {
	tests := []struct {
		device Device
		want   string
	}{
		{Device{SerialNumber: "SN1", Name: "Inlet"}, "SN1 - Inlet"},
		{Device{SerialNumber: "SN1"}, "SN1 - Unnamed"},
		{Device{Name: "Inlet"}, "Unknown - Inlet"},
	}
	for _, tt := range tests {
		if got := tt.device.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}
