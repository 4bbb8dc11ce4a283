package models

import (
	"encoding/json"
	"time"
)

// Measurement represents one completed data capture on a device, as
// returned by POST /api/v1/data/list.
//
// Raw preserves the complete metadata document exactly as served by the
// API, including computation fields this client does not model. It is
// what gets written to measurement.json so that no metadata is lost.
type Measurement struct {
	ID        string
	DeviceID  string
	Timestamp time.Time
	Name      string
	FileID    string

	Raw json.RawMessage
}

// measurementWire mirrors the subset of the API document we decode into
// typed fields. Timestamps arrive as RFC 3339 strings with a trailing Z.
type measurementWire struct {
	ID        string `json:"_id"`
	DeviceID  string `json:"device_id"`
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	FileID    string `json:"file_id"`
}

// UnmarshalJSON decodes the typed fields and keeps a verbatim copy of the
// document in Raw. A malformed or missing timestamp leaves Timestamp at
// its zero value; the writer falls back to an "unknown_date" folder in
// that case rather than failing the download.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	var w measurementWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	m.ID = w.ID
	m.DeviceID = w.DeviceID
	m.Name = w.Name
	m.FileID = w.FileID
	m.Raw = append(json.RawMessage(nil), data...)

	if w.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, w.Timestamp); err == nil {
			m.Timestamp = ts.UTC()
		}
	}

	return nil
}

// MarshalJSON writes the verbatim document back out when available, so a
// decode/encode round trip does not reorder or drop metadata fields.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}

	w := measurementWire{
		ID:       m.ID,
		DeviceID: m.DeviceID,
		Name:     m.Name,
		FileID:   m.FileID,
	}
	if !m.Timestamp.IsZero() {
		w.Timestamp = m.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(w)
}

// DisplayName returns the measurement name or "unnamed" when empty.
func (m Measurement) DisplayName() string {
	if m.Name == "" {
		return "unnamed"
	}
	return m.Name
}
