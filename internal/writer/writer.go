// Package writer materializes downloaded measurements on disk.
//
// Output layout, one directory per measurement:
//
//	{root}/{device_serial}/{YYYY-MM-DD_HH-MM-SS}_{name}/measurement.json
//	{root}/{device_serial}/{YYYY-MM-DD_HH-MM-SS}_{name}/data.fcs
//
// Writes are idempotent: re-running a download for an already-downloaded
// measurement recreates the directory tree as needed and overwrites the
// files in place.
package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnovate/bactocloud-dl/internal/diskspace"
	"github.com/bnovate/bactocloud-dl/internal/models"
	"github.com/bnovate/bactocloud-dl/internal/util/sanitize"
)

const (
	// MetadataFileName is the JSON metadata file inside each measurement folder.
	MetadataFileName = "measurement.json"

	// DataFileName is the FCS binary payload inside each measurement folder.
	DataFileName = "data.fcs"

	// unknownDateFolder is the timestamp prefix used when a measurement
	// carries no parseable timestamp.
	unknownDateFolder = "unknown_date"

	dirPerm  = 0755
	filePerm = 0644
)

// Paths reports where a measurement was written.
type Paths struct {
	Dir      string
	Metadata string
	Data     string // empty when the measurement had no binary payload
}

// FolderName returns the per-measurement directory name,
// "2024-01-15_10-30-00_Test" style. Exported so front ends can predict
// output locations without writing anything.
func FolderName(m models.Measurement) string {
	dateStr := unknownDateFolder
	if !m.Timestamp.IsZero() {
		dateStr = m.Timestamp.UTC().Format("2006-01-02_15-04-05")
	}
	return dateStr + "_" + sanitize.PathComponent(m.Name)
}

// WriteMeasurement writes the metadata document and, when data is
// non-nil, the binary payload for one measurement. The device serial and
// measurement name are sanitized before use as path components.
func WriteMeasurement(root, serial string, m models.Measurement, data []byte) (Paths, error) {
	dir := filepath.Join(root, sanitize.PathComponent(serial), FolderName(m))
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return Paths{}, fmt.Errorf("failed to create measurement directory: %w", err)
	}

	paths := Paths{Dir: dir, Metadata: filepath.Join(dir, MetadataFileName)}

	doc, err := indentMetadata(m)
	if err != nil {
		return Paths{}, err
	}

	if err := diskspace.Check(dir, int64(len(doc))+int64(len(data))); err != nil {
		return Paths{}, err
	}
	if err := os.WriteFile(paths.Metadata, doc, filePerm); err != nil {
		return Paths{}, fmt.Errorf("failed to write %s: %w", MetadataFileName, err)
	}

	if data != nil {
		paths.Data = filepath.Join(dir, DataFileName)
		if err := os.WriteFile(paths.Data, data, filePerm); err != nil {
			return Paths{}, fmt.Errorf("failed to write %s: %w", DataFileName, err)
		}
	}

	return paths, nil
}

// indentMetadata renders the measurement document as human-readable JSON.
// The verbatim API document is preferred; a measurement decoded without
// one falls back to the typed fields.
func indentMetadata(m models.Measurement) ([]byte, error) {
	if len(m.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, m.Raw, "", "  "); err != nil {
			return nil, fmt.Errorf("invalid measurement metadata: %w", err)
		}
		return buf.Bytes(), nil
	}

	doc, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode measurement metadata: %w", err)
	}
	return doc, nil
}
