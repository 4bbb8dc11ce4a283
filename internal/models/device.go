// Package models defines the data structures used by the BactoCloud API.
package models

import "fmt"

// Device represents a registered BactoSense instrument as returned by
// GET /api/v1/device. Devices are read-only; the fields mirror the API
// response and are never modified after decoding.
type Device struct {
	ID             string `json:"_id"`
	SerialNumber   string `json:"serial_number"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// Label returns the display form used in device listings, e.g.
// "BS-0042 - Reservoir inlet".
func (d Device) Label() string {
	serial := d.SerialNumber
	if serial == "" {
		serial = "Unknown"
	}
	name := d.Name
	if name == "" {
		name = "Unnamed"
	}
	return fmt.Sprintf("%s - %s", serial, name)
}
