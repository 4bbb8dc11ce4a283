// Package downloader sequences the download pipeline: list devices,
// query measurements, filter by date, then fetch and write each
// measurement in turn.
//
// The orchestrator runs on a single worker goroutine and reports
// progress through an event bus, so front ends never share mutable
// state with it. Per-item failures are recorded and the batch
// continues; only upstream failures (authentication, listing) abort
// the whole run.
package downloader

import (
	"context"
	"fmt"
	"time"

	"github.com/bnovate/bactocloud-dl/internal/events"
	"github.com/bnovate/bactocloud-dl/internal/filter"
	"github.com/bnovate/bactocloud-dl/internal/logging"
	"github.com/bnovate/bactocloud-dl/internal/models"
	"github.com/bnovate/bactocloud-dl/internal/writer"
)

// State is the orchestrator's lifecycle state.
type State string

const (
	StateIdle        State = "idle"
	StateListing     State = "listing"
	StateFiltering   State = "filtering"
	StateDownloading State = "downloading"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Client is the API surface the orchestrator depends on. *api.Client
// satisfies it; tests substitute a fake.
type Client interface {
	ListDevices(ctx context.Context) ([]models.Device, error)
	ListMeasurements(ctx context.Context, deviceIDs []string, r filter.DateRange) ([]models.Measurement, error)
	FetchFile(ctx context.Context, fileID string) ([]byte, error)
}

// Options selects what to download.
type Options struct {
	// Serials are the selected device serial numbers. Every serial must
	// exist in the organization's device list.
	Serials []string

	// Range is the inclusive measurement timestamp window.
	Range filter.DateRange

	// OutputDir is the root of the download tree.
	OutputDir string
}

// ItemFailure records one measurement that could not be downloaded.
type ItemFailure struct {
	DeviceSerial string
	Measurement  string // display name
	Err          error
}

// Summary reports the outcome of a run.
type Summary struct {
	Total     int
	Succeeded int
	Failures  []ItemFailure
	Duration  time.Duration
}

// Failed returns the number of failed items.
func (s Summary) Failed() int {
	return len(s.Failures)
}

// Downloader orchestrates measurement downloads.
type Downloader struct {
	client Client
	bus    *events.EventBus
	log    *logging.Logger
	state  State

	// writeFn is swappable for tests that simulate filesystem failures.
	writeFn func(root, serial string, m models.Measurement, data []byte) (writer.Paths, error)
}

// New creates a Downloader. The event bus may be shared with a front
// end; the logger must not be nil.
func New(client Client, bus *events.EventBus, log *logging.Logger) *Downloader {
	return &Downloader{
		client:  client,
		bus:     bus,
		log:     log,
		state:   StateIdle,
		writeFn: writer.WriteMeasurement,
	}
}

// State returns the current lifecycle state. Only meaningful to the
// goroutine that called Run; concurrent observers should subscribe to
// state change events instead.
func (d *Downloader) State() State {
	return d.state
}

func (d *Downloader) setState(s State) {
	old := d.state
	d.state = s
	d.bus.PublishStateChange(string(old), string(s))
}

// fail transitions to Failed and publishes the fatal error.
func (d *Downloader) fail(err error) error {
	d.setState(StateFailed)
	d.bus.PublishError("", err, true)
	return err
}

// Run executes one download batch. The returned Summary is valid even
// when err is non-nil: cancellation mid-batch reports the items
// completed so far.
//
// Cancellation is observed between measurements; an in-flight request
// is allowed to complete first.
func (d *Downloader) Run(ctx context.Context, opts Options) (Summary, error) {
	started := time.Now()

	d.setState(StateListing)
	d.log.Info().Int("devices", len(opts.Serials)).Msg("Listing devices")

	devices, err := d.client.ListDevices(ctx)
	if err != nil {
		return Summary{}, d.fail(fmt.Errorf("failed to list devices: %w", err))
	}

	bySerial := make(map[string]models.Device, len(devices))
	for _, dev := range devices {
		bySerial[dev.SerialNumber] = dev
	}

	deviceIDs := make([]string, 0, len(opts.Serials))
	serialByID := make(map[string]string, len(opts.Serials))
	for _, serial := range opts.Serials {
		dev, ok := bySerial[serial]
		if !ok {
			return Summary{}, d.fail(fmt.Errorf("unknown device serial %q", serial))
		}
		deviceIDs = append(deviceIDs, dev.ID)
		serialByID[dev.ID] = dev.SerialNumber
	}

	d.log.Info().
		Time("start", opts.Range.Start).
		Time("end", opts.Range.End).
		Msg("Querying measurements")

	measurements, err := d.client.ListMeasurements(ctx, deviceIDs, opts.Range)
	if err != nil {
		return Summary{}, d.fail(fmt.Errorf("failed to list measurements: %w", err))
	}

	d.setState(StateFiltering)
	filtered := filter.ByDateRange(measurements, opts.Range)
	d.log.Info().Int("measurements", len(filtered)).Msg("Measurements in range")

	d.setState(StateDownloading)
	summary := Summary{Total: len(filtered)}

	for i, m := range filtered {
		// User-initiated stop: the in-flight item above already
		// completed; stop before starting the next one.
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			d.setState(StateFailed)
			return summary, fmt.Errorf("download cancelled: %w", err)
		}

		serial := serialByID[m.DeviceID]
		name := m.DisplayName()

		if err := d.downloadOne(ctx, opts.OutputDir, serial, m); err != nil {
			d.log.Warn().Err(err).Str("measurement", name).Msg("Measurement failed, continuing")
			d.bus.PublishError(name, err, false)
			summary.Failures = append(summary.Failures, ItemFailure{
				DeviceSerial: serial,
				Measurement:  name,
				Err:          err,
			})
			continue
		}

		summary.Succeeded++
		d.bus.PublishProgress(serial, name, i+1, summary.Total, "downloaded")
	}

	summary.Duration = time.Since(started)
	d.setState(StateDone)
	d.bus.Publish(&events.CompleteEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventComplete, Time: time.Now()},
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed(),
		Duration:  summary.Duration,
	})

	return summary, nil
}

// downloadOne fetches and writes a single measurement. Measurements
// without a file ID have no binary payload; only the metadata document
// is written for those.
func (d *Downloader) downloadOne(ctx context.Context, root, serial string, m models.Measurement) error {
	var data []byte
	if m.FileID != "" {
		var err error
		data, err = d.client.FetchFile(ctx, m.FileID)
		if err != nil {
			return err
		}
	}

	paths, err := d.writeFn(root, serial, m, data)
	if err != nil {
		return err
	}

	d.log.Debug().
		Str("dir", paths.Dir).
		Int("bytes", len(data)).
		Msg("Wrote measurement")
	return nil
}
