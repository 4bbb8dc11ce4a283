package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnovate/bactocloud-dl/internal/api"
	"github.com/bnovate/bactocloud-dl/internal/downloader"
	"github.com/bnovate/bactocloud-dl/internal/events"
	"github.com/bnovate/bactocloud-dl/internal/filter"
	"github.com/bnovate/bactocloud-dl/internal/progress"
)

const dateLayout = "2006-01-02"

// defaultLookbackDays is how far back --from reaches when omitted.
const defaultLookbackDays = 7

func newDownloadCmd() *cobra.Command {
	var (
		serials   []string
		fromDate  string
		toDate    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download measurements for selected devices and date range",
		Long: `Download measurement metadata (measurement.json) and FCS payloads
(data.fcs) for the selected devices, into:

  {output}/{device_serial}/{timestamp}_{name}/

Individual measurement failures are recorded and skipped; the batch
continues and a summary is printed at the end.`,
		Example: `  bactocloud-dl download --device BS-0042 --from 2024-01-01 --to 2024-01-31
  bactocloud-dl download -d BS-0042 -d BS-0107 -o /data/bacto`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(serials) == 0 {
				return fmt.Errorf("at least one --device serial is required")
			}

			dateRange, err := parseDateRange(fromDate, toDate)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.OutputDir
			}

			client, err := api.NewClient(cfg)
			if err != nil {
				return err
			}

			logger.Info().
				Strs("devices", serials).
				Str("from", dateRange.Start.Format(dateLayout)).
				Str("to", dateRange.End.Format(dateLayout)).
				Str("output", outputDir).
				Msg("Starting download")

			bus := events.NewEventBus(0)
			d := downloader.New(client, bus, logger)

			rendered := make(chan struct{})
			go renderEvents(bus, rendered)

			summary, runErr := d.Run(cmd.Context(), downloader.Options{
				Serials:   serials,
				Range:     dateRange,
				OutputDir: outputDir,
			})

			bus.Close()
			<-rendered

			printSummary(summary)

			if runErr != nil {
				return runErr
			}
			if summary.Total > 0 && summary.Succeeded == 0 {
				return fmt.Errorf("all %d measurements failed", summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&serials, "device", "d", nil, "Device serial number (repeatable)")
	cmd.Flags().StringVar(&fromDate, "from", "", "Start date, YYYY-MM-DD (default: --to minus 7 days)")
	cmd.Flags().StringVar(&toDate, "to", "", "End date, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: from config, ./downloads)")

	return cmd
}

// parseDateRange parses --from/--to with defaults: --to is today, --from
// is --to minus the default lookback.
func parseDateRange(fromStr, toStr string) (filter.DateRange, error) {
	to := time.Now().UTC()
	if toStr != "" {
		var err error
		to, err = time.Parse(dateLayout, toStr)
		if err != nil {
			return filter.DateRange{}, fmt.Errorf("invalid --to date %q (want YYYY-MM-DD): %w", toStr, err)
		}
	}

	from := to.AddDate(0, 0, -defaultLookbackDays)
	if fromStr != "" {
		var err error
		from, err = time.Parse(dateLayout, fromStr)
		if err != nil {
			return filter.DateRange{}, fmt.Errorf("invalid --from date %q (want YYYY-MM-DD): %w", fromStr, err)
		}
	}

	if from.After(to) {
		return filter.DateRange{}, fmt.Errorf("--from %s is after --to %s", from.Format(dateLayout), to.Format(dateLayout))
	}

	return filter.NewDateRange(from, to), nil
}

// renderEvents consumes orchestrator events and drives the progress bar
// until the bus closes. Runs on its own goroutine; closes done when the
// event stream ends so the caller can flush before printing the summary.
func renderEvents(bus *events.EventBus, done chan<- struct{}) {
	defer close(done)

	reporter := progress.NewCLIProgress()
	started := false

	for ev := range bus.SubscribeAll() {
		switch e := ev.(type) {
		case *events.ProgressEvent:
			if !started {
				reporter.Start(int64(e.Total), "Downloading measurements")
				started = true
			}
			reporter.SetDescription(fmt.Sprintf("%s %s", e.DeviceSerial, e.Measurement))
			reporter.Update(int64(e.Index))
		case *events.StateChangeEvent:
			logger.Debugf("state: %s -> %s", e.OldState, e.NewState)
		case *events.ErrorEvent:
			if !e.Fatal {
				logger.Warnf("measurement %q failed: %v", e.Measurement, e.Err)
			}
		case *events.LogEvent:
			logger.Infof("%s", e.Message)
		case *events.CompleteEvent:
			if started {
				reporter.Finish()
			}
		}
	}
}

// printSummary reports the end-of-run counts and per-item failures.
func printSummary(summary downloader.Summary) {
	logger.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed()).
		Dur("duration", summary.Duration).
		Msg("Download complete")

	for _, f := range summary.Failures {
		logger.Error().
			Str("device", f.DeviceSerial).
			Str("measurement", f.Measurement).
			Err(f.Err).
			Msg("Measurement not downloaded")
	}
}
