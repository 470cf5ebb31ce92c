package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"govee-logger/internal/domain"
)

type Settings struct {
	Devices  []domain.Device
	Unit     domain.Unit
	Location *time.Location
}

// Recorder takes one sample of every configured device and appends it to
// the store. Devices are polled one after another in configuration order.
type Recorder struct {
	source   ReadingSource
	store    ReadingStore
	notifier Notifier
	metrics  Metrics
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

func NewRecorder(
	source ReadingSource,
	store ReadingStore,
	notifier Notifier,
	metrics Metrics,
	settings Settings,
	logger *slog.Logger,
) *Recorder {
	return &Recorder{
		source:   source,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for the run timestamp.
func (r *Recorder) SetClock(now func() time.Time) {
	r.now = now
}

// Run polls every device, then autosizes and persists the store. A device
// that cannot be read is skipped and listed in the summary; an error is
// returned only when nothing could be persisted.
func (r *Recorder) Run(ctx context.Context) (*Summary, error) {
	started := r.now()
	summary := &Summary{
		Timestamp: domain.FormatTimestamp(started, r.settings.Location),
		Path:      r.store.Path(),
		Total:     len(r.settings.Devices),
	}

	for _, device := range r.settings.Devices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		temp, err := r.source.FetchTemperature(ctx, device, r.settings.Unit)
		if err != nil {
			r.logger.Warn("skipping device", "device", device.Name, "sku", device.SKU, "error", err)
			summary.Failures = append(summary.Failures, Failure{Device: device, Err: err})
			r.metrics.ObserveFailure(device, err)
			continue
		}

		reading := domain.Reading{
			Timestamp:   summary.Timestamp,
			Device:      device,
			Temperature: temp,
		}
		if err := r.store.AppendRow(reading.Row()); err != nil {
			return nil, fmt.Errorf("appending reading for %s: %w", device.Name, err)
		}

		r.logger.Debug("logged reading",
			"device", device.Name,
			"temp_f", temp.Fahrenheit,
			"temp_c", temp.Celsius,
		)
		summary.Logged++
		r.metrics.ObserveReading(reading)
	}

	if err := r.store.Autosize(); err != nil {
		return nil, fmt.Errorf("autosizing columns: %w", err)
	}
	if err := r.store.Persist(); err != nil {
		return nil, err
	}

	finished := r.now()
	r.metrics.ObserveRun(summary.Logged, summary.Total, finished, finished.Sub(started))

	if len(summary.Failures) > 0 {
		if err := r.notifier.Notify(ctx, summary.Alert(finished)); err != nil {
			r.logger.Error("notifying failures", "error", err)
		}
	}

	return summary, nil
}
