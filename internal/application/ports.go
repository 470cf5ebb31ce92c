package application

import (
	"context"
	"time"

	"govee-logger/internal/domain"
)

type ReadingSource interface {
	FetchTemperature(ctx context.Context, device domain.Device, unit domain.Unit) (domain.Temperature, error)
}

type ReadingStore interface {
	AppendRow(row []any) error
	Autosize() error
	Persist() error
	Path() string
}

type Metrics interface {
	ObserveReading(r domain.Reading)
	ObserveFailure(device domain.Device, err error)
	ObserveRun(logged, total int, finished time.Time, took time.Duration)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveReading(domain.Reading)                 {}
func (NoopMetrics) ObserveFailure(domain.Device, error)           {}
func (NoopMetrics) ObserveRun(int, int, time.Time, time.Duration) {}
