package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"govee-logger/internal/domain"
	"govee-logger/internal/infra/govee"
)

const namespace = "govee_logger"

// Textfile collects the metrics of one run into a private registry that is
// written in the node_exporter textfile format.
type Textfile struct {
	registry *prometheus.Registry

	temperature *prometheus.GaugeVec
	deviceUp    *prometheus.GaugeVec
	rowsLogged  prometheus.Gauge
	devices     prometheus.Gauge
	lastRun     prometheus.Gauge
	duration    prometheus.Gauge
}

func NewTextfile() *Textfile {
	m := &Textfile{
		registry: prometheus.NewRegistry(),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Last temperature reported by the device.",
		}, []string{"device", "sku", "id"}),
		deviceUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_up",
			Help:      "1 if the device was read in the last run, 0 otherwise.",
		}, []string{"device", "reason"}),
		rowsLogged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_logged",
			Help:      "Rows appended to the workbook by the last run.",
		}),
		devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices",
			Help:      "Devices configured for the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time spent by the last run.",
		}),
	}

	m.registry.MustRegister(
		m.temperature,
		m.deviceUp,
		m.rowsLogged,
		m.devices,
		m.lastRun,
		m.duration,
	)

	return m
}

func (m *Textfile) ObserveReading(r domain.Reading) {
	m.temperature.WithLabelValues(r.Device.Name, r.Device.SKU, r.Device.ID).Set(r.Celsius)
	m.deviceUp.WithLabelValues(r.Device.Name, "").Set(1)
}

func (m *Textfile) ObserveFailure(device domain.Device, err error) {
	m.deviceUp.WithLabelValues(device.Name, reason(err)).Set(0)
}

func (m *Textfile) ObserveRun(logged, total int, finished time.Time, took time.Duration) {
	m.rowsLogged.Set(float64(logged))
	m.devices.Set(float64(total))
	m.lastRun.Set(float64(finished.Unix()))
	m.duration.Set(took.Seconds())
}

// WriteFile atomically writes the collected metrics to path.
func (m *Textfile) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Gatherer exposes the registry, mostly for tests.
func (m *Textfile) Gatherer() prometheus.Gatherer {
	return m.registry
}

func reason(err error) string {
	var (
		transport *govee.TransportError
		missing   *govee.MissingCapabilityError
	)
	switch {
	case errors.As(err, &transport) && transport.Timeout():
		return "timeout"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &missing):
		return "missing_capability"
	default:
		return "other"
	}
}
