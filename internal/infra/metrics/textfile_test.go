package metrics_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"govee-logger/internal/domain"
	"govee-logger/internal/infra/govee"
	"govee-logger/internal/infra/metrics"
)

func TestTextfile_WriteFile(t *testing.T) {
	m := metrics.NewTextfile()

	ok := domain.Device{Name: "Lab Fridge 1", SKU: "H5111", ID: "FE:32"}
	broken := domain.Device{Name: "Lab Fridge 2", SKU: "H5111", ID: "09:EC"}

	m.ObserveReading(domain.Reading{Device: ok, Temperature: domain.Temperature{Fahrenheit: 33.8, Celsius: 1}})
	m.ObserveFailure(broken, &govee.TransportError{Device: broken.Name, Err: fmt.Errorf("wrapped: %w", govee.ErrTimeout)})
	m.ObserveRun(1, 2, time.Unix(1700000000, 0), 1500*time.Millisecond)

	path := filepath.Join(t.TempDir(), "govee.prom")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`govee_logger_temperature_celsius{device="Lab Fridge 1",id="FE:32",sku="H5111"} 1`,
		`govee_logger_device_up{device="Lab Fridge 1",reason=""} 1`,
		`govee_logger_device_up{device="Lab Fridge 2",reason="timeout"} 0`,
		`govee_logger_rows_logged 1`,
		`govee_logger_devices 2`,
		`govee_logger_last_run_timestamp_seconds 1.7e+09`,
		`govee_logger_last_run_duration_seconds 1.5`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q\n%s", want, out)
		}
	}
}

func TestTextfile_FailureReasons(t *testing.T) {
	m := metrics.NewTextfile()

	m.ObserveFailure(domain.Device{Name: "a"}, &govee.MissingCapabilityError{Device: "a"})
	m.ObserveFailure(domain.Device{Name: "b"}, &govee.TransportError{Device: "b", Status: 500})

	count, err := testutil.GatherAndCount(m.Gatherer(), "govee_logger_device_up")
	if err != nil {
		t.Fatalf("GatherAndCount error: %v", err)
	}
	if count != 2 {
		t.Errorf("device_up series: got %d, want 2", count)
	}

	expected := `
# HELP govee_logger_device_up 1 if the device was read in the last run, 0 otherwise.
# TYPE govee_logger_device_up gauge
govee_logger_device_up{device="a",reason="missing_capability"} 0
govee_logger_device_up{device="b",reason="transport"} 0
`
	if err := testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected), "govee_logger_device_up"); err != nil {
		t.Error(err)
	}
}
