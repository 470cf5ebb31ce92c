package domain_test

import (
	"math"
	"testing"
	"time"

	"govee-logger/internal/domain"
)

func TestNormalize_Fahrenheit(t *testing.T) {
	temp := domain.Normalize(33.8, domain.UnitFahrenheit)

	if temp.Fahrenheit != 33.8 {
		t.Errorf("fahrenheit: got %v, want 33.8", temp.Fahrenheit)
	}
	if temp.Celsius != 1.0 {
		t.Errorf("celsius: got %v, want 1.0", temp.Celsius)
	}
}

func TestNormalize_Celsius(t *testing.T) {
	temp := domain.Normalize(5.0, domain.UnitCelsius)

	if temp.Celsius != 5.0 {
		t.Errorf("celsius: got %v, want 5.0", temp.Celsius)
	}
	if temp.Fahrenheit != 41.0 {
		t.Errorf("fahrenheit: got %v, want 41.0", temp.Fahrenheit)
	}
}

func TestNormalize_RoundsNativeValue(t *testing.T) {
	temp := domain.Normalize(21.23456, domain.UnitCelsius)

	if temp.Celsius != 21.23 {
		t.Errorf("celsius: got %v, want 21.23", temp.Celsius)
	}
	if temp.Fahrenheit != 70.22 {
		t.Errorf("fahrenheit: got %v, want 70.22", temp.Fahrenheit)
	}
}

func TestConversion_RoundTrip(t *testing.T) {
	values := []float64{-40, -17.5, 0, 1, 33.8, 37, 98.6, 212, 451.25}

	for _, v := range values {
		if got := domain.FahrenheitToCelsius(domain.CelsiusToFahrenheit(v)); math.Abs(got-v) > 0.01 {
			t.Errorf("C->F->C %v: got %v", v, got)
		}
		if got := domain.CelsiusToFahrenheit(domain.FahrenheitToCelsius(v)); math.Abs(got-v) > 0.01 {
			t.Errorf("F->C->F %v: got %v", v, got)
		}
	}
}

func TestConversion_FixedPoints(t *testing.T) {
	if got := domain.CelsiusToFahrenheit(-40); got != -40 {
		t.Errorf("-40C: got %v", got)
	}
	if got := domain.CelsiusToFahrenheit(100); got != 212 {
		t.Errorf("100C: got %v", got)
	}
	if got := domain.FahrenheitToCelsius(32); got != 0 {
		t.Errorf("32F: got %v", got)
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Unit
		wantErr bool
	}{
		{"F", domain.UnitFahrenheit, false},
		{"c", domain.UnitCelsius, false},
		{" f ", domain.UnitFahrenheit, false},
		{"K", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := domain.ParseUnit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseUnit(%q) error: got %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseUnit(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReading_Row(t *testing.T) {
	r := domain.Reading{
		Timestamp:   "2025-01-02T03:04:05-06:00",
		Device:      domain.Device{Name: "Lab Fridge 1", SKU: "H5111", ID: "FE:32"},
		Temperature: domain.Temperature{Fahrenheit: 33.8, Celsius: 1},
	}

	row := r.Row()
	if len(row) != len(domain.Columns) {
		t.Fatalf("row length: got %d, want %d", len(row), len(domain.Columns))
	}

	want := []any{"2025-01-02T03:04:05-06:00", "Lab Fridge 1", "FE:32", "H5111", 33.8, 1.0}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %s: got %v, want %v", domain.Columns[i], row[i], want[i])
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	ts := time.Date(2025, 7, 1, 17, 30, 15, 999, time.UTC)
	if got := domain.FormatTimestamp(ts, loc); got != "2025-07-01T12:30:15-05:00" {
		t.Errorf("got %s", got)
	}

	if got := domain.FormatTimestamp(ts, time.UTC); got != "2025-07-01T17:30:15+00:00" {
		t.Errorf("utc: got %s", got)
	}
}
