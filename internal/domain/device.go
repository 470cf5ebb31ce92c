package domain

import "time"

// Columns is the header row of the readings sheet.
var Columns = []string{"timestamp", "device_name", "device_id", "sku", "temp_f", "temp_c"}

// TimestampLayout is ISO-8601 with seconds and a numeric zone offset.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

type Device struct {
	Name string `yaml:"name"`
	SKU  string `yaml:"sku"`
	ID   string `yaml:"id"`
}

type Reading struct {
	Timestamp string
	Device    Device
	Temperature
}

// Row returns the cells of r in the order of Columns.
func (r Reading) Row() []any {
	return []any{
		r.Timestamp,
		r.Device.Name,
		r.Device.ID,
		r.Device.SKU,
		r.Fahrenheit,
		r.Celsius,
	}
}

func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(TimestampLayout)
}
