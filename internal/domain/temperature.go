package domain

import (
	"fmt"
	"math"
	"strings"
)

type Unit string

const (
	UnitFahrenheit Unit = "F"
	UnitCelsius    Unit = "C"
)

// ParseUnit accepts "F" or "C" in any case.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToUpper(strings.TrimSpace(s))) {
	case UnitFahrenheit:
		return UnitFahrenheit, nil
	case UnitCelsius:
		return UnitCelsius, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q (want F or C)", s)
	}
}

type Temperature struct {
	Fahrenheit float64
	Celsius    float64
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Normalize treats raw as a value in unit and derives the other one.
// Both values are rounded to two decimals.
func Normalize(raw float64, unit Unit) Temperature {
	if unit == UnitCelsius {
		return Temperature{
			Fahrenheit: Round2(CelsiusToFahrenheit(raw)),
			Celsius:    Round2(raw),
		}
	}
	return Temperature{
		Fahrenheit: Round2(raw),
		Celsius:    Round2(FahrenheitToCelsius(raw)),
	}
}
