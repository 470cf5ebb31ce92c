package govee

import (
	"errors"
	"fmt"
)

// ErrTimeout is wrapped by a TransportError when the request timed out.
var ErrTimeout = errors.New("request timed out")

// TransportError reports a failed exchange with the Govee API. Status is
// the HTTP status or the vendor code, zero when no response was received.
type TransportError struct {
	Device   string
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("device %s: %s (status %d): %v", e.Device, e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("device %s: %s: %v", e.Device, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout)
}

// MissingCapabilityError means the response parsed but held no usable value
// for Instance.
type MissingCapabilityError struct {
	Device   string
	Instance string
	Value    string
}

func (e *MissingCapabilityError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("device %s: capability %s has non-numeric value %s", e.Device, e.Instance, e.Value)
	}
	return fmt.Sprintf("device %s: no %s capability in response", e.Device, e.Instance)
}
