package govee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"govee-logger/internal/domain"
)

const (
	DefaultEndpoint = "https://openapi.api.govee.com/router/api/v1/device/state"
	DefaultTimeout  = 15 * time.Second

	// TemperatureInstance is the capability instance carrying the sensor reading.
	TemperatureInstance = "sensorTemperature"
)

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return NewClientWithURL(apiKey, DefaultEndpoint, DefaultTimeout)
}

func NewClientWithURL(apiKey, endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type stateRequest struct {
	RequestID string      `json:"requestId"`
	Payload   stateDevice `json:"payload"`
}

type stateDevice struct {
	SKU    string `json:"sku"`
	Device string `json:"device"`
}

type stateResponse struct {
	RequestID string `json:"requestId"`
	Code      int    `json:"code"`
	Msg       string `json:"msg"`
	Payload   struct {
		SKU          string       `json:"sku"`
		Device       string       `json:"device"`
		Capabilities []Capability `json:"capabilities"`
	} `json:"payload"`
}

// Capability is one entry of the device state capabilities list.
type Capability struct {
	Type     string `json:"type"`
	Instance string `json:"instance"`
	State    struct {
		Value json.RawMessage `json:"value"`
	} `json:"state"`
}

// Float returns the state value as a finite number. Govee reports most
// sensor values as JSON numbers but some firmware sends them as strings.
func (c Capability) Float() (float64, bool) {
	raw := bytes.TrimSpace(c.State.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// FindCapability returns the first capability whose instance matches.
func FindCapability(caps []Capability, instance string) (Capability, bool) {
	for _, c := range caps {
		if c.Instance == instance {
			return c, true
		}
	}
	return Capability{}, false
}

// FetchTemperature reads the current temperature of device. The raw value
// is interpreted in unit and converted to the other scale.
func (c *Client) FetchTemperature(ctx context.Context, device domain.Device, unit domain.Unit) (domain.Temperature, error) {
	caps, err := c.fetchState(ctx, device)
	if err != nil {
		return domain.Temperature{}, err
	}

	capability, ok := FindCapability(caps, TemperatureInstance)
	if !ok {
		return domain.Temperature{}, &MissingCapabilityError{Device: device.Name, Instance: TemperatureInstance}
	}

	value, ok := capability.Float()
	if !ok {
		return domain.Temperature{}, &MissingCapabilityError{
			Device:   device.Name,
			Instance: TemperatureInstance,
			Value:    string(capability.State.Value),
		}
	}

	return domain.Normalize(value, unit), nil
}

func (c *Client) fetchState(ctx context.Context, device domain.Device) ([]Capability, error) {
	body, err := json.Marshal(stateRequest{
		RequestID: uuid.NewString(),
		Payload:   stateDevice{SKU: device.SKU, Device: device.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Govee-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, c.transportError(device, 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, c.transportError(device, resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.transportError(device, resp.StatusCode, fmt.Errorf("unexpected status %s: %s", resp.Status, snippet(respBody)))
	}

	var result stateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, c.transportError(device, resp.StatusCode, fmt.Errorf("parsing response: %w", err))
	}

	if result.Code != 0 && result.Code != http.StatusOK {
		return nil, c.transportError(device, result.Code, fmt.Errorf("govee error: %s", result.Msg))
	}

	return result.Payload.Capabilities, nil
}

func (c *Client) transportError(device domain.Device, status int, err error) error {
	return &TransportError{
		Device:   device.Name,
		Endpoint: c.endpoint,
		Status:   status,
		Err:      err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
