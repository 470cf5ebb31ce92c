package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"govee-logger/internal/domain"
)

const (
	defaultEndpoint = "https://api.pushover.net/1/messages.json"

	// Pushover rejects messages longer than this many characters.
	maxMessage = 1024

	priorityNormal = "0"
	priorityHigh   = "1"
)

type Client struct {
	token      string
	userKey    string
	endpoint   string
	httpClient *http.Client
}

func NewClient(token, userKey string) *Client {
	return NewClientWithURL(token, userKey, defaultEndpoint)
}

func NewClientWithURL(token, userKey, endpoint string) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends alert as one push message. Urgent alerts go out with high
// priority so they bypass the recipient's quiet hours.
func (c *Client) Notify(ctx context.Context, alert domain.Alert) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}

	priority := priorityNormal
	if alert.Urgent {
		priority = priorityHigh
	}

	data := url.Values{}
	data.Set("token", c.token)
	data.Set("user", c.userKey)
	data.Set("title", "Govee Logger: "+alert.Title)
	data.Set("message", truncate(strings.Join(alert.Lines, "\n"), maxMessage))
	data.Set("priority", priority)
	if !alert.At.IsZero() {
		data.Set("timestamp", strconv.FormatInt(alert.At.Unix(), 10))
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint,
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover error: %s", resp.Status)
	}

	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
