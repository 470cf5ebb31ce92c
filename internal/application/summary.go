package application

import (
	"fmt"
	"strings"
	"time"

	"govee-logger/internal/domain"
)

type Failure struct {
	Device domain.Device
	Err    error
}

type Summary struct {
	Timestamp string
	Path      string
	Logged    int
	Total     int
	Failures  []Failure
}

// OK reports whether the run logged something, or had nothing to log.
func (s *Summary) OK() bool {
	return s.Logged > 0 || s.Total == 0
}

func (s *Summary) String() string {
	var sb strings.Builder

	sb.WriteString(s.logLine())

	if n := len(s.Failures); n > 0 {
		fmt.Fprintf(&sb, "; %d %s failed: ", n, devices(n))
		for i, f := range s.Failures {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s (%v)", f.Device.Name, f.Err)
		}
	}

	return sb.String()
}

// Alert lists every skipped device on its own line, followed by what was
// logged. It is urgent when no row could be logged.
func (s *Summary) Alert(at time.Time) domain.Alert {
	lines := make([]string, 0, len(s.Failures)+1)
	for _, f := range s.Failures {
		lines = append(lines, fmt.Sprintf("%s (%s %s): %v", f.Device.Name, f.Device.SKU, f.Device.ID, f.Err))
	}
	lines = append(lines, s.logLine())

	return domain.Alert{
		Title:  fmt.Sprintf("%d of %d %s skipped", len(s.Failures), s.Total, devices(s.Total)),
		Lines:  lines,
		At:     at,
		Urgent: !s.OK(),
	}
}

func (s *Summary) logLine() string {
	return fmt.Sprintf("Logged %d of %d rows to %s at %s", s.Logged, s.Total, s.Path, s.Timestamp)
}

func devices(n int) string {
	if n == 1 {
		return "device"
	}
	return "devices"
}
