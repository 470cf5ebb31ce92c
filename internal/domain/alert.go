package domain

import "time"

// Alert describes a run in which one or more devices were skipped.
type Alert struct {
	Title  string
	Lines  []string
	At     time.Time
	Urgent bool
}
