package models

import (
	"fmt"
	"time"
)

// Level tags a log entry for display. It has no behavioral effect.
type Level string

const (
	LevelInfo   Level = "info"
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// TimeLayout is the fixed-precision UTC layout used for every persisted
// timestamp, so that raw string comparison matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts TimeLayout as well as any RFC 3339 timestamp.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// LogEntry is one entry of a user's rolling activity log.
//
// Epoch (unix milliseconds) is written alongside Time by this implementation.
// Records created elsewhere may lack it.
type LogEntry struct {
	Time  string `json:"time"`
	Event string `json:"event"`
	Level Level  `json:"level"`
	Epoch int64  `json:"epoch,omitempty"`
}

// NewLogEntry stamps an entry with now.
func NewLogEntry(now time.Time, event string, level Level) LogEntry {
	return LogEntry{
		Time:  FormatTime(now),
		Event: event,
		Level: level,
		Epoch: now.UnixMilli(),
	}
}

// AdminLogEntry is one entry of the global activity feed stored under
// "admin:logs".
type AdminLogEntry struct {
	Email string `json:"email"`
	Time  string `json:"time"`
	Event string `json:"event"`
	Level Level  `json:"level"`
	Epoch int64  `json:"epoch,omitempty"`
}

// Entry drops the owner, yielding the per-user shape.
func (a AdminLogEntry) Entry() LogEntry {
	return LogEntry{Time: a.Time, Event: a.Event, Level: a.Level, Epoch: a.Epoch}
}

// ForEmail attaches an owner to a per-user entry.
func (e LogEntry) ForEmail(email string) AdminLogEntry {
	return AdminLogEntry{Email: email, Time: e.Time, Event: e.Event, Level: e.Level, Epoch: e.Epoch}
}

// Newer reports whether a sorts before b in most-recent-first order. Epochs
// decide when both entries carry one; otherwise the raw time strings are
// compared, which is also what happens for unparsable times.
func Newer(a, b LogEntry) bool {
	if a.Epoch != 0 && b.Epoch != 0 {
		return a.Epoch > b.Epoch
	}
	return a.Time > b.Time
}
