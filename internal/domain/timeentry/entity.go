package timeentry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/timeguard/timeguard-api/internal/pkg/variance"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusInvalid   Status = "invalid" // closed by the stale-session job
)

type TimeEntry struct {
	ID           string
	EmployeeID   string
	SiteID       string
	ClockInTime  time.Time
	ClockInLat   float64
	ClockInLon   float64
	ClockOutTime *time.Time
	ClockOutLat  *float64
	ClockOutLon  *float64
	Status       Status
	ClockInKey   *string
	ClockOutKey  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	EmployeeName *string
	SiteName     *string
}

// WorkedHours returns the completed duration in hours rounded to two decimals,
// or zero while the entry is still open.
func (e *TimeEntry) WorkedHours() float64 {
	if e.ClockOutTime == nil || e.ClockOutTime.Before(e.ClockInTime) {
		return 0
	}
	return variance.HoursBetween(e.ClockOutTime.Sub(e.ClockInTime).Minutes())
}

// Position is a geolocation sample reported by the client device.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// UnmarshalJSON accepts the timestamp either as an RFC 3339 string or as epoch
// milliseconds, which is what the browser geolocation API reports.
func (p *Position) UnmarshalJSON(data []byte) error {
	type alias Position
	aux := struct {
		*alias
		Timestamp json.RawMessage `json:"timestamp"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.Timestamp)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		p.Timestamp = time.Time{}
	case raw[0] == '"':
		var t time.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		p.Timestamp = t
	default:
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return fmt.Errorf("timestamp: expected RFC 3339 string or epoch milliseconds: %w", err)
		}
		p.Timestamp = time.UnixMilli(int64(ms)).UTC()
	}
	return nil
}

// FreshAt reports whether the sample was taken no more than maxAge before now.
// Samples slightly in the future are accepted to tolerate device clock skew.
func (p *Position) FreshAt(now time.Time, maxAge time.Duration) bool {
	if p.Timestamp.IsZero() {
		return false
	}
	age := now.Sub(p.Timestamp)
	return age <= maxAge && age >= -maxAge
}
