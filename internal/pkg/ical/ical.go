// Package ical writes RFC 5545 calendars with recurring events.
package ical

import (
	"strings"
	"time"
)

const (
	localLayout = "20060102T150405"
	utcLayout   = "20060102T150405Z"
	maxLine     = 75
)

type Calendar struct {
	ProdID string
	Name   string
	Events []Event
}

// Event is a VEVENT. Start and End are written as wall-clock times in TZID when
// it is set, otherwise in UTC. A non-nil Until makes the event repeat daily
// through that instant; Daily without Until repeats indefinitely.
type Event struct {
	UID         string
	Stamp       time.Time
	Start       time.Time
	End         time.Time
	TZID        string
	Daily       bool
	Until       *time.Time
	Summary     string
	Location    string
	Description string
}

// Encode renders the calendar with CRLF line endings and folded lines.
func (c Calendar) Encode() []byte {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(fold(s))
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + c.ProdID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	if c.Name != "" {
		line("X-WR-CALNAME:" + escape(c.Name))
	}

	for _, e := range c.Events {
		line("BEGIN:VEVENT")
		line("UID:" + e.UID)
		line("DTSTAMP:" + e.Stamp.UTC().Format(utcLayout))
		line(dateTime("DTSTART", e.Start, e.TZID))
		line(dateTime("DTEND", e.End, e.TZID))
		if e.Daily {
			rule := "RRULE:FREQ=DAILY"
			if e.Until != nil {
				rule += ";UNTIL=" + e.Until.UTC().Format(utcLayout)
			}
			line(rule)
		}
		line("SUMMARY:" + escape(e.Summary))
		if e.Location != "" {
			line("LOCATION:" + escape(e.Location))
		}
		if e.Description != "" {
			line("DESCRIPTION:" + escape(e.Description))
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return []byte(b.String())
}

func dateTime(name string, t time.Time, tzid string) string {
	if tzid == "" || tzid == "UTC" {
		return name + ":" + t.UTC().Format(utcLayout)
	}
	return name + ";TZID=" + tzid + ":" + t.Format(localLayout)
}

var escaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escape(s string) string {
	return escaper.Replace(s)
}

// fold splits content lines longer than 75 octets, never inside a UTF-8 sequence.
func fold(s string) string {
	if len(s) <= maxLine {
		return s
	}

	var b strings.Builder
	limit := maxLine
	n := 0
	for _, r := range s {
		size := len(string(r))
		if n+size > limit {
			b.WriteString("\r\n ")
			// continuation lines lose one octet to the leading space
			limit = maxLine - 1
			n = 0
		}
		b.WriteRune(r)
		n += size
	}
	return b.String()
}
