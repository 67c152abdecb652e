package ical

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_RecurringEvent(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	until := time.Date(2026, 3, 31, 8, 0, 0, 0, loc)

	out := string(Calendar{ProdID: "-//Test//EN", Name: "Shifts", Events: []Event{{
		UID:      "a-1@test",
		Stamp:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Start:    time.Date(2026, 3, 2, 8, 0, 0, 0, loc),
		End:      time.Date(2026, 3, 2, 16, 30, 0, 0, loc),
		TZID:     "Europe/Berlin",
		Daily:    true,
		Until:    &until,
		Summary:  "Shift at Warehouse",
		Location: "Hauptstr. 1, Berlin",
	}}}.Encode())

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])
	assert.Contains(t, lines, "X-WR-CALNAME:Shifts")
	assert.Contains(t, lines, "DTSTAMP:20260301T120000Z")
	assert.Contains(t, lines, "DTSTART;TZID=Europe/Berlin:20260302T080000")
	assert.Contains(t, lines, "DTEND;TZID=Europe/Berlin:20260302T163000")
	assert.Contains(t, lines, "RRULE:FREQ=DAILY;UNTIL=20260331T060000Z")
	assert.Contains(t, lines, `LOCATION:Hauptstr. 1\, Berlin`)
}

func TestEncode_UTCAndOpenEnded(t *testing.T) {
	out := string(Calendar{ProdID: "-//Test//EN", Events: []Event{{
		UID:     "a-2@test",
		Start:   time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC),
		End:     time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC),
		Daily:   true,
		Summary: "Night; shift",
	}}}.Encode())

	assert.Contains(t, out, "DTSTART:20260302T220000Z\r\n")
	assert.Contains(t, out, "DTEND:20260303T060000Z\r\n")
	assert.Contains(t, out, "RRULE:FREQ=DAILY\r\n")
	assert.Contains(t, out, `SUMMARY:Night\; shift`+"\r\n")
	assert.NotContains(t, out, "LOCATION")
	assert.NotContains(t, out, "X-WR-CALNAME")
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\\b\;c\,d\ne`, escape("a\\b;c,d\ne"))
}

func TestFold(t *testing.T) {
	short := strings.Repeat("a", 75)
	assert.Equal(t, short, fold(short))

	long := "DESCRIPTION:" + strings.Repeat("ü", 80)
	folded := fold(long)
	for _, part := range strings.Split(folded, "\r\n") {
		assert.LessOrEqual(t, len(part), 75)
	}
	assert.Equal(t, long, strings.ReplaceAll(folded, "\r\n ", ""))
	assert.NotContains(t, folded, "�")
}
