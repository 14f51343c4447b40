// Package timeutil converts between a user's local wall-clock representation
// and UTC instants, given an IANA timezone identifier.
package timeutil

import (
	"os"
	"strings"
	"time"

	"github.com/lenswise/coachdesk/core"
)

const (
	// DateLayout is the calendar date form users submit (local date).
	DateLayout = "2006-01-02"
	// ClockLayout is the bare wall-clock form users submit (local time).
	ClockLayout = "15:04"

	displayLayout = "Monday, January 2, 2006 at 3:04 PM MST"
)

var (
	ErrBadDate     = core.NewMalformedInputError("malformed calendar date, expected YYYY-MM-DD")
	ErrBadClock    = core.NewMalformedInputError("malformed clock time, expected HH:MM or an RFC3339 instant")
	ErrBadTimezone = core.NewMalformedInputError("unknown IANA timezone identifier")
)

// LocalDateTime is a UTC instant as seen in some timezone.
type LocalDateTime struct {
	Date    string `json:"date"`  // YYYY-MM-DD
	Clock   string `json:"time"`  // HH:MM, 24-hour
	Display string `json:"display"`
}

// LocalToUTC interprets `date` + `clock` as wall-clock time in `tz` and
// returns the corresponding UTC instant.
func LocalToUTC(date, clock, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, ErrBadTimezone
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return time.Time{}, ErrBadDate
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, ErrBadClock
	}
	return t.UTC(), nil
}

// UTCToLocal returns the calendar date and clock time of `t` as seen in `tz`,
// plus a human-readable long-form string.
func UTCToLocal(t time.Time, tz string) (LocalDateTime, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return LocalDateTime{}, ErrBadTimezone
	}
	local := t.In(loc)
	return LocalDateTime{
		Date:    local.Format(DateLayout),
		Clock:   local.Format(ClockLayout),
		Display: local.Format(displayLayout),
	}, nil
}

// CurrentTimezone returns the ambient timezone identifier: $TZ when set,
// the platform's local zone name otherwise. Falls back to UTC when the
// local zone has no IANA name.
func CurrentTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	if name := time.Local.String(); name != "Local" {
		return name
	}
	return "UTC"
}

// ValidTimezone reports whether `tz` is a known IANA timezone identifier.
func ValidTimezone(tz string) bool {
	_, err := time.LoadLocation(tz)
	return err == nil
}

// ResolveInstant parses a stored or submitted reminder time into a canonical
// UTC instant. Historical records carry a bare local "HH:MM" alongside the
// reminder date; newer records carry a full RFC3339 instant in the time field.
// Both forms are accepted here, once, so nothing downstream ever re-inspects
// raw strings.
func ResolveInstant(date, rawTime, tz string) (time.Time, error) {
	if strings.Contains(rawTime, "T") {
		t, err := time.Parse(time.RFC3339, rawTime)
		if err != nil {
			return time.Time{}, ErrBadClock
		}
		return t.UTC(), nil
	}
	return LocalToUTC(date, rawTime, tz)
}
