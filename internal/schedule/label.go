package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidTime = errors.New("invalid time, expected HH:MM")
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidSlot = errors.New("invalid slot, expected a whole hour from 00:00 to 23:00")
)

// DateLayout is the ISO calendar date format used for dates and override keys.
const DateLayout = "2006-01-02"

// TimeLabel is a 24-hour "HH:MM" time of day marking the start of a slot.
// "24:00" is accepted only as an end bound.
type TimeLabel string

// CanonicalLabels are the bookable one-hour slots of a day.
var CanonicalLabels = []TimeLabel{
	"06:00", "07:00", "08:00", "09:00", "10:00", "11:00",
	"12:00", "13:00", "14:00", "15:00", "16:00", "17:00",
	"18:00", "19:00", "20:00", "21:00", "22:00", "23:00",
}

// ParseTimeLabel accepts "HH:MM" or "HH:MM:SS" (as returned by Postgres TIME::text)
// and returns the normalized "HH:MM" label.
func ParseTimeLabel(s string) (TimeLabel, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	for _, p := range parts {
		if len(p) != 2 {
			return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 24 || m < 0 || m > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec != 0 {
			return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	}
	if h == 24 && m != 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return LabelFromMinutes(h*60 + m), nil
}

// ParseSlotStart is ParseTimeLabel restricted to labels that can start a slot.
func ParseSlotStart(s string) (TimeLabel, error) {
	l, err := ParseTimeLabel(s)
	if err != nil {
		return "", err
	}
	if !l.IsSlotStart() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	return l, nil
}

// MustLabel is ParseTimeLabel for constants and tests.
func MustLabel(s string) TimeLabel {
	l, err := ParseTimeLabel(s)
	if err != nil {
		panic(err)
	}
	return l
}

// LabelFromMinutes formats minutes since midnight as a label.
func LabelFromMinutes(min int) TimeLabel {
	return TimeLabel(fmt.Sprintf("%02d:%02d", min/60, min%60))
}

// Minutes returns minutes since midnight, or -1 for a malformed label.
func (l TimeLabel) Minutes() int {
	if len(l) != 5 || l[2] != ':' {
		return -1
	}
	h, errH := strconv.Atoi(string(l[:2]))
	m, errM := strconv.Atoi(string(l[3:]))
	if errH != nil || errM != nil {
		return -1
	}
	return h*60 + m
}

// IsSlotStart reports whether l is on the hour and a slot can start at it (00:00 to 23:00).
func (l TimeLabel) IsSlotStart() bool {
	m := l.Minutes()
	return m >= 0 && m%60 == 0 && m < 24*60
}

// Add returns the label d later. Overflow past midnight is not wrapped.
func (l TimeLabel) Add(d time.Duration) TimeLabel {
	return LabelFromMinutes(l.Minutes() + int(d/time.Minute))
}

// Before reports whether l is strictly earlier in the day than o.
func (l TimeLabel) Before(o TimeLabel) bool {
	return l.Minutes() < o.Minutes()
}

func (l TimeLabel) String() string {
	return string(l)
}

// ParseDate parses a YYYY-MM-DD string into a midnight UTC time.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// FormatDate renders a date as YYYY-MM-DD, ignoring its clock part.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// Day truncates t to its calendar date in t's own location, returned as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DatesBetween returns every calendar date from "from" to "to", both inclusive.
func DatesBetween(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
