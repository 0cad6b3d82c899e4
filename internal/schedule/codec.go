package schedule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Storage encoding. Weekly schedules are stored keyed by lower-case day name;
// older rows keyed by "0".."6" (Sunday first) are still accepted on decode.
// Day overrides are stored as {"available": [...], "unavailable": [...]} and a
// time listed in both decodes as unavailable.

var dayKeys = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// DayKey returns the storage key of a weekday.
func DayKey(d time.Weekday) string {
	return dayKeys[d]
}

// ParseDayKey accepts a day name (any case) or a Sunday-first index "0".."6".
func ParseDayKey(k string) (time.Weekday, error) {
	k = strings.ToLower(strings.TrimSpace(k))
	for i, name := range dayKeys {
		if k == name {
			return time.Weekday(i), nil
		}
	}
	if n, err := strconv.Atoi(k); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", k)
}

func (w Weekly) MarshalJSON() ([]byte, error) {
	out := make(map[string][]TimeLabel, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		out[DayKey(d)] = w.SlotsFor(d)
	}
	return json.Marshal(out)
}

func (w *Weekly) UnmarshalJSON(b []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	res := make(Weekly, len(raw))
	for k, values := range raw {
		day, err := ParseDayKey(k)
		if err != nil {
			return err
		}
		labels, err := parseLabels(values)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		if len(labels) == 0 {
			continue
		}
		// Merge in case both a name and a legacy index name the same day.
		merged := append(res.SlotsFor(day), labels...)
		res.Set(day, merged)
	}
	*w = res
	return nil
}

type dayOverrideJSON struct {
	Available   []string `json:"available"`
	Unavailable []string `json:"unavailable"`
}

func (d DayOverride) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.toJSON())
}

func (d DayOverride) toJSON() dayOverrideJSON {
	return dayOverrideJSON{
		Available:   labelStrings(d.Available()),
		Unavailable: labelStrings(d.Unavailable()),
	}
}

func (d *DayOverride) UnmarshalJSON(b []byte) error {
	var raw dayOverrideJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	res, err := dayOverrideFromJSON(raw)
	if err != nil {
		return err
	}
	*d = res
	return nil
}

func dayOverrideFromJSON(raw dayOverrideJSON) (DayOverride, error) {
	avail, err := parseLabels(raw.Available)
	if err != nil {
		return nil, err
	}
	unavail, err := parseLabels(raw.Unavailable)
	if err != nil {
		return nil, err
	}
	res := make(DayOverride, len(avail)+len(unavail))
	for _, l := range avail {
		res.Set(l, StateAvailable)
	}
	// Applied second so unavailable wins on dual membership.
	for _, l := range unavail {
		res.Set(l, StateUnavailable)
	}
	return res, nil
}

func (o *Overrides) UnmarshalJSON(b []byte) error {
	var raw map[string]DayOverride
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	res := make(Overrides, len(raw))
	for k, d := range raw {
		date, err := ParseDate(k)
		if err != nil {
			return err
		}
		res.Put(date, d)
	}
	*o = res
	return nil
}

func parseLabels(values []string) ([]TimeLabel, error) {
	out := make([]TimeLabel, 0, len(values))
	for _, v := range values {
		l, err := ParseSlotStart(v)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func labelStrings(labels []TimeLabel) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}
