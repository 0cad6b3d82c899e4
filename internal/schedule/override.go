package schedule

import (
	"fmt"
	"sort"
	"time"
)

// SlotState is the override applied to one time on one date.
type SlotState int

const (
	// StateDefault defers to the weekly schedule.
	StateDefault SlotState = iota
	// StateAvailable force-opens the slot.
	StateAvailable
	// StateUnavailable force-closes the slot.
	StateUnavailable
)

func (s SlotState) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	default:
		return "default"
	}
}

// ParseSlotState parses "default", "available" or "unavailable".
func ParseSlotState(s string) (SlotState, error) {
	switch s {
	case "default":
		return StateDefault, nil
	case "available":
		return StateAvailable, nil
	case "unavailable":
		return StateUnavailable, nil
	}
	return StateDefault, fmt.Errorf("invalid slot state %q", s)
}

// DayOverride holds the non-default overrides for a single date.
// Each time has exactly one state, so a slot can never be both forced open and closed.
type DayOverride map[TimeLabel]SlotState

// State returns the override for a time, StateDefault if none.
func (d DayOverride) State(l TimeLabel) SlotState {
	return d[l]
}

// Set records a state for a time. StateDefault removes the entry.
func (d DayOverride) Set(l TimeLabel, s SlotState) {
	if s == StateDefault {
		delete(d, l)
		return
	}
	d[l] = s
}

// Cycle advances a time default -> available -> unavailable -> default and returns the new state.
func (d DayOverride) Cycle(l TimeLabel) SlotState {
	next := StateDefault
	switch d.State(l) {
	case StateDefault:
		next = StateAvailable
	case StateAvailable:
		next = StateUnavailable
	}
	d.Set(l, next)
	return next
}

// Available returns the force-open times, sorted.
func (d DayOverride) Available() []TimeLabel {
	return d.with(StateAvailable)
}

// Unavailable returns the force-closed times, sorted.
func (d DayOverride) Unavailable() []TimeLabel {
	return d.with(StateUnavailable)
}

func (d DayOverride) with(s SlotState) []TimeLabel {
	out := make([]TimeLabel, 0)
	for l, st := range d {
		if st == s {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minutes() < out[j].Minutes() })
	return out
}

// FullDay returns an override putting every canonical label in state s.
func FullDay(s SlotState) DayOverride {
	d := make(DayOverride, len(CanonicalLabels))
	for _, l := range CanonicalLabels {
		d.Set(l, s)
	}
	return d
}

// Overrides maps calendar dates (YYYY-MM-DD) to their day overrides.
type Overrides map[string]DayOverride

// For returns the override of a date, if any.
func (o Overrides) For(date time.Time) (DayOverride, bool) {
	d, ok := o[FormatDate(date)]
	if !ok || len(d) == 0 {
		return nil, false
	}
	return d, true
}

// Put stores an override for a date; an empty override removes the date.
func (o Overrides) Put(date time.Time, d DayOverride) {
	key := FormatDate(date)
	if len(d) == 0 {
		delete(o, key)
		return
	}
	o[key] = d
}

// Dates returns the dates carrying overrides, sorted.
func (o Overrides) Dates() []string {
	out := make([]string, 0, len(o))
	for k := range o {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
