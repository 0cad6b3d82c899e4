package schedule

import (
	"sort"
	"time"
)

// Weekly is a stadium's default recurring availability: for each weekday the
// set of slot start labels that are open. A missing day is closed all day.
type Weekly map[time.Weekday]map[TimeLabel]struct{}

// NewWeekly builds a Weekly from per-day label lists. Duplicates collapse.
func NewWeekly(days map[time.Weekday][]TimeLabel) Weekly {
	w := make(Weekly, len(days))
	for day, labels := range days {
		w.Set(day, labels)
	}
	return w
}

// SlotsFor returns the open labels for a weekday, sorted. Never nil-panics on an empty Weekly.
func (w Weekly) SlotsFor(day time.Weekday) []TimeLabel {
	return sortedLabels(w[day])
}

// Contains reports whether the weekday's schedule includes the label.
func (w Weekly) Contains(day time.Weekday, l TimeLabel) bool {
	_, ok := w[day][l]
	return ok
}

// Set replaces the labels for a day. An empty list closes the day.
func (w Weekly) Set(day time.Weekday, labels []TimeLabel) {
	if len(labels) == 0 {
		delete(w, day)
		return
	}
	set := make(map[TimeLabel]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	w[day] = set
}

// Toggle flips one label on a day and reports whether it is now open.
// A nil Weekly is allocated.
func (w *Weekly) Toggle(day time.Weekday, l TimeLabel) bool {
	if w.Contains(day, l) {
		delete((*w)[day], l)
		if len((*w)[day]) == 0 {
			delete(*w, day)
		}
		return false
	}
	if *w == nil {
		*w = make(Weekly)
	}
	if (*w)[day] == nil {
		(*w)[day] = make(map[TimeLabel]struct{})
	}
	(*w)[day][l] = struct{}{}
	return true
}

// Hours returns the first and last open label of a day.
func (w Weekly) Hours(day time.Weekday) (first, last TimeLabel, ok bool) {
	labels := w.SlotsFor(day)
	if len(labels) == 0 {
		return "", "", false
	}
	return labels[0], labels[len(labels)-1], true
}

func sortedLabels(set map[TimeLabel]struct{}) []TimeLabel {
	out := make([]TimeLabel, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minutes() < out[j].Minutes() })
	return out
}
