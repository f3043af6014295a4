package models

import (
	"slices"
	"sort"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// CurrentVersion is the canonical schema version.
const CurrentVersion = 1

// History is the canonical reading-activity aggregate as it is stored and exchanged.
// Nil slices mean the field was absent.
type History struct {
	ReadingDays       DateSet           `json:"readingDays"`
	ReadingDayEntries []ReadingDayEntry `json:"readingDayEntries"`
	BookPeriods       []ReadingPeriod   `json:"bookPeriods"`
	LastCalculated    time.Time         `json:"lastCalculated"`
	LastSyncDate      time.Time         `json:"lastSyncDate"`
	Version           int               `json:"version"`
}

func (h *History) Clone() *History {
	if h == nil {
		return nil
	}
	out := *h
	out.ReadingDays = slices.Clone(h.ReadingDays)
	if h.ReadingDayEntries != nil {
		out.ReadingDayEntries = make([]ReadingDayEntry, len(h.ReadingDayEntries))
		for i, e := range h.ReadingDayEntries {
			out.ReadingDayEntries[i] = e.Clone()
		}
	}
	out.BookPeriods = slices.Clone(h.BookPeriods)
	return &out
}

// NewHistory returns an empty canonical history stamped with now.
func NewHistory(now time.Time) *History {
	return &History{
		ReadingDays:       DateSet{},
		ReadingDayEntries: []ReadingDayEntry{},
		BookPeriods:       []ReadingPeriod{},
		LastCalculated:    now,
		LastSyncDate:      now,
		Version:           CurrentVersion,
	}
}

// DateSet is the readingDays view. It decodes from a JSON array or from an
// index-keyed object, which is what a serialised Set degrades into.
type DateSet []string

func (d *DateSet) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*d = list
		return nil
	}
	var record map[string]string
	if err := json.Unmarshal(b, &record); err != nil {
		return err
	}
	*d = DateSetFromRecord(record)
	return nil
}

// DateSetFromRecord flattens an index-keyed record, ordered by numeric index.
func DateSetFromRecord(record map[string]string) DateSet {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	out := make(DateSet, 0, len(keys))
	for _, k := range keys {
		out = append(out, record[k])
	}
	return out
}

func (d DateSet) Contains(date string) bool {
	return slices.Contains(d, date)
}

// Lookup returns the set as a map for membership tests.
func (d DateSet) Lookup() map[string]struct{} {
	m := make(map[string]struct{}, len(d))
	for _, v := range d {
		m[v] = struct{}{}
	}
	return m
}
