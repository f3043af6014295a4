package models

import (
	"iter"
	"slices"
	"time"
)

// DayLog is the reading history keyed by date. Entries keep insertion order and
// the date set is derived from them, so the two can never diverge.
type DayLog struct {
	entries []ReadingDayEntry
	index   map[string]int
}

func NewDayLog() *DayLog {
	return &DayLog{index: make(map[string]int)}
}

// DayLogFromHistory loads the entries of h. When a date repeats, the entry with the
// later ModifiedAt wins and takes the position of the first occurrence.
// It returns the number of dropped duplicates.
func DayLogFromHistory(h *History) (*DayLog, int) {
	l := NewDayLog()
	if h == nil {
		return l, 0
	}
	dropped := 0
	for _, e := range h.ReadingDayEntries {
		if l.Merge(e) {
			dropped++
		}
	}
	return l, dropped
}

func (l *DayLog) Len() int {
	return len(l.entries)
}

func (l *DayLog) Has(date string) bool {
	_, ok := l.index[date]
	return ok
}

func (l *DayLog) Get(date string) (ReadingDayEntry, bool) {
	i, ok := l.index[date]
	if !ok {
		return ReadingDayEntry{}, false
	}
	return l.entries[i].Clone(), true
}

// Put inserts e or replaces the entry with the same date.
func (l *DayLog) Put(e ReadingDayEntry) {
	if i, ok := l.index[e.Date]; ok {
		l.entries[i] = e.Clone()
		return
	}
	l.index[e.Date] = len(l.entries)
	l.entries = append(l.entries, e.Clone())
}

// Merge inserts e, or on a date collision keeps whichever entry was modified last.
// Reports whether a collision happened.
func (l *DayLog) Merge(e ReadingDayEntry) bool {
	i, ok := l.index[e.Date]
	if !ok {
		l.Put(e)
		return false
	}
	if e.ModifiedAt.After(l.entries[i].ModifiedAt) {
		l.entries[i] = e.Clone()
	}
	return true
}

func (l *DayLog) Delete(date string) bool {
	i, ok := l.index[date]
	if !ok {
		return false
	}
	l.entries = slices.Delete(l.entries, i, i+1)
	delete(l.index, date)
	for j := i; j < len(l.entries); j++ {
		l.index[l.entries[j].Date] = j
	}
	return true
}

// Dates iterates the readingDays view in entry order.
func (l *DayLog) Dates() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range l.entries {
			if !yield(e.Date) {
				return
			}
		}
	}
}

func (l *DayLog) Entries() []ReadingDayEntry {
	out := make([]ReadingDayEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Clone()
	}
	return out
}

// History materialises the wire shape with readingDays derived from the entries.
func (l *DayLog) History(periods []ReadingPeriod, lastCalculated, lastSync time.Time) *History {
	if periods == nil {
		periods = []ReadingPeriod{}
	}
	days := make(DateSet, 0, len(l.entries))
	for d := range l.Dates() {
		days = append(days, d)
	}
	return &History{
		ReadingDays:       days,
		ReadingDayEntries: l.Entries(),
		BookPeriods:       slices.Clone(periods),
		LastCalculated:    lastCalculated,
		LastSyncDate:      lastSync,
		Version:           CurrentVersion,
	}
}
