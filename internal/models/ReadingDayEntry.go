package models

import (
	"regexp"
	"slices"
	"time"
)

// DateLayout is the canonical calendar-date key of a reading day.
const DateLayout = "2006-01-02"

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Source string

const (
	SourceManual   Source = "manual"
	SourceBook     Source = "book"
	SourceProgress Source = "progress"
)

func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceBook, SourceProgress:
		return true
	}
	return false
}

type ReadingDayEntry struct {
	Date       string    `json:"date"`
	Source     Source    `json:"source"`
	BookIDs    []string  `json:"bookIds,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

func (e ReadingDayEntry) Clone() ReadingDayEntry {
	e.BookIDs = slices.Clone(e.BookIDs)
	return e
}

// EntryUpdate is a partial update of a reading day. Nil fields are left untouched.
type EntryUpdate struct {
	Source  *Source   `json:"source,omitempty"`
	BookIDs *[]string `json:"bookIds,omitempty"`
	Notes   *string   `json:"notes,omitempty"`
}

func (u EntryUpdate) Apply(e *ReadingDayEntry, now time.Time) {
	if u.Source != nil {
		e.Source = *u.Source
	}
	if u.BookIDs != nil {
		e.BookIDs = slices.Clone(*u.BookIDs)
		if len(e.BookIDs) == 0 {
			e.BookIDs = nil
		}
	}
	if u.Notes != nil {
		e.Notes = *u.Notes
	}
	e.ModifiedAt = now
}

// ReadingPeriod is a book's tracked reading span. Only read by the engine.
type ReadingPeriod struct {
	BookID    string `json:"bookId"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Duration  int    `json:"duration"`
}

// Covers reports whether date falls inside [StartDate, EndDate].
// Period bounds may be full timestamps; only their calendar day is compared.
func (p ReadingPeriod) Covers(date string) bool {
	start, ok := DayOf(p.StartDate)
	if !ok {
		return false
	}
	end, ok := DayOf(p.EndDate)
	if !ok {
		end = start
	}
	return date >= start && date <= end
}

// IsISODate reports whether s is a real YYYY-MM-DD calendar date.
func IsISODate(s string) bool {
	_, ok := ParseDay(s)
	return ok
}

func ParseDay(s string) (time.Time, bool) {
	if !isoDateRe.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DayOf reduces a date or an RFC3339 timestamp to its YYYY-MM-DD key.
func DayOf(s string) (string, bool) {
	if IsISODate(s) {
		return s, true
	}
	if len(s) > 10 && IsISODate(s[:10]) {
		return s[:10], true
	}
	return "", false
}
