package history

import (
	"time"

	"readtrack/internal/models"
)

var fixedNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func testValidator() *Validator {
	v := NewValidatorWithLimits(DefaultLimits())
	v.now = clock
	return v
}

func testMigrator() *Migrator {
	m := NewMigrator(NewDetector(), testValidator())
	m.now = clock
	return m
}

func entry(date string) models.ReadingDayEntry {
	created := fixedNow.Add(-48 * time.Hour)
	return models.ReadingDayEntry{
		Date:       date,
		Source:     models.SourceManual,
		CreatedAt:  created,
		ModifiedAt: created.Add(time.Hour),
	}
}

// validHistory builds a structurally perfect history over dates.
func validHistory(dates ...string) *models.History {
	h := models.NewHistory(fixedNow.Add(-time.Hour))
	for _, d := range dates {
		h.ReadingDayEntries = append(h.ReadingDayEntries, entry(d))
		h.ReadingDays = append(h.ReadingDays, d)
	}
	return h
}

func codes(issues []models.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func dateSetOf(h *models.History) map[string]struct{} {
	return h.ReadingDays.Lookup()
}

func entryDatesOf(h *models.History) map[string]struct{} {
	out := make(map[string]struct{}, len(h.ReadingDayEntries))
	for _, e := range h.ReadingDayEntries {
		out[e.Date] = struct{}{}
	}
	return out
}
