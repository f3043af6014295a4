package history

import (
	"fmt"

	"readtrack/internal/models"
)

type fixStep func(h *models.History) int

// AutoFix applies the deterministic repairs in order: backfill defaults,
// deduplicate entries, then synchronise readingDays with the entries.
// A step that panics is counted in Failed and leaves the history as the previous
// step produced it. The input is never modified.
func (v *Validator) AutoFix(h *models.History) models.FixResult {
	working := h.Clone()
	if working == nil {
		working = &models.History{}
	}

	res := models.FixResult{}
	for _, step := range []fixStep{v.backfillDefaults, dedupeEntries, v.syncReadingDays} {
		candidate := working.Clone()
		n, err := runFixStep(step, candidate)
		if err != nil {
			res.Failed++
			continue
		}
		res.Fixed += n
		working = candidate
	}
	res.UpdatedHistory = working
	return res
}

func runFixStep(step fixStep, h *models.History) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("auto-fix step panicked: %v", r)
		}
	}()
	return step(h), nil
}

func (v *Validator) backfillDefaults(h *models.History) int {
	now := v.now()
	fixed := 0
	if h.Version <= 0 {
		h.Version = models.CurrentVersion
		fixed++
	}
	if h.LastSyncDate.IsZero() {
		h.LastSyncDate = now
		fixed++
	}
	if h.LastCalculated.IsZero() {
		h.LastCalculated = now
		fixed++
	}
	if h.ReadingDayEntries == nil {
		h.ReadingDayEntries = []models.ReadingDayEntry{}
		fixed++
	}
	if h.ReadingDays == nil {
		h.ReadingDays = models.DateSet{}
		fixed++
	}
	if h.BookPeriods == nil {
		h.BookPeriods = []models.ReadingPeriod{}
	}
	for i := range h.ReadingDayEntries {
		e := &h.ReadingDayEntries[i]
		if !e.CreatedAt.IsZero() && !e.ModifiedAt.IsZero() {
			continue
		}
		switch {
		case e.CreatedAt.IsZero() && e.ModifiedAt.IsZero():
			e.CreatedAt, e.ModifiedAt = now, now
		case e.CreatedAt.IsZero():
			e.CreatedAt = e.ModifiedAt
		default:
			e.ModifiedAt = e.CreatedAt
		}
		fixed++
	}
	return fixed
}

func dedupeEntries(h *models.History) int {
	log, dropped := models.DayLogFromHistory(h)
	if dropped > 0 {
		h.ReadingDayEntries = log.Entries()
	}
	return dropped
}

// syncReadingDays makes readingDays and the entries cover the union of both.
// Dates known only to readingDays get a manual entry.
func (v *Validator) syncReadingDays(h *models.History) int {
	now := v.now()
	fixed := 0

	present := make(map[string]struct{}, len(h.ReadingDayEntries))
	for _, e := range h.ReadingDayEntries {
		present[e.Date] = struct{}{}
	}
	for _, d := range h.ReadingDays {
		if _, ok := present[d]; ok {
			continue
		}
		present[d] = struct{}{}
		h.ReadingDayEntries = append(h.ReadingDayEntries, models.ReadingDayEntry{
			Date:       d,
			Source:     models.SourceManual,
			CreatedAt:  now,
			ModifiedAt: now,
		})
		fixed++
	}

	known := h.ReadingDays.Lookup()
	days := make(models.DateSet, 0, len(h.ReadingDayEntries))
	seen := make(map[string]struct{}, len(h.ReadingDayEntries))
	for _, e := range h.ReadingDayEntries {
		if _, dup := seen[e.Date]; dup {
			continue
		}
		seen[e.Date] = struct{}{}
		days = append(days, e.Date)
		if _, ok := known[e.Date]; !ok {
			fixed++
		}
	}
	if len(days) != len(h.ReadingDays) && fixed == 0 {
		// readingDays only held repeated values
		fixed++
	}
	h.ReadingDays = days
	return fixed
}
