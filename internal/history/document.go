package history

import (
	"github.com/spf13/cast"

	"readtrack/internal/models"
)

// DecodeHistory reads a canonical history field by field. A field whose value
// has the wrong shape is left at its zero value, so validation reports it as
// missing or invalid and auto-fix can backfill it. Only input that is not an
// object at all is an error.
func DecodeHistory(raw any) (*models.History, error) {
	doc, err := asDocument(raw)
	if err != nil {
		return nil, err
	}
	return historyFromDocument(doc), nil
}

func historyFromDocument(doc map[string]any) *models.History {
	h := &models.History{}

	switch doc["readingDays"].(type) {
	case []any, map[string]any:
		h.ReadingDays = append(models.DateSet{}, unwrapDates(doc["readingDays"])...)
	}

	if items, ok := doc["readingDayEntries"].([]any); ok {
		h.ReadingDayEntries = make([]models.ReadingDayEntry, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				h.ReadingDayEntries = append(h.ReadingDayEntries, entryFromDocument(m))
			}
		}
	}

	if _, ok := doc["bookPeriods"].([]any); ok {
		h.BookPeriods = decodePeriods(doc["bookPeriods"])
	}

	h.LastCalculated, _ = parseTimestamp(doc["lastCalculated"])
	h.LastSyncDate, _ = parseTimestamp(doc["lastSyncDate"])
	h.Version = looseVersion(doc["version"])
	return h
}

// entryFromDocument keeps the entry as written: an unknown source or a bad
// timestamp is left for validation to report.
func entryFromDocument(m map[string]any) models.ReadingDayEntry {
	e := models.ReadingDayEntry{
		Date:   cast.ToString(m["date"]),
		Source: models.Source(cast.ToString(m["source"])),
		Notes:  cast.ToString(m["notes"]),
	}
	if ids := cast.ToStringSlice(m["bookIds"]); len(ids) > 0 {
		e.BookIDs = ids
	}
	e.CreatedAt, _ = parseTimestamp(m["createdAt"])
	e.ModifiedAt, _ = parseTimestamp(m["modifiedAt"])
	return e
}

func looseVersion(v any) int {
	switch v.(type) {
	case nil, bool:
		return 0
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0
	}
	return n
}
