package history

import (
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"readtrack/internal/models"
)

// Top-level fields the engine understands. Anything else is preserved as legacy_<name>.
var knownFields = map[string]struct{}{
	"readingDays":       {},
	"readingDayEntries": {},
	"readingDayMap":     {},
	"bookPeriods":       {},
	"lastCalculated":    {},
	"lastSyncDate":      {},
	"version":           {},
}

// Legacy counters and where they land in preserved metadata.
var legacyCounters = map[string]string{
	"currentStreak": "legacyCurrentStreak",
	"longestStreak": "legacyLongestStreak",
	"totalDaysRead": "legacyTotalDaysRead",
}

const epochMillisThreshold = 1e12

func has(doc map[string]any, key string) bool {
	v, ok := doc[key]
	return ok && v != nil
}

// unwrapDates flattens every representation readingDays has had: a list,
// a typed set and an index-keyed record.
func unwrapDates(v any) []string {
	switch days := v.(type) {
	case nil:
		return nil
	case []string:
		return days
	case models.DateSet:
		return days
	case []any:
		out := make([]string, 0, len(days))
		for _, d := range days {
			if s, err := cast.ToStringE(d); err == nil {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		record := make(map[string]string, len(days))
		for k, d := range days {
			if s, err := cast.ToStringE(d); err == nil {
				record[k] = s
			}
		}
		return models.DateSetFromRecord(record)
	case map[string]bool:
		out := make([]string, 0, len(days))
		for d, present := range days {
			if present {
				out = append(out, d)
			}
		}
		sort.Strings(out)
		return out
	}
	return nil
}

// parseTimestamp accepts RFC3339 strings, epoch seconds and epoch milliseconds.
func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case string:
		if t == "" {
			return time.Time{}, false
		}
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts, true
		}
		if n, err := strconv.ParseFloat(t, 64); err == nil {
			return fromEpoch(n), true
		}
		ts, err := cast.ToTimeE(t)
		return ts, err == nil && !ts.IsZero()
	case float64:
		return fromEpoch(t), true
	}
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return time.Time{}, false
	}
	return fromEpoch(n), true
}

func fromEpoch(n float64) time.Time {
	if n > epochMillisThreshold {
		return time.UnixMilli(int64(n)).UTC()
	}
	return time.Unix(int64(n), 0).UTC()
}

func decodePeriods(v any) []models.ReadingPeriod {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]models.ReadingPeriod, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := cast.ToString(m["bookId"])
		if id == "" {
			id = cast.ToString(m["id"])
		}
		out = append(out, models.ReadingPeriod{
			BookID:    id,
			Title:     cast.ToString(m["title"]),
			Author:    cast.ToString(m["author"]),
			StartDate: cast.ToString(m["startDate"]),
			EndDate:   cast.ToString(m["endDate"]),
			Duration:  cast.ToInt(m["duration"]),
		})
	}
	return out
}

// booksCovering returns the ids of every period that contains date, in period order.
func booksCovering(periods []models.ReadingPeriod, date string) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, p := range periods {
		if p.BookID == "" || !p.Covers(date) {
			continue
		}
		if _, dup := seen[p.BookID]; dup {
			continue
		}
		seen[p.BookID] = struct{}{}
		ids = append(ids, p.BookID)
	}
	return ids
}

func preserveMetadata(doc map[string]any) map[string]any {
	meta := make(map[string]any)
	for key, v := range doc {
		if target, ok := legacyCounters[key]; ok {
			meta[target] = cast.ToInt(v)
			continue
		}
		if key == "lastReadDate" {
			meta["legacyLastReadDate"] = cast.ToString(v)
			continue
		}
		if _, ok := knownFields[key]; ok {
			continue
		}
		meta["legacy_"+key] = v
	}
	return meta
}
