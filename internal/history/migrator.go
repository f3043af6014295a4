package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cast"

	"readtrack/internal/models"
)

// Provenance sub-record types, highest priority first.
const (
	subBookCompletion = "book_completion"
	subProgressUpdate = "progress_update"
)

type Migrator struct {
	detector  *Detector
	validator *Validator
	now       func() time.Time
}

func NewMigrator(detector *Detector, validator *Validator) *Migrator {
	return &Migrator{
		detector:  detector,
		validator: validator,
		now:       time.Now,
	}
}

// migration carries per-run state shared by the shape transforms.
type migration struct {
	now            time.Time
	fallback       time.Time
	lastCalculated time.Time
	dropped        int
	skipped        int
}

// Migrate converts any known history shape into the canonical structure.
// The input is never modified.
func (m *Migrator) Migrate(raw any) models.MigrationResult {
	doc, shape, c := m.detector.resolve(raw)
	res := models.MigrationResult{
		Format:            c.Format,
		Issues:            append([]string{}, c.Issues...),
		Warnings:          append([]string{}, c.Warnings...),
		PreservedMetadata: map[string]any{},
	}

	if shape == nil {
		res.Issues = append(res.Issues, "cannot migrate unknown format")
		return res
	}

	now := m.now()
	mc := &migration{now: now, fallback: now, lastCalculated: now}
	if ts, ok := parseTimestamp(doc["lastCalculated"]); ok {
		mc.fallback = ts
		mc.lastCalculated = ts
	}

	h, err := shape.transform(doc, mc)
	if err != nil {
		res.Issues = append(res.Issues, err.Error())
		return res
	}

	if c.Format == models.FormatEnhancedCurrent {
		res.Success = true
		res.CanonicalHistory = h
		res.DataPointsMigrated = len(h.ReadingDayEntries)
		res.Warnings = append(res.Warnings, "already migrated: no migration needed")
		return res
	}

	res.PreservedMetadata = preserveMetadata(doc)
	res.DroppedDates = mc.dropped
	if mc.dropped > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("dropped %d reading day(s) with malformed dates", mc.dropped))
	}
	if mc.skipped > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("skipped %d entry record(s) that were not objects", mc.skipped))
	}

	report := m.validator.Validate(h, nil)
	if !report.IsValid {
		for _, issue := range report.Issues {
			res.Issues = append(res.Issues, issue.Message)
		}
		return res
	}
	for _, w := range report.Warnings {
		res.Warnings = append(res.Warnings, w.Message)
	}

	res.Success = true
	res.CanonicalHistory = h
	res.DataPointsMigrated = len(h.ReadingDayEntries)
	return res
}

// addEntry collapses one legacy entry into the log. key is the map key for
// map-keyed shapes and empty for arrays.
func (mc *migration) addEntry(log *models.DayLog, key string, item any) {
	raw, ok := item.(map[string]any)
	if !ok {
		mc.skipped++
		return
	}

	date := cast.ToString(raw["date"])
	if date == "" {
		date = key
	}

	e := models.ReadingDayEntry{
		Date:  date,
		Notes: cast.ToString(raw["notes"]),
	}
	if ids := cast.ToStringSlice(raw["bookIds"]); len(ids) > 0 {
		e.BookIDs = ids
	}

	subs := decodeSubRecords(raw["sources"])
	e.Source = inferSource(subs, raw["source"])
	e.CreatedAt, e.ModifiedAt = mc.fallback, mc.fallback
	if len(subs) > 0 {
		if ts, ok := subs[0].at(); ok {
			e.CreatedAt = ts
		}
		if ts, ok := subs[len(subs)-1].at(); ok {
			e.ModifiedAt = ts
		}
	} else {
		if ts, ok := parseTimestamp(raw["createdAt"]); ok {
			e.CreatedAt = ts
		}
		if ts, ok := parseTimestamp(raw["modifiedAt"]); ok {
			e.ModifiedAt = ts
		}
	}

	log.Merge(e)
}

func (mc *migration) finish(log *models.DayLog, doc map[string]any) *models.History {
	return log.History(decodePeriods(doc["bookPeriods"]), mc.lastCalculated, mc.now)
}

type subRecord struct {
	kind      string
	timestamp any
}

func (s subRecord) at() (time.Time, bool) {
	return parseTimestamp(s.timestamp)
}

func decodeSubRecords(v any) []subRecord {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]subRecord, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, subRecord{kind: cast.ToString(m["type"]), timestamp: m["timestamp"]})
	}
	return out
}

// inferSource picks book_completion over progress_update over manual. Entries
// without sub-records keep a valid single source if they carry one.
func inferSource(subs []subRecord, single any) models.Source {
	if len(subs) == 0 {
		if s := models.Source(cast.ToString(single)); s.Valid() {
			return s
		}
		return models.SourceManual
	}
	best := models.SourceManual
	for _, s := range subs {
		switch s.kind {
		case subBookCompletion, string(models.SourceBook):
			return models.SourceBook
		case subProgressUpdate, string(models.SourceProgress):
			best = models.SourceProgress
		}
	}
	return best
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
