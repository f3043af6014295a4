package history

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"readtrack/internal/models"
)

const largeMigrationThreshold = 1000

// legacyShape is one variant of the on-disk history union. Detection and the
// transform for a variant live on the same type.
type legacyShape interface {
	format() models.Format
	matches(doc map[string]any) bool
	classify(doc map[string]any, c *models.Classification)
	transform(doc map[string]any, mc *migration) (*models.History, error)
}

// shapes is ordered: the first match wins.
var shapes = []legacyShape{
	currentShape{},
	entryArrayShape{},
	entryMapShape{},
	basicShape{},
}

type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// Detect classifies an arbitrary record without modifying it.
func (d *Detector) Detect(raw any) models.Classification {
	_, _, c := d.resolve(raw)
	return c
}

func (d *Detector) resolve(raw any) (map[string]any, legacyShape, models.Classification) {
	c := models.Classification{
		Format:   models.FormatUnknown,
		Issues:   []string{},
		Warnings: []string{},
	}

	doc, err := asDocument(raw)
	if err != nil {
		c.Issues = append(c.Issues, err.Error())
		return nil, nil, c
	}

	c.HasReadingDayEntries = has(doc, "readingDayEntries") || has(doc, "readingDayMap")
	if periods, ok := doc["bookPeriods"].([]any); ok && len(periods) > 0 {
		c.HasBookPeriods = true
	}
	for _, key := range []string{"currentStreak", "longestStreak", "lastReadDate", "totalDaysRead", "lastCalculated"} {
		if has(doc, key) {
			c.HasMetadata = true
			break
		}
	}

	for _, s := range shapes {
		if s.matches(doc) {
			c.Format = s.format()
			s.classify(doc, &c)
			return doc, s, c
		}
	}
	c.Issues = append(c.Issues, "no known reading history fields found")
	return doc, nil, c
}

// asDocument accepts decoded JSON objects, raw JSON and canonical histories.
func asDocument(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("input is empty")
	case map[string]any:
		return v, nil
	case []byte:
		return decodeDocument(v)
	case json.RawMessage:
		return decodeDocument(v)
	case *models.History:
		if v == nil {
			return nil, fmt.Errorf("input is empty")
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return decodeDocument(b)
	}
	return nil, fmt.Errorf("input is not an object (%T)", raw)
}

func decodeDocument(b []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("input is not an object")
	}
	return doc, nil
}

func estimate(points int) string {
	if points < largeMigrationThreshold {
		return "<1s"
	}
	return "2-3s"
}

type currentShape struct{}

func (currentShape) format() models.Format { return models.FormatEnhancedCurrent }

func (currentShape) matches(doc map[string]any) bool {
	_, isList := doc["readingDayEntries"].([]any)
	return has(doc, "version") && isList && has(doc, "lastSyncDate")
}

func (currentShape) classify(doc map[string]any, c *models.Classification) {
	c.Version = cast.ToInt(doc["version"])
	c.DataPoints = len(doc["readingDayEntries"].([]any))
	c.EstimatedMigrationTime = "0s"
}

func (currentShape) transform(doc map[string]any, _ *migration) (*models.History, error) {
	return historyFromDocument(doc), nil
}

type entryArrayShape struct{}

func (entryArrayShape) format() models.Format { return models.FormatEnhancedLegacy }

func (entryArrayShape) matches(doc map[string]any) bool {
	_, ok := doc["readingDayEntries"].([]any)
	return ok
}

func (entryArrayShape) classify(doc map[string]any, c *models.Classification) {
	c.Version = cast.ToInt(doc["version"])
	c.DataPoints = len(doc["readingDayEntries"].([]any))
	c.EstimatedMigrationTime = estimate(c.DataPoints)
}

func (entryArrayShape) transform(doc map[string]any, mc *migration) (*models.History, error) {
	log := models.NewDayLog()
	for _, item := range doc["readingDayEntries"].([]any) {
		mc.addEntry(log, "", item)
	}
	return mc.finish(log, doc), nil
}

type entryMapShape struct{}

func (entryMapShape) format() models.Format { return models.FormatReadingDayMap }

func entryMap(doc map[string]any) map[string]any {
	if m, ok := doc["readingDayMap"].(map[string]any); ok {
		return m
	}
	m, _ := doc["readingDayEntries"].(map[string]any)
	return m
}

func (entryMapShape) matches(doc map[string]any) bool {
	return entryMap(doc) != nil
}

func (entryMapShape) classify(doc map[string]any, c *models.Classification) {
	c.Version = cast.ToInt(doc["version"])
	c.DataPoints = len(entryMap(doc))
	c.EstimatedMigrationTime = estimate(c.DataPoints)
}

func (entryMapShape) transform(doc map[string]any, mc *migration) (*models.History, error) {
	entries := entryMap(doc)
	log := models.NewDayLog()
	for _, key := range sortedKeys(entries) {
		mc.addEntry(log, key, entries[key])
	}
	return mc.finish(log, doc), nil
}

type basicShape struct{}

func (basicShape) format() models.Format { return models.FormatBasicLegacy }

func (basicShape) matches(doc map[string]any) bool {
	return has(doc, "readingDays") || has(doc, "currentStreak") || has(doc, "longestStreak")
}

func (basicShape) classify(doc map[string]any, c *models.Classification) {
	c.DataPoints = len(unwrapDates(doc["readingDays"]))
	c.EstimatedMigrationTime = estimate(c.DataPoints)
	if c.DataPoints > 0 && !c.HasBookPeriods {
		c.Warnings = append(c.Warnings, "no book periods present: reading days will migrate as manual entries and book provenance may be lost")
	}
}

func (basicShape) transform(doc map[string]any, mc *migration) (*models.History, error) {
	periods := decodePeriods(doc["bookPeriods"])
	log := models.NewDayLog()
	for _, date := range unwrapDates(doc["readingDays"]) {
		if !models.IsISODate(date) {
			mc.dropped++
			continue
		}
		if log.Has(date) {
			continue
		}
		e := models.ReadingDayEntry{
			Date:       date,
			Source:     models.SourceManual,
			CreatedAt:  mc.fallback,
			ModifiedAt: mc.fallback,
		}
		if ids := booksCovering(periods, date); len(ids) > 0 {
			e.Source = models.SourceBook
			e.BookIDs = ids
		}
		log.Put(e)
	}
	return log.History(periods, mc.lastCalculated, mc.now), nil
}
