package models

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
)

// Issue is a single validator finding. Findings are values, never errors.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Field    string   `json:"field,omitempty"`
	Dates    []string `json:"dates,omitempty"`
	Fixable  bool     `json:"fixable"`
	Fix      string   `json:"fix,omitempty"`
}

func (i Issue) Blocking() bool {
	return i.Severity == SeverityCritical || i.Severity == SeverityError
}

type ValidationReport struct {
	IsValid         bool     `json:"isValid"`
	Score           int      `json:"score"`
	Issues          []Issue  `json:"issues"`
	Warnings        []Issue  `json:"warnings"`
	Recommendations []string `json:"recommendations"`
	FixableIssues   []Issue  `json:"fixableIssues"`
}

type FixResult struct {
	Fixed          int      `json:"fixed"`
	Failed         int      `json:"failed"`
	UpdatedHistory *History `json:"updatedHistory"`
}

type Format string

const (
	FormatUnknown         Format = "unknown"
	FormatEnhancedCurrent Format = "enhanced_current"
	FormatEnhancedLegacy  Format = "enhanced_legacy"
	FormatReadingDayMap   Format = "reading_day_map"
	FormatBasicLegacy     Format = "basic_legacy"
)

type Classification struct {
	Format                 Format   `json:"format"`
	Version                int      `json:"version"`
	DataPoints             int      `json:"dataPoints"`
	HasReadingDayEntries   bool     `json:"hasReadingDayEntries"`
	HasBookPeriods         bool     `json:"hasBookPeriods"`
	HasMetadata            bool     `json:"hasMetadata"`
	EstimatedMigrationTime string   `json:"estimatedMigrationTime"`
	Issues                 []string `json:"issues"`
	Warnings               []string `json:"warnings"`
}

type MigrationResult struct {
	Success            bool           `json:"success"`
	Format             Format         `json:"format"`
	CanonicalHistory   *History       `json:"canonicalHistory"`
	DataPointsMigrated int            `json:"dataPointsMigrated"`
	DroppedDates       int            `json:"droppedDates"`
	Issues             []string       `json:"issues"`
	Warnings           []string       `json:"warnings"`
	PreservedMetadata  map[string]any `json:"preservedMetadata"`
}
