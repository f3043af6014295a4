package history

import (
	"fmt"
	"sort"
	"time"

	"readtrack/internal/models"
	"readtrack/internal/structures"
)

const (
	maxScore        = 100
	criticalPenalty = 25
	errorPenalty    = 10
	warningPenalty  = 2
	fixableBonus    = 2
	maxFixableBonus = 10
)

// Issue codes.
const (
	CodeMissingHistory     = "missing_history"
	CodeMissingEntries     = "missing_entries"
	CodeMissingReadingDays = "missing_reading_days"
	CodeMissingVersion     = "missing_version"
	CodeUnknownVersion     = "unknown_version"
	CodeMissingSyncDate    = "missing_last_sync_date"
	CodeMissingCalculated  = "missing_last_calculated"
	CodeDuplicateDates     = "duplicate_dates"
	CodeReadingDaysDrift   = "reading_days_mismatch"
	CodeInvalidDate        = "invalid_date_format"
	CodeDateTooOld         = "date_too_old"
	CodeDateInFuture       = "date_in_future"
	CodeMissingTimestamps  = "missing_entry_timestamps"
	CodeModifiedBeforeNew  = "modified_before_created"
	CodeInvalidSource      = "invalid_source"
	CodeBookWithoutIDs     = "book_source_without_books"
	CodeTooManyEntries     = "too_many_entries"
	CodeLongNotes          = "long_notes"
	CodeTooManyPeriods     = "too_many_book_periods"
	CodeUnknownBook        = "unknown_book_reference"
)

// Limits are the thresholds of the range and performance checks.
type Limits struct {
	MinYear             int
	FutureToleranceDays int
	MaxEntries          int
	MaxNotesLength      int
	MaxBookPeriods      int
}

func DefaultLimits() Limits {
	return Limits{
		MinYear:             2000,
		FutureToleranceDays: 1,
		MaxEntries:          10000,
		MaxNotesLength:      1000,
		MaxBookPeriods:      1000,
	}
}

func limitsFromConfig(conf structures.HistoryConfig) Limits {
	l := DefaultLimits()
	if conf.MinYear > 0 {
		l.MinYear = conf.MinYear
	}
	if conf.FutureToleranceDays > 0 {
		l.FutureToleranceDays = conf.FutureToleranceDays
	}
	if conf.MaxEntries > 0 {
		l.MaxEntries = conf.MaxEntries
	}
	if conf.MaxNotesLength > 0 {
		l.MaxNotesLength = conf.MaxNotesLength
	}
	if conf.MaxBookPeriods > 0 {
		l.MaxBookPeriods = conf.MaxBookPeriods
	}
	return l
}

// Validator scores a canonical history and repairs the defects it knows how to fix.
// It never modifies its input and is safe for concurrent use.
type Validator struct {
	limits Limits
	now    func() time.Time
}

func NewValidator(conf *structures.Config) *Validator {
	return NewValidatorWithLimits(limitsFromConfig(conf.History))
}

func NewValidatorWithLimits(limits Limits) *Validator {
	return &Validator{limits: limits, now: time.Now}
}

type findings []models.Issue

func (f *findings) add(sev models.Severity, code, msg string, dates []string) *models.Issue {
	*f = append(*f, models.Issue{Severity: sev, Code: code, Message: msg, Dates: dates})
	return &(*f)[len(*f)-1]
}

func (f *findings) fixable(sev models.Severity, code, msg, fix string, dates []string) {
	issue := f.add(sev, code, msg, dates)
	issue.Fixable = true
	issue.Fix = fix
}

// Validate runs every check against h. catalog may be nil, in which case book
// references are not checked.
func (v *Validator) Validate(h *models.History, catalog models.BookCatalog) models.ValidationReport {
	var f findings
	if h == nil {
		f.add(models.SeverityCritical, CodeMissingHistory, "history is missing", nil)
		return v.report(f)
	}

	v.checkStructure(h, &f)
	if h.ReadingDayEntries != nil {
		v.checkConsistency(h, &f)
		v.checkDates(h, &f)
		v.checkLogic(h, &f)
		if catalog != nil {
			v.checkBookReferences(h, catalog, &f)
		}
	}
	v.checkPerformance(h, &f)

	return v.report(f)
}

func (v *Validator) checkStructure(h *models.History, f *findings) {
	if h.ReadingDayEntries == nil {
		f.add(models.SeverityCritical, CodeMissingEntries, "readingDayEntries is missing", nil)
	}
	if h.ReadingDays == nil {
		f.fixable(models.SeverityError, CodeMissingReadingDays, "readingDays is missing",
			"rebuild readingDays from readingDayEntries", nil)
	}
	switch {
	case h.Version <= 0:
		f.fixable(models.SeverityError, CodeMissingVersion, "version is missing or not positive",
			fmt.Sprintf("set version to %d", models.CurrentVersion), nil)
	case h.Version > models.CurrentVersion:
		f.add(models.SeverityWarning, CodeUnknownVersion,
			fmt.Sprintf("version %d is newer than supported version %d", h.Version, models.CurrentVersion), nil)
	}
	if h.LastSyncDate.IsZero() {
		f.fixable(models.SeverityError, CodeMissingSyncDate, "lastSyncDate is missing or invalid",
			"set lastSyncDate to the current time", nil)
	}
	if h.LastCalculated.IsZero() {
		f.fixable(models.SeverityError, CodeMissingCalculated, "lastCalculated is missing or invalid",
			"set lastCalculated to the current time", nil)
	}
}

func (v *Validator) checkConsistency(h *models.History, f *findings) {
	seen := make(map[string]int, len(h.ReadingDayEntries))
	dates := make([]string, 0, len(h.ReadingDayEntries))
	var dups []string
	for _, e := range h.ReadingDayEntries {
		seen[e.Date]++
		if seen[e.Date] == 2 {
			dups = append(dups, e.Date)
		}
		dates = append(dates, e.Date)
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		f.fixable(models.SeverityError, CodeDuplicateDates,
			fmt.Sprintf("%d date(s) appear more than once in readingDayEntries", len(dups)),
			"keep the most recently modified entry for each date", dups)
	}

	if h.ReadingDays == nil {
		return
	}
	fromEntries := newDaySet(dates)
	fromSet := newDaySet(h.ReadingDays)
	onlyEntries := fromEntries.minus(fromSet)
	onlySet := fromSet.minus(fromEntries)
	if len(onlyEntries)+len(onlySet) == 0 {
		return
	}
	offending := append(append([]string{}, onlyEntries...), onlySet...)
	sort.Strings(offending)
	f.fixable(models.SeverityError, CodeReadingDaysDrift,
		fmt.Sprintf("readingDays and readingDayEntries disagree: %d date(s) only in entries, %d only in readingDays",
			len(onlyEntries), len(onlySet)),
		"synchronise readingDays and readingDayEntries to their union", offending)
}

func (v *Validator) checkDates(h *models.History, f *findings) {
	minDate := time.Date(v.limits.MinYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := v.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	maxDate := today.AddDate(0, 0, v.limits.FutureToleranceDays)

	var invalid, old, future []string
	for _, e := range h.ReadingDayEntries {
		t, ok := models.ParseDay(e.Date)
		switch {
		case !ok:
			invalid = append(invalid, e.Date)
		case t.Before(minDate):
			old = append(old, e.Date)
		case t.After(maxDate):
			future = append(future, e.Date)
		}
	}
	if len(invalid) > 0 {
		f.add(models.SeverityError, CodeInvalidDate,
			fmt.Sprintf("%d entry date(s) are not YYYY-MM-DD", len(invalid)), invalid)
	}
	if len(old) > 0 {
		f.add(models.SeverityWarning, CodeDateTooOld,
			fmt.Sprintf("%d entry date(s) are before %d", len(old), v.limits.MinYear), old)
	}
	if len(future) > 0 {
		f.add(models.SeverityWarning, CodeDateInFuture,
			fmt.Sprintf("%d entry date(s) are in the future", len(future)), future)
	}
}

func (v *Validator) checkLogic(h *models.History, f *findings) {
	var unstamped, reversed, badSource, bookless []string
	for _, e := range h.ReadingDayEntries {
		switch {
		case e.CreatedAt.IsZero() || e.ModifiedAt.IsZero():
			unstamped = append(unstamped, e.Date)
		case e.ModifiedAt.Before(e.CreatedAt):
			reversed = append(reversed, e.Date)
		}
		if !e.Source.Valid() {
			badSource = append(badSource, e.Date)
		}
		if e.Source == models.SourceBook && len(e.BookIDs) == 0 {
			bookless = append(bookless, e.Date)
		}
	}
	if len(unstamped) > 0 {
		f.fixable(models.SeverityError, CodeMissingTimestamps,
			fmt.Sprintf("%d entries lack createdAt or modifiedAt", len(unstamped)),
			"backfill missing entry timestamps", unstamped)
	}
	if len(reversed) > 0 {
		f.add(models.SeverityError, CodeModifiedBeforeNew,
			fmt.Sprintf("%d entries were modified before they were created", len(reversed)), reversed)
	}
	if len(badSource) > 0 {
		f.add(models.SeverityError, CodeInvalidSource,
			fmt.Sprintf("%d entries have a source other than manual, book or progress", len(badSource)), badSource)
	}
	if len(bookless) > 0 {
		f.add(models.SeverityWarning, CodeBookWithoutIDs,
			fmt.Sprintf("%d book entries reference no books", len(bookless)), bookless)
	}
}

func (v *Validator) checkPerformance(h *models.History, f *findings) {
	if n := len(h.ReadingDayEntries); n > v.limits.MaxEntries {
		f.add(models.SeverityWarning, CodeTooManyEntries,
			fmt.Sprintf("%d entries exceed %d: consider archiving older reading days", n, v.limits.MaxEntries), nil)
	}
	var long []string
	for _, e := range h.ReadingDayEntries {
		if len([]rune(e.Notes)) > v.limits.MaxNotesLength {
			long = append(long, e.Date)
		}
	}
	if len(long) > 0 {
		f.add(models.SeverityWarning, CodeLongNotes,
			fmt.Sprintf("%d entries have notes longer than %d characters: consider truncating them", len(long), v.limits.MaxNotesLength), long)
	}
	if n := len(h.BookPeriods); n > v.limits.MaxBookPeriods {
		f.add(models.SeverityWarning, CodeTooManyPeriods,
			fmt.Sprintf("%d book periods exceed %d: consider archiving finished periods", n, v.limits.MaxBookPeriods), nil)
	}
}

func (v *Validator) checkBookReferences(h *models.History, catalog models.BookCatalog, f *findings) {
	var dates []string
	unknown := make(map[string]struct{})
	for _, e := range h.ReadingDayEntries {
		missing := false
		for _, id := range e.BookIDs {
			if !catalog.HasBook(id) {
				unknown[id] = struct{}{}
				missing = true
			}
		}
		if missing {
			dates = append(dates, e.Date)
		}
	}
	if len(dates) > 0 {
		f.add(models.SeverityWarning, CodeUnknownBook,
			fmt.Sprintf("%d entries reference %d unknown book(s)", len(dates), len(unknown)), dates)
	}
}

func (v *Validator) report(f findings) models.ValidationReport {
	r := models.ValidationReport{
		Issues:        []models.Issue{},
		Warnings:      []models.Issue{},
		FixableIssues: []models.Issue{},
	}
	score := maxScore
	var criticals, errs int
	for _, issue := range f {
		switch issue.Severity {
		case models.SeverityCritical:
			criticals++
			score -= criticalPenalty
			r.Issues = append(r.Issues, issue)
		case models.SeverityError:
			errs++
			score -= errorPenalty
			r.Issues = append(r.Issues, issue)
		default:
			score -= warningPenalty
			r.Warnings = append(r.Warnings, issue)
		}
		if issue.Fixable {
			r.FixableIssues = append(r.FixableIssues, issue)
		}
	}
	score += min(maxFixableBonus, fixableBonus*len(r.FixableIssues))
	r.Score = max(0, min(maxScore, score))
	r.IsValid = criticals == 0 && errs == 0
	r.Recommendations = recommend(r, criticals, errs)
	return r
}

func recommend(r models.ValidationReport, criticals, errs int) []string {
	var out []string
	if criticals > 0 {
		out = append(out, "Critical structural problems found: restore from a backup or re-run the migration.")
	}
	if n := len(r.FixableIssues); n > 0 {
		out = append(out, fmt.Sprintf("Run auto-fix to resolve %d fixable issue(s).", n))
	}
	if manual := criticals + errs - countBlocking(r.FixableIssues); manual > 0 {
		out = append(out, fmt.Sprintf("Review %d issue(s) that cannot be fixed automatically.", manual))
	}
	for _, w := range r.Warnings {
		switch w.Code {
		case CodeTooManyEntries, CodeTooManyPeriods:
			out = append(out, "Archive older reading history to keep the data set fast.")
		case CodeLongNotes:
			out = append(out, "Truncate very long notes.")
		case CodeUnknownBook:
			out = append(out, "Remove or correct references to books that are no longer in the library.")
		}
	}

	switch {
	case r.Score >= 95:
		out = append(out, "Data integrity is excellent.")
	case r.Score >= 85:
		out = append(out, "Data integrity is good.")
	case r.Score >= 70:
		out = append(out, "Data integrity needs attention.")
	default:
		out = append(out, "Data integrity is poor: act now.")
	}
	return out
}

func countBlocking(issues []models.Issue) int {
	n := 0
	for _, i := range issues {
		if i.Blocking() {
			n++
		}
	}
	return n
}
