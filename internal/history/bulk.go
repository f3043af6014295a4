package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"readtrack/internal/models"
)

var (
	ErrBusy             = errors.New("a bulk transaction is already in progress")
	ErrEntryNotFound    = errors.New("no reading day for date")
	ErrMissingEntry     = errors.New("add operation has no entry")
	ErrMissingUpdates   = errors.New("update operation has no updates")
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidHistory   = errors.New("history failed validation")
)

// BulkRejection explains why a batch was discarded. Op is the index of the failing
// operation, or -1 when the final validation failed.
type BulkRejection struct {
	TxID   string
	Op     int
	Date   string
	Issues []models.Issue
	Err    error
}

func (r *BulkRejection) Error() string {
	if r.Op < 0 {
		return fmt.Sprintf("transaction %s rejected: %s (%d issue(s))", r.TxID, r.Err, len(r.Issues))
	}
	return fmt.Sprintf("transaction %s rejected at operation %d (%s): %s", r.TxID, r.Op, r.Date, r.Err)
}

func (r *BulkRejection) Unwrap() error {
	return r.Err
}

// ApplyBulk applies ops in order to a copy of current, then synchronises and
// validates the result once. On any failure current is returned untouched
// together with a *BulkRejection.
func ApplyBulk(v *Validator, current *models.History, ops []models.BulkOperation, now time.Time) (*models.History, error) {
	txID := uuid.NewString()
	if current == nil {
		return nil, &BulkRejection{TxID: txID, Op: -1, Err: ErrInvalidHistory}
	}

	log, _ := models.DayLogFromHistory(current)
	// well-formed dates listed only in readingDays join the log as manual
	// entries, the same way auto-fix synchronizes them
	for _, d := range current.ReadingDays {
		if _, ok := models.ParseDay(d); ok && !log.Has(d) {
			log.Put(models.ReadingDayEntry{Date: d, Source: models.SourceManual, CreatedAt: now, ModifiedAt: now})
		}
	}
	for i, op := range ops {
		if err := applyOp(log, op, now); err != nil {
			return current, &BulkRejection{TxID: txID, Op: i, Date: op.Date, Err: err}
		}
	}

	lastCalculated := current.LastCalculated
	if lastCalculated.IsZero() {
		lastCalculated = now
	}
	next := log.History(current.BookPeriods, lastCalculated, now)

	report := v.Validate(next, nil)
	if !report.IsValid {
		return current, &BulkRejection{TxID: txID, Op: -1, Issues: report.Issues, Err: ErrInvalidHistory}
	}
	return next, nil
}

func applyOp(log *models.DayLog, op models.BulkOperation, now time.Time) error {
	switch op.Type {
	case models.OpAdd:
		if op.Entry == nil {
			return ErrMissingEntry
		}
		e := op.Entry.Clone()
		e.Date = op.Date
		if e.Source == "" {
			e.Source = models.SourceManual
		}
		if len(e.BookIDs) == 0 {
			e.BookIDs = nil
		}
		if prev, ok := log.Get(op.Date); ok {
			e.CreatedAt = prev.CreatedAt
		} else if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		e.ModifiedAt = now
		if e.ModifiedAt.Before(e.CreatedAt) {
			e.CreatedAt = now
		}
		log.Put(e)
	case models.OpUpdate:
		e, ok := log.Get(op.Date)
		if !ok {
			return ErrEntryNotFound
		}
		if op.Updates == nil {
			return ErrMissingUpdates
		}
		op.Updates.Apply(&e, now)
		log.Put(e)
	case models.OpRemove:
		if !log.Delete(op.Date) {
			return ErrEntryNotFound
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
	}
	return nil
}
