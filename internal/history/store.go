package history

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"readtrack/internal/models"
)

// Store owns the committed canonical history. Every write is serialised by mu;
// while a bulk transaction is in flight further bulk calls and point edits are
// rejected with ErrBusy instead of queueing behind it.
type Store struct {
	mu        sync.Mutex
	busy      atomic.Bool
	revision  atomic.Uint64
	current   *models.History
	validator *Validator
	now       func() time.Time

	// inFlight runs while a bulk transaction holds the store. Tests only.
	inFlight func()
}

func NewStore(validator *Validator) *Store {
	return &Store{
		current:   models.NewHistory(time.Now()),
		validator: validator,
		now:       time.Now,
	}
}

// Snapshot returns a deep copy of the committed history.
func (s *Store) Snapshot() *models.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Revision increases with every successful commit.
func (s *Store) Revision() uint64 {
	return s.revision.Load()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current.ReadingDayEntries)
}

// Replace commits h wholesale if it validates.
func (s *Store) Replace(h *models.History) (models.ValidationReport, error) {
	if s.busy.Load() {
		return models.ValidationReport{}, ErrBusy
	}
	report := s.validator.Validate(h, nil)
	if !report.IsValid {
		return report, fmt.Errorf("replace: %w", ErrInvalidHistory)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy.Load() {
		return models.ValidationReport{}, ErrBusy
	}
	s.current = h.Clone()
	s.revision.Inc()
	return report, nil
}

// Add inserts or replaces the reading day for date.
func (s *Store) Add(date string, entry models.ReadingDayEntry) (models.ReadingDayEntry, error) {
	return s.point(models.AddOp(date, entry))
}

func (s *Store) Update(date string, updates models.EntryUpdate) (models.ReadingDayEntry, error) {
	return s.point(models.UpdateOp(date, updates))
}

func (s *Store) Remove(date string) error {
	_, err := s.point(models.RemoveOp(date))
	return err
}

func (s *Store) point(op models.BulkOperation) (models.ReadingDayEntry, error) {
	if s.busy.Load() {
		return models.ReadingDayEntry{}, ErrBusy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// a bulk transaction may have claimed the store while we waited for mu
	if s.busy.Load() {
		return models.ReadingDayEntry{}, ErrBusy
	}

	next, err := ApplyBulk(s.validator, s.current, []models.BulkOperation{op}, s.now())
	if err != nil {
		return models.ReadingDayEntry{}, err
	}
	s.commit(next)

	for _, e := range next.ReadingDayEntries {
		if e.Date == op.Date {
			return e.Clone(), nil
		}
	}
	return models.ReadingDayEntry{}, nil
}

// BulkApply runs ops as one all-or-nothing transaction against the committed
// history. On rejection the returned history is a copy of the unchanged state.
func (s *Store) BulkApply(ops []models.BulkOperation) (*models.History, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight != nil {
		s.inFlight()
	}

	next, err := ApplyBulk(s.validator, s.current, ops, s.now())
	if err != nil {
		return s.current.Clone(), err
	}
	s.commit(next)
	return next.Clone(), nil
}

func (s *Store) commit(h *models.History) {
	s.current = h
	s.revision.Inc()
}
