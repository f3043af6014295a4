package history

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readtrack/internal/models"
)

func newTestStore(t *testing.T, dates ...string) *Store {
	t.Helper()
	s := NewStore(testValidator())
	s.now = clock
	_, err := s.Replace(validHistory(dates...))
	require.NoError(t, err)
	return s
}

func TestStore_PointOperationsMirrorReadingDays(t *testing.T) {
	s := newTestStore(t, "2024-02-01")

	e, err := s.Add("2024-02-02", models.ReadingDayEntry{Notes: "evening"})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-02", e.Date)
	assert.Equal(t, models.SourceManual, e.Source)
	assert.Equal(t, models.DateSet{"2024-02-01", "2024-02-02"}, s.Snapshot().ReadingDays)

	src := models.SourceProgress
	e, err = s.Update("2024-02-02", models.EntryUpdate{Source: &src})
	require.NoError(t, err)
	assert.Equal(t, models.SourceProgress, e.Source)
	assert.Equal(t, "evening", e.Notes)

	require.NoError(t, s.Remove("2024-02-01"))
	snap := s.Snapshot()
	assert.Equal(t, models.DateSet{"2024-02-02"}, snap.ReadingDays)
	assert.Equal(t, entryDatesOf(snap), dateSetOf(snap))
	assert.Equal(t, 1, s.Len())
}

func TestStore_PointOperationErrors(t *testing.T) {
	s := newTestStore(t, "2024-02-01")
	rev := s.Revision()

	_, err := s.Update("2024-03-01", models.EntryUpdate{})
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorIs(t, s.Remove("2024-03-01"), ErrEntryNotFound)
	_, err = s.Add("not-a-date", models.ReadingDayEntry{})
	assert.ErrorIs(t, err, ErrInvalidHistory)

	assert.Equal(t, rev, s.Revision())
	assert.Equal(t, 1, s.Len())
}

func TestStore_BulkApplyCommits(t *testing.T) {
	s := newTestStore(t, "2024-02-01")
	rev := s.Revision()

	out, err := s.BulkApply([]models.BulkOperation{
		models.AddOp("2024-02-02", models.ReadingDayEntry{}),
		models.RemoveOp("2024-02-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DateSet{"2024-02-02"}, out.ReadingDays)
	assert.Equal(t, out, s.Snapshot())
	assert.Equal(t, rev+1, s.Revision())
}

func TestStore_BulkRejectionLeavesStateByteIdentical(t *testing.T) {
	s := newTestStore(t, "2024-02-01")
	before, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	out, err := s.BulkApply([]models.BulkOperation{
		models.UpdateOp("2024-02-01", models.EntryUpdate{Notes: strPtr("changed")}),
		models.RemoveOp("2099-01-01"),
	})
	require.ErrorIs(t, err, ErrEntryNotFound)

	returned, _ := json.Marshal(out)
	persisted, _ := json.Marshal(s.Snapshot())
	assert.Equal(t, before, returned)
	assert.Equal(t, before, persisted)
}

func TestStore_ConcurrentBulkIsRejectedAsBusy(t *testing.T) {
	s := newTestStore(t, "2024-02-01")

	entered := make(chan struct{})
	release := make(chan struct{})
	s.inFlight = func() {
		close(entered)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.BulkApply([]models.BulkOperation{models.AddOp("2024-02-02", models.ReadingDayEntry{})})
		done <- err
	}()
	<-entered

	_, err := s.BulkApply([]models.BulkOperation{models.RemoveOp("2024-02-01")})
	assert.ErrorIs(t, err, ErrBusy)

	_, err = s.Add("2024-02-03", models.ReadingDayEntry{})
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, s.Remove("2024-02-01"), ErrBusy)

	close(release)
	require.NoError(t, <-done)

	s.inFlight = nil
	_, err = s.Add("2024-02-03", models.ReadingDayEntry{})
	assert.NoError(t, err)
	assert.Equal(t, 3, s.Len())
}

func TestStore_PointWaitingOnLockSeesBulkClaim(t *testing.T) {
	s := newTestStore(t, "2024-02-01")
	rev := s.Revision()

	s.mu.Lock()
	added := make(chan error, 1)
	replaced := make(chan error, 1)
	go func() {
		_, err := s.Add("2024-02-02", models.ReadingDayEntry{})
		added <- err
	}()
	go func() {
		_, err := s.Replace(validHistory("2024-02-09"))
		replaced <- err
	}()
	time.Sleep(50 * time.Millisecond)
	// a bulk transaction claims the store before the waiters get the lock
	s.busy.Store(true)
	s.mu.Unlock()

	assert.ErrorIs(t, <-added, ErrBusy)
	assert.ErrorIs(t, <-replaced, ErrBusy)
	s.busy.Store(false)

	assert.Equal(t, rev, s.Revision())
	assert.Equal(t, models.DateSet{"2024-02-01"}, s.Snapshot().ReadingDays)
}

func TestStore_ReplaceRejectsInvalid(t *testing.T) {
	s := newTestStore(t, "2024-02-01")
	bad := validHistory("2024-02-05")
	bad.ReadingDays = nil

	report, err := s.Replace(bad)
	assert.ErrorIs(t, err, ErrInvalidHistory)
	assert.False(t, report.IsValid)
	assert.Equal(t, models.DateSet{"2024-02-01"}, s.Snapshot().ReadingDays)
}
