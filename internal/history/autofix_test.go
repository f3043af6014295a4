package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readtrack/internal/models"
)

func TestAutoFix_CleanHistoryIsUntouched(t *testing.T) {
	h := validHistory("2024-01-01", "2024-01-02")
	res := testValidator().AutoFix(h)
	assert.Equal(t, 0, res.Fixed)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, h, res.UpdatedHistory)
}

func TestAutoFix_BackfillsDefaults(t *testing.T) {
	h := &models.History{
		ReadingDayEntries: []models.ReadingDayEntry{{Date: "2024-01-01", Source: models.SourceManual}},
		ReadingDays:       models.DateSet{"2024-01-01"},
	}
	v := testValidator()
	res := v.AutoFix(h)

	out := res.UpdatedHistory
	assert.Equal(t, models.CurrentVersion, out.Version)
	assert.Equal(t, fixedNow, out.LastSyncDate)
	assert.Equal(t, fixedNow, out.LastCalculated)
	assert.Equal(t, fixedNow, out.ReadingDayEntries[0].CreatedAt)
	assert.Equal(t, fixedNow, out.ReadingDayEntries[0].ModifiedAt)
	assert.Equal(t, 4, res.Fixed)
	assert.True(t, v.Validate(out, nil).IsValid)

	// input untouched
	assert.Zero(t, h.Version)
	assert.True(t, h.ReadingDayEntries[0].CreatedAt.IsZero())
}

func TestAutoFix_DedupeKeepsLaterModified(t *testing.T) {
	h := validHistory("2024-01-01", "2024-01-02")
	newer := entry("2024-01-01")
	newer.Notes = "newer"
	newer.ModifiedAt = newer.ModifiedAt.Add(time.Hour)
	h.ReadingDayEntries = append(h.ReadingDayEntries, newer)

	v := testValidator()
	res := v.AutoFix(h)
	out := res.UpdatedHistory
	require.Len(t, out.ReadingDayEntries, 2)
	assert.Equal(t, "newer", out.ReadingDayEntries[0].Notes)
	assert.Equal(t, 1, res.Fixed)
	assert.True(t, v.Validate(out, nil).IsValid)
}

func TestAutoFix_SynchronisesToUnion(t *testing.T) {
	h := validHistory("2024-01-01", "2024-01-02")
	h.ReadingDays = models.DateSet{"2024-01-01", "2024-01-03"}

	v := testValidator()
	res := v.AutoFix(h)
	out := res.UpdatedHistory

	want := map[string]struct{}{"2024-01-01": {}, "2024-01-02": {}, "2024-01-03": {}}
	assert.Equal(t, want, dateSetOf(out))
	assert.Equal(t, want, entryDatesOf(out))
	assert.Equal(t, 2, res.Fixed)

	added := out.ReadingDayEntries[len(out.ReadingDayEntries)-1]
	assert.Equal(t, "2024-01-03", added.Date)
	assert.Equal(t, models.SourceManual, added.Source)
	assert.True(t, v.Validate(out, nil).IsValid)
}

func TestAutoFix_MissingCollections(t *testing.T) {
	res := testValidator().AutoFix(&models.History{Version: 1})
	out := res.UpdatedHistory
	assert.NotNil(t, out.ReadingDayEntries)
	assert.NotNil(t, out.ReadingDays)
	assert.NotNil(t, out.BookPeriods)
	assert.Equal(t, entryDatesOf(out), dateSetOf(out))
}

func TestAutoFix_NilHistory(t *testing.T) {
	res := testValidator().AutoFix(nil)
	require.NotNil(t, res.UpdatedHistory)
	assert.Equal(t, models.CurrentVersion, res.UpdatedHistory.Version)
}

func TestAutoFix_PanickingStepCountsAsFailed(t *testing.T) {
	h := validHistory("2024-01-01")
	n, err := runFixStep(func(*models.History) int { panic("boom") }, h)
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestAutoFix_LeavesUnfixableIssues(t *testing.T) {
	h := validHistory("2024-01-01")
	h.ReadingDayEntries[0].ModifiedAt = h.ReadingDayEntries[0].CreatedAt.Add(-time.Hour)

	v := testValidator()
	out := v.AutoFix(h).UpdatedHistory
	assert.Equal(t, []string{CodeModifiedBeforeNew}, codes(v.Validate(out, nil).Issues))
}
