package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readtrack/internal/history"
	"readtrack/internal/models"
	"readtrack/internal/structures"
)

func newService() HistoryServiceInterface {
	validator := history.NewValidator(&structures.Config{})
	detector := history.NewDetector()
	return NewHistoryService(detector, history.NewMigrator(detector, validator), validator, history.NewStore(validator))
}

func TestNewHistoryService_StartsEmptyAndValid(t *testing.T) {
	hs := newService()
	assert.Equal(t, 0, hs.GetReadingDaysCount())
	report := hs.GetReport()
	assert.True(t, report.IsValid)
	assert.Equal(t, 100, report.Score)
}

func TestImport_BasicLegacyReplacesStore(t *testing.T) {
	hs := newService()
	res, err := hs.Import(map[string]any{
		"readingDays":   []any{"2024-01-10", "2024-01-11"},
		"currentStreak": 2,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, hs.GetReadingDaysCount())
	assert.Equal(t, models.DateSet{"2024-01-10", "2024-01-11"}, hs.GetSnapshot().ReadingDays)
	assert.Equal(t, uint64(1), hs.GetRevision())
}

func TestImport_UnknownFormatKeepsStore(t *testing.T) {
	hs := newService()
	_, err := hs.AddDay("2024-01-01", models.ReadingDayEntry{})
	require.NoError(t, err)

	res, err := hs.Import(map[string]any{"foo": "bar"})
	assert.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, hs.GetReadingDaysCount())
}

func TestImport_CanonicalWithDriftIsRepaired(t *testing.T) {
	hs := newService()
	res, err := hs.Import(map[string]any{
		"version":      float64(1),
		"lastSyncDate": "2024-01-05T00:00:00Z",
		"readingDays":  []any{"2024-01-01", "2024-01-02"},
		"readingDayEntries": []any{
			map[string]any{"date": "2024-01-01", "source": "manual", "createdAt": "2024-01-01T10:00:00Z", "modifiedAt": "2024-01-01T10:00:00Z"},
		},
		"lastCalculated": "2024-01-05T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, models.FormatEnhancedCurrent, res.Format)

	snap := hs.GetSnapshot()
	assert.Len(t, snap.ReadingDayEntries, 2)
	assert.ElementsMatch(t, models.DateSet{"2024-01-01", "2024-01-02"}, snap.ReadingDays)
}

func TestPointOperations_RoundTrip(t *testing.T) {
	hs := newService()
	_, err := hs.AddDay("2024-01-01", models.ReadingDayEntry{Notes: "a"})
	require.NoError(t, err)

	notes := "b"
	e, err := hs.UpdateDay("2024-01-01", models.EntryUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "b", e.Notes)

	require.NoError(t, hs.RemoveDay("2024-01-01"))
	assert.ErrorIs(t, hs.RemoveDay("2024-01-01"), history.ErrEntryNotFound)
}

func TestBulkApply_Delegates(t *testing.T) {
	hs := newService()
	out, err := hs.BulkApply([]models.BulkOperation{
		models.AddOp("2024-01-01", models.ReadingDayEntry{}),
		models.AddOp("2024-01-02", models.ReadingDayEntry{}),
	})
	require.NoError(t, err)
	assert.Len(t, out.ReadingDays, 2)
	assert.Equal(t, 2, hs.GetReadingDaysCount())
}

func TestValidateAndAutoFix_Delegate(t *testing.T) {
	hs := newService()
	h := hs.GetSnapshot()
	h.ReadingDays = append(h.ReadingDays, "2024-01-03")

	report := hs.Validate(h, models.NewBookSet())
	assert.False(t, report.IsValid)

	fixed := hs.AutoFix(h)
	assert.Equal(t, 1, fixed.Fixed)
	assert.True(t, hs.Validate(fixed.UpdatedHistory, nil).IsValid)
}

func TestDetectFormat_Delegates(t *testing.T) {
	hs := newService()
	assert.Equal(t, models.FormatBasicLegacy, hs.DetectFormat(map[string]any{"longestStreak": 4}).Format)
}
