package storage

import (
	"errors"
	"os"
	"path/filepath"
	"readtrack/internal/models"
	"readtrack/internal/providers"
	"readtrack/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Restore_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restore.json")
	require.NoError(t, os.WriteFile(path, []byte(basicExport), 0644))

	svc := newHistoryService()
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	fm := NewFileManager(&testutil.MockCompressor{}, svc, logger)

	s := NewScheduler(testConfig(path), logger, svc, fm, metrics)
	require.NoError(t, s.Restore())

	assert.Equal(t, 2, svc.GetReadingDaysCount())
	assert.Equal(t, 1, metrics.Migrations[string(models.FormatBasicLegacy)])
}

func TestScheduler_Restore_FileNotExist(t *testing.T) {
	svc := newHistoryService()
	logger := &testutil.MockLogger{}
	fm := NewFileManager(&testutil.MockCompressor{}, svc, logger)

	s := NewScheduler(testConfig("/nonexistent/history.json"), logger, svc, fm, &testutil.MockMetrics{})
	assert.NoError(t, s.Restore())
	assert.Equal(t, 0, svc.GetReadingDaysCount())
}

func TestScheduler_Restore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	svc := newHistoryService()
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	fm := NewFileManager(&testutil.MockCompressor{}, svc, logger)

	s := NewScheduler(testConfig(path), logger, svc, fm, metrics)
	assert.Error(t, s.Restore())
	assert.Empty(t, metrics.Migrations)
}

func TestScheduler_Persist_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.json.zst")

	svc := newHistoryService()
	_, err := svc.AddDay("2024-01-05", models.ReadingDayEntry{Source: models.SourceManual})
	require.NoError(t, err)

	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	fm := NewFileManager(&testutil.MockCompressor{}, svc, logger)

	s := NewScheduler(testConfig(path), logger, svc, fm, metrics)
	require.NoError(t, s.Persist())

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, metrics.PersistenceObserved)
}

func TestScheduler_Persist_WriteError(t *testing.T) {
	comp := &testutil.MockCompressor{
		CompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("compress error")
		},
	}
	svc := newHistoryService()
	logger := &testutil.MockLogger{}
	fm := NewFileManager(comp, svc, logger)

	s := NewScheduler(testConfig(filepath.Join(t.TempDir(), "h.zst")), logger, svc, fm, &testutil.MockMetrics{})
	assert.Error(t, s.Persist())
	assert.True(t, logger.HasLog("error", providers.TypeApp))
}

func TestScheduler_CheckIntegrity(t *testing.T) {
	svc := &testutil.MockHistoryService{
		Report: models.ValidationReport{IsValid: false, Score: 75},
	}
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	fm := NewFileManager(&testutil.MockCompressor{}, svc, logger)

	s := NewScheduler(testConfig("/tmp/unused"), logger, svc, fm, metrics)
	s.CheckIntegrity()

	assert.Equal(t, []int{75}, metrics.Scores)
	assert.True(t, logger.HasLog("warn", providers.TypeHistory))
}

func TestScheduler_StopNilCron(t *testing.T) {
	svc := newHistoryService()
	logger := &testutil.MockLogger{}
	fm := NewFileManager(&testutil.MockCompressor{}, svc, logger)

	s := NewScheduler(testConfig("/tmp/unused"), logger, svc, fm, &testutil.MockMetrics{})
	s.Stop()
}

func TestScheduler_InitPersistsPeriodically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifecycle.json.zst")

	svc := newHistoryService()
	_, err := svc.AddDay("2024-01-05", models.ReadingDayEntry{Source: models.SourceManual})
	require.NoError(t, err)

	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	fm := NewFileManager(&testutil.MockCompressor{}, svc, logger)

	s := NewScheduler(testConfig(path), logger, svc, fm, metrics)
	s.Init()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 3*time.Second, 50*time.Millisecond)
}
