package testutil

import (
	"readtrack/internal/models"
	"readtrack/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockHistoryService implements services.HistoryServiceInterface.
// Results are returned from the exported fields, calls are recorded.
type MockHistoryService struct {
	mu sync.Mutex

	Classification models.Classification
	MigrateResult  models.MigrationResult
	ImportErr      error
	Report         models.ValidationReport
	FixResult      models.FixResult
	BulkResult     *models.History
	BulkErr        error
	DayEntry       models.ReadingDayEntry
	DayErr         error
	Snapshot       *models.History
	Revision       uint64

	ImportCalls   []any
	BulkCalls     [][]models.BulkOperation
	ValidateCalls []models.BookCatalog
	AddCalls      []string
	UpdateCalls   []string
	RemoveCalls   []string
}

func (m *MockHistoryService) DetectFormat(_ any) models.Classification {
	return m.Classification
}

func (m *MockHistoryService) Migrate(_ any) models.MigrationResult {
	return m.MigrateResult
}

func (m *MockHistoryService) Validate(_ *models.History, catalog models.BookCatalog) models.ValidationReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidateCalls = append(m.ValidateCalls, catalog)
	return m.Report
}

func (m *MockHistoryService) AutoFix(_ *models.History) models.FixResult {
	return m.FixResult
}

func (m *MockHistoryService) BulkApply(ops []models.BulkOperation) (*models.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BulkCalls = append(m.BulkCalls, ops)
	return m.BulkResult, m.BulkErr
}

func (m *MockHistoryService) Import(raw any) (models.MigrationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImportCalls = append(m.ImportCalls, raw)
	return m.MigrateResult, m.ImportErr
}

func (m *MockHistoryService) AddDay(date string, _ models.ReadingDayEntry) (models.ReadingDayEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls = append(m.AddCalls, date)
	return m.DayEntry, m.DayErr
}

func (m *MockHistoryService) UpdateDay(date string, _ models.EntryUpdate) (models.ReadingDayEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, date)
	return m.DayEntry, m.DayErr
}

func (m *MockHistoryService) RemoveDay(date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls = append(m.RemoveCalls, date)
	return m.DayErr
}

func (m *MockHistoryService) GetSnapshot() *models.History {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Snapshot == nil {
		return &models.History{}
	}
	return m.Snapshot.Clone()
}

func (m *MockHistoryService) GetReport() models.ValidationReport {
	return m.Report
}

func (m *MockHistoryService) GetReadingDaysCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Snapshot == nil {
		return 0
	}
	return len(m.Snapshot.ReadingDays)
}

func (m *MockHistoryService) GetRevision() uint64 {
	return m.Revision
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu                  sync.Mutex
	Requests            int
	CacheHits           int
	CacheMisses         int
	PersistenceObserved int
	Migrations          map[string]int
	Scores              []int
	BulkRejections      map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceObserved++
}
func (m *MockMetrics) IncMigrations(format string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Migrations == nil {
		m.Migrations = map[string]int{}
	}
	if success {
		m.Migrations[format]++
	}
}
func (m *MockMetrics) ObserveIntegrityScore(score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Scores = append(m.Scores, score)
}
func (m *MockMetrics) IncBulkRejections(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BulkRejections == nil {
		m.BulkRejections = map[string]int{}
	}
	m.BulkRejections[reason]++
}

// HasLog reports whether a record with the given level and category was written.
func (m *MockLogger) HasLog(level string, t providers.TypeEnum) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.Logs {
		if l.Level == level && l.Type == t {
			return true
		}
	}
	return false
}
