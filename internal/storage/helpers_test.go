package storage

import (
	"readtrack/internal/history"
	"readtrack/internal/services"
	"readtrack/internal/structures"
	"time"
)

func newHistoryService() services.HistoryServiceInterface {
	v := history.NewValidatorWithLimits(history.DefaultLimits())
	d := history.NewDetector()
	return services.NewHistoryService(d, history.NewMigrator(d, v), v, history.NewStore(v))
}

func testConfig(filePath string) *structures.Config {
	return &structures.Config{
		Persistence: structures.Persistence{
			FilePath:     filePath,
			SaveInterval: time.Second,
		},
		History: structures.HistoryConfig{
			CheckInterval: time.Second,
		},
	}
}

const basicExport = `{
	"readingDays": ["2024-01-05", "2024-01-06", "not-a-date"],
	"currentStreak": 2,
	"lastCalculated": "2024-01-07T08:00:00Z"
}`
