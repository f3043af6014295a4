package services

import (
	"fmt"

	"readtrack/internal/history"
	"readtrack/internal/models"
)

type HistoryServiceInterface interface {
	DetectFormat(raw any) models.Classification
	Migrate(raw any) models.MigrationResult
	Validate(h *models.History, catalog models.BookCatalog) models.ValidationReport
	AutoFix(h *models.History) models.FixResult
	BulkApply(ops []models.BulkOperation) (*models.History, error)

	Import(raw any) (models.MigrationResult, error)
	AddDay(date string, entry models.ReadingDayEntry) (models.ReadingDayEntry, error)
	UpdateDay(date string, updates models.EntryUpdate) (models.ReadingDayEntry, error)
	RemoveDay(date string) error

	GetSnapshot() *models.History
	GetReport() models.ValidationReport
	GetReadingDaysCount() int
	GetRevision() uint64
}

type HistoryService struct {
	detector  *history.Detector
	migrator  *history.Migrator
	validator *history.Validator
	store     *history.Store
}

func (hs *HistoryService) DetectFormat(raw any) models.Classification {
	return hs.detector.Detect(raw)
}

func (hs *HistoryService) Migrate(raw any) models.MigrationResult {
	return hs.migrator.Migrate(raw)
}

func (hs *HistoryService) Validate(h *models.History, catalog models.BookCatalog) models.ValidationReport {
	return hs.validator.Validate(h, catalog)
}

func (hs *HistoryService) AutoFix(h *models.History) models.FixResult {
	return hs.validator.AutoFix(h)
}

func (hs *HistoryService) BulkApply(ops []models.BulkOperation) (*models.History, error) {
	return hs.store.BulkApply(ops)
}

// Import migrates raw and, when that succeeds, makes it the stored history.
// A migrated history that still fails validation is auto-fixed once before commit.
func (hs *HistoryService) Import(raw any) (models.MigrationResult, error) {
	res := hs.migrator.Migrate(raw)
	if !res.Success {
		return res, fmt.Errorf("migrate %s history: %v", res.Format, res.Issues)
	}

	h := res.CanonicalHistory
	if !hs.validator.Validate(h, nil).IsValid {
		h = hs.validator.AutoFix(h).UpdatedHistory
	}
	if _, err := hs.store.Replace(h); err != nil {
		return res, err
	}
	return res, nil
}

func (hs *HistoryService) AddDay(date string, entry models.ReadingDayEntry) (models.ReadingDayEntry, error) {
	return hs.store.Add(date, entry)
}

func (hs *HistoryService) UpdateDay(date string, updates models.EntryUpdate) (models.ReadingDayEntry, error) {
	return hs.store.Update(date, updates)
}

func (hs *HistoryService) RemoveDay(date string) error {
	return hs.store.Remove(date)
}

func (hs *HistoryService) GetSnapshot() *models.History {
	return hs.store.Snapshot()
}

func (hs *HistoryService) GetReport() models.ValidationReport {
	return hs.validator.Validate(hs.store.Snapshot(), nil)
}

func (hs *HistoryService) GetReadingDaysCount() int {
	return hs.store.Len()
}

func (hs *HistoryService) GetRevision() uint64 {
	return hs.store.Revision()
}

func NewHistoryService(detector *history.Detector, migrator *history.Migrator, validator *history.Validator, store *history.Store) HistoryServiceInterface {
	return &HistoryService{
		detector:  detector,
		migrator:  migrator,
		validator: validator,
		store:     store,
	}
}
