package storage

import (
	"github.com/roylee0704/gron"
	"readtrack/internal/providers"
	"readtrack/internal/services"
	"readtrack/internal/storage/interfaces"
	"readtrack/internal/structures"
	"sync"
	"time"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.HistoryServiceInterface
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
	saved       uint64
	hasSaved    bool
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if s.hasSaved && s.saved == s.service.GetRevision() {
			return
		}
		if err := s.save(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting history: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Persisted history to file %s", s.config.Persistence.FilePath)
	})

	s.cron.AddFunc(gron.Every(s.config.History.CheckInterval), s.CheckIntegrity)

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	res, err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
	if res != nil {
		s.metrics.IncMigrations(string(res.Format), res.Success)
	}
	if err != nil {
		return err
	}
	if res == nil {
		s.logger.Infof(providers.TypeApp, "No history file at %s, starting empty", s.config.Persistence.FilePath)
		return nil
	}
	s.logger.Infof(providers.TypeApp, "Restored %d reading days from %s", s.service.GetReadingDaysCount(), s.config.Persistence.FilePath)
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting history to file...")
	err := s.save()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting history: %s", err)
		return err
	}
	return nil
}

// CheckIntegrity validates the stored history and publishes its score.
func (s *Scheduler) CheckIntegrity() {
	report := s.service.GetReport()
	s.metrics.ObserveIntegrityScore(report.Score)

	if !report.IsValid {
		s.logger.Warnf(providers.TypeHistory, "Stored history is invalid: score %d, %d issue(s)", report.Score, len(report.Issues))
		return
	}
	s.logger.Debugf(providers.TypeHistory, "Integrity check passed: score %d", report.Score)
}

// save must be called with opsMu held.
func (s *Scheduler) save() error {
	revision := s.service.GetRevision()
	start := time.Now()
	if err := s.fileManager.SaveToFile(s.config.Persistence.FilePath); err != nil {
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	s.saved = revision
	s.hasSaved = true
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.HistoryServiceInterface, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
		metrics:     metrics,
	}
}
