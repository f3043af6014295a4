package storage

import (
	"errors"
	json "github.com/goccy/go-json"
	"os"
	"readtrack/internal/models"
	"readtrack/internal/providers"
	"readtrack/internal/services"
	"readtrack/internal/storage/interfaces"
)

type FileManager struct {
	service    services.HistoryServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.HistoryServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

// SaveToFile writes the stored history as compressed canonical JSON.
// The file is replaced atomically, a failed write leaves the old one intact.
func (f *FileManager) SaveToFile(fileName string) error {
	snapshot := f.service.GetSnapshot()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile imports a history file into the service. The file may be a
// compressed snapshot or a plain JSON export in any supported legacy shape.
// A missing file returns a nil result and no error.
func (f *FileManager) LoadFromFile(fileName string) (*models.MigrationResult, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	if IsCompressed(data) {
		data, err = f.compressor.Decompress(data)
		if err != nil {
			return nil, err
		}
	} else {
		f.logger.Infof(providers.TypeHistory, "History file %s is not compressed, reading plain JSON", fileName)
	}

	res, err := f.service.Import(json.RawMessage(data))
	if err != nil {
		f.logger.Errorf(providers.TypeHistory, "Import of %s failed (format %s): %s", fileName, res.Format, err)
		return &res, err
	}

	if res.Format != models.FormatEnhancedCurrent {
		f.logger.Warnf(providers.TypeHistory, "Migrated %s history: %d data points", res.Format, res.DataPointsMigrated)
	}
	for _, w := range res.Warnings {
		f.logger.Warnf(providers.TypeHistory, "%s", w)
	}
	return &res, nil
}
