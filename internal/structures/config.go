package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// HistoryConfig overrides the integrity limits. Zero values fall back to defaults.
type HistoryConfig struct {
	MinYear             int           `yaml:"minYear" validate:"uint"`
	FutureToleranceDays int           `yaml:"futureToleranceDays" validate:"uint"`
	MaxEntries          int           `yaml:"maxEntries" validate:"uint"`
	MaxNotesLength      int           `yaml:"maxNotesLength" validate:"uint"`
	MaxBookPeriods      int           `yaml:"maxBookPeriods" validate:"uint"`
	CheckInterval       time.Duration `yaml:"checkInterval"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	History     HistoryConfig `yaml:"history"`
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
