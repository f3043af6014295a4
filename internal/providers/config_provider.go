package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"readtrack/internal/structures"
	"strings"
	"time"
)

const defaultCheckInterval = 10 * time.Minute

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "RAH_LOG_LEVEL")
	viper.BindEnv("persistence.filePath", "RAH_HISTORY_FILE")
	viper.BindEnv("persistence.saveInterval", "RAH_SAVE_INTERVAL")
	viper.BindEnv("history.checkInterval", "RAH_CHECK_INTERVAL")
	viper.BindEnv("cache.enabled", "RAH_CACHE_ENABLED")
	viper.BindEnv("cache.size", "RAH_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	if conf.History.CheckInterval <= 0 {
		conf.History.CheckInterval = defaultCheckInterval
	}
	conf.AppName = "ReadingHistory"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
