package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"stretchtime/internal/core/model"
	"stretchtime/internal/core/notice"
	"stretchtime/internal/core/reminder"
	"stretchtime/internal/platform"
	"stretchtime/internal/storage"
)

// FileName is the optional config file inside the app directory.
const FileName = "config.yaml"

// Config holds the complete application configuration
type Config struct {
	Timer    TimerConfig    `mapstructure:"timer"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Notice   NoticeConfig   `mapstructure:"notice"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Presence PresenceConfig `mapstructure:"presence"`
}

// TimerConfig defines the countdown session
type TimerConfig struct {
	DefaultMinutes  int           `mapstructure:"default_minutes"`
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	CompletionReset time.Duration `mapstructure:"completion_reset"`
}

// ReminderConfig defines the daily reminder schedule
type ReminderConfig struct {
	DefaultTime  string        `mapstructure:"default_time"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	AutoDismiss  time.Duration `mapstructure:"auto_dismiss"`
	TestDismiss  time.Duration `mapstructure:"test_dismiss"`
	Snooze       time.Duration `mapstructure:"snooze"`
	LogLimit     int           `mapstructure:"log_limit"`
}

// NoticeConfig defines in-app notices
type NoticeConfig struct {
	Duration     time.Duration `mapstructure:"duration"`
	WelcomeDelay time.Duration `mapstructure:"welcome_delay"`
}

// StorageConfig defines where state is persisted
type StorageConfig struct {
	Type string `mapstructure:"type"` // yaml, sqlite or memory
	Path string `mapstructure:"path"`
}

// LoggingConfig defines logging behaviour
type LoggingConfig struct {
	Debug bool `mapstructure:"debug"`
}

// PresenceConfig defines idle-return detection
type PresenceConfig struct {
	IdleThreshold time.Duration `mapstructure:"idle_threshold"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
}

// DefaultDir returns the per-user application directory.
func DefaultDir() (string, error) {
	return platform.NewService().AppConfigDir(platform.DefaultAppName)
}

// Load reads configuration from configPath, falling back to <DefaultDir>/config.yaml.
// A missing file is not an error.
func Load(configPath string) (*Config, error) {
	appDir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return load(configPath, appDir)
}

func load(configPath, appDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v, appDir)

	if configPath == "" {
		configPath = filepath.Join(appDir, FileName)
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("STRETCHTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// SetConfigFile bypasses the search path, so a missing file surfaces as
	// an os error rather than viper.ConfigFileNotFoundError.
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper, appDir string) {
	timer := model.DefaultTimerConfig()
	v.SetDefault("timer.default_minutes", int(timer.Duration/time.Minute))
	v.SetDefault("timer.tick_interval", timer.TickInterval)
	v.SetDefault("timer.completion_reset", timer.CompletionReset)

	remind := model.DefaultReminderConfig()
	v.SetDefault("reminder.default_time", remind.DefaultTime)
	v.SetDefault("reminder.poll_interval", remind.PollInterval)
	v.SetDefault("reminder.auto_dismiss", remind.AutoDismiss)
	v.SetDefault("reminder.test_dismiss", remind.TestDismiss)
	v.SetDefault("reminder.snooze", remind.Snooze)
	v.SetDefault("reminder.log_limit", remind.LogLimit)

	v.SetDefault("notice.duration", notice.DefaultDuration)
	v.SetDefault("notice.welcome_delay", time.Second)

	v.SetDefault("storage.type", storage.KindYAML)
	v.SetDefault("storage.path", appDir)

	v.SetDefault("logging.debug", false)

	v.SetDefault("presence.idle_threshold", 5*time.Minute)
	v.SetDefault("presence.poll_interval", 30*time.Second)
}

func validate(cfg *Config) error {
	if cfg.Timer.DefaultMinutes <= 0 {
		return fmt.Errorf("timer.default_minutes must be positive: %d", cfg.Timer.DefaultMinutes)
	}
	if cfg.Timer.TickInterval <= 0 {
		return fmt.Errorf("timer.tick_interval must be positive: %s", cfg.Timer.TickInterval)
	}
	if cfg.Timer.CompletionReset <= 0 {
		return fmt.Errorf("timer.completion_reset must be positive: %s", cfg.Timer.CompletionReset)
	}

	if err := reminder.ValidateTime(cfg.Reminder.DefaultTime); err != nil {
		return fmt.Errorf("reminder.default_time: %w", err)
	}
	if cfg.Reminder.PollInterval <= 0 || cfg.Reminder.PollInterval > time.Minute {
		return fmt.Errorf("reminder.poll_interval must be in (0, 1m]: %s", cfg.Reminder.PollInterval)
	}
	if cfg.Reminder.AutoDismiss <= 0 || cfg.Reminder.TestDismiss <= 0 || cfg.Reminder.Snooze <= 0 {
		return fmt.Errorf("reminder durations must be positive")
	}
	if cfg.Reminder.LogLimit <= 0 {
		return fmt.Errorf("reminder.log_limit must be positive: %d", cfg.Reminder.LogLimit)
	}

	if cfg.Notice.Duration <= 0 {
		return fmt.Errorf("notice.duration must be positive: %s", cfg.Notice.Duration)
	}

	switch cfg.Storage.Type {
	case storage.KindYAML, storage.KindSQLite, storage.KindMemory:
	default:
		return fmt.Errorf("%w: %q", storage.ErrUnknownKind, cfg.Storage.Type)
	}
	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}

	if cfg.Presence.IdleThreshold <= 0 || cfg.Presence.PollInterval <= 0 {
		return fmt.Errorf("presence durations must be positive")
	}

	return nil
}

// TimerModel converts the timer section to the countdown configuration.
func (cfg *Config) TimerModel() model.TimerConfig {
	return model.TimerConfig{
		Duration:        time.Duration(cfg.Timer.DefaultMinutes) * time.Minute,
		TickInterval:    cfg.Timer.TickInterval,
		CompletionReset: cfg.Timer.CompletionReset,
	}
}

// ReminderModel converts the reminder section to the scheduler configuration.
func (cfg *Config) ReminderModel() model.ReminderConfig {
	return model.ReminderConfig{
		DefaultTime:  cfg.Reminder.DefaultTime,
		PollInterval: cfg.Reminder.PollInterval,
		AutoDismiss:  cfg.Reminder.AutoDismiss,
		TestDismiss:  cfg.Reminder.TestDismiss,
		Snooze:       cfg.Reminder.Snooze,
		LogLimit:     cfg.Reminder.LogLimit,
	}
}

// OpenStore opens the configured storage backend.
func (cfg *Config) OpenStore() (storage.Store, error) {
	store, err := storage.Open(cfg.Storage.Type, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Type, err)
	}
	return store, nil
}
