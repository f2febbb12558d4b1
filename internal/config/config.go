// Package config loads the application configuration from an optional
// config.yaml and FEDRESURS_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Plan    PlanConfig    `yaml:"plan" mapstructure:"plan"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Harvest HarvestConfig `yaml:"harvest" mapstructure:"harvest"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PlanConfig configures monthly query generation.
type PlanConfig struct {
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	StartMonth string `yaml:"start_month" mapstructure:"start_month"`
	EndMonth   string `yaml:"end_month" mapstructure:"end_month"`
	Output     string `yaml:"output" mapstructure:"output"`
}

// FetchConfig configures the headless browser.
type FetchConfig struct {
	Headless       bool    `yaml:"headless" mapstructure:"headless"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	NavTimeoutSecs int     `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	LoadMoreWaitMS int     `yaml:"load_more_wait_ms" mapstructure:"load_more_wait_ms"`
	MaxLoadMore    int     `yaml:"max_load_more" mapstructure:"max_load_more"`
	RecycleEvery   int     `yaml:"recycle_every" mapstructure:"recycle_every"`
	MaxAttempts    int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	PagesPerSecond float64 `yaml:"pages_per_second" mapstructure:"pages_per_second"`
}

// HarvestConfig configures the extraction pipeline and its checkpoints.
type HarvestConfig struct {
	Links           string `yaml:"links" mapstructure:"links"`
	DataDir         string `yaml:"data_dir" mapstructure:"data_dir"`
	BackupDir       string `yaml:"backup_dir" mapstructure:"backup_dir"`
	CheckpointEvery int    `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
}

// ExportConfig configures the spreadsheet export.
type ExportConfig struct {
	Output         string   `yaml:"output" mapstructure:"output"`
	Sheet          string   `yaml:"sheet" mapstructure:"sheet"`
	IdentityFields []string `yaml:"identity_fields" mapstructure:"identity_fields"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FEDRESURS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("plan.base_url", "https://fedresurs.ru/encumbrances?group=Leasing&period=")
	v.SetDefault("plan.start_month", "2016-01")
	v.SetDefault("plan.end_month", "2025-06")
	v.SetDefault("plan.output", "plan.json")
	v.SetDefault("fetch.headless", true)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("fetch.nav_timeout_secs", 45)
	v.SetDefault("fetch.load_more_wait_ms", 2000)
	v.SetDefault("fetch.max_load_more", 30)
	v.SetDefault("fetch.recycle_every", 50)
	v.SetDefault("fetch.max_attempts", 2)
	v.SetDefault("fetch.pages_per_second", 1.0)
	v.SetDefault("harvest.links", "links.json")
	v.SetDefault("harvest.data_dir", "data/raw")
	v.SetDefault("harvest.backup_dir", "data/backups")
	v.SetDefault("harvest.checkpoint_every", 10)
	v.SetDefault("export.output", "output.xlsx")
	v.SetDefault("export.sheet", "Сообщения")
	v.SetDefault("export.identity_fields", []string{"Лизингополучатели", "Лизингополучатель"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
