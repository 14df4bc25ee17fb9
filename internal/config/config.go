// Package config loads CaseFlow's runtime configuration: a YAML base
// file layered under struct-tag driven environment overrides.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the single typed configuration struct consumed at startup by
// every cmd/caseflowd subcommand.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Worker    WorkerConfig    `yaml:"worker"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Addr           string   `yaml:"addr" env:"CASEFLOW_HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"CASEFLOW_HTTP_ALLOWED_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	DSN          string `yaml:"dsn" env:"CASEFLOW_DATABASE_DSN"`
	MaxConns     int32  `yaml:"max_conns" env:"CASEFLOW_DATABASE_MAX_CONNS" envDefault:"10"`
	MigrationDir string `yaml:"migration_dir" env:"CASEFLOW_DATABASE_MIGRATION_DIR" envDefault:"internal/store/postgres/migrations"`
}

type WorkerConfig struct {
	QueueDepth int `yaml:"queue_depth" env:"CASEFLOW_WORKER_QUEUE_DEPTH" envDefault:"256"`
}

type SchedulerConfig struct {
	ScanIntervalSeconds int    `yaml:"scan_interval_seconds" env:"CASEFLOW_SCHEDULER_SCAN_INTERVAL_SECONDS" envDefault:"30"`
	TaskType            string `yaml:"task_type" env:"CASEFLOW_SCHEDULER_TASK_TYPE" envDefault:"autotest"`
}

type LogConfig struct {
	Development bool   `yaml:"development" env:"CASEFLOW_LOG_DEVELOPMENT" envDefault:"false"`
	Level       string `yaml:"level" env:"CASEFLOW_LOG_LEVEL" envDefault:"info"`
}

// Load reads yamlPath (if non-empty and present) as the base
// configuration, then applies environment overrides on top.
func Load(yamlPath string) (*Config, error) {
	cfg := &Config{}
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", yamlPath, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", yamlPath, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment overrides: %w", err)
	}
	return cfg, nil
}
