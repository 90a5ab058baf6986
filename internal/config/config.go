package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

// Config is the on-disk configuration. It never holds an API key.
type Config struct {
	AI          AIConfig          `yaml:"ai"`
	Generation  GenerationConfig  `yaml:"generation"`
	History     HistoryConfig     `yaml:"history"`
	Audit       AuditConfig       `yaml:"audit"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Web         WebConfig         `yaml:"web"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// AIConfig selects the generation service and its request parameters.
type AIConfig struct {
	Provider    string  `yaml:"provider,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	// APIKeyEnv names the environment variable the CLI reads the key from.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// Timeout is the per-request deadline. Zero means no deadline.
func (c AIConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

type GenerationConfig struct {
	// Strict enables the consistency checks on top of the shape check.
	Strict bool `yaml:"strict"`
	// JSONSchema requests schema-constrained output instead of plain JSON mode.
	JSONSchema bool `yaml:"json_schema"`
}

type HistoryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	SQLitePath    string `yaml:"sqlite_path"`
	RetentionDays int    `yaml:"retention_days"`
}

type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	RootDir       string `yaml:"root_dir,omitempty"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
	FilePrefix    string `yaml:"file_prefix"`
}

// MaintenanceConfig holds cron expressions (5 or 6 fields) for background housekeeping.
type MaintenanceConfig struct {
	AuditCleanup string `yaml:"audit_cleanup"`
	HistoryPurge string `yaml:"history_purge"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: 0.7,
			MaxTokens:   8000,
			TimeoutSec:  180,
			APIKeyEnv:   "OPENAI_API_KEY",
		},
		History: HistoryConfig{
			Enabled:       true,
			SQLitePath:    filepath.Join(ConfigDir(), "history.db"),
			RetentionDays: 30,
		},
		Audit: AuditConfig{
			Enabled:       false,
			RootDir:       getExecutableDir(),
			Dir:           ".veoscene/audit",
			RetentionDays: 7,
			FilePrefix:    "promptbuild",
		},
		Maintenance: MaintenanceConfig{
			AuditCleanup: "30 3 * * *",
			HistoryPurge: "0 4 * * *",
		},
		Web: WebConfig{
			Port: 8787,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func ConfigDir() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".veoscene")
}

func ConfigPath() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".veoscene.yaml")
}

func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath reads path over the defaults. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the generator cannot use.
func (c *Config) Validate() error {
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", c.AI.Temperature)
	}
	if c.AI.MaxTokens < 0 {
		return fmt.Errorf("ai.max_tokens must not be negative")
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port out of range: %d", c.Web.Port)
	}
	return nil
}

func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
