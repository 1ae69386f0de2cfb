package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"crudtask/internal/util"
)

// Config is the complete process configuration, loaded from YAML.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// BackendConfig points at the REST task backend.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig locates the sqlite browser state and bounds how long idle state is kept.
type StorageConfig struct {
	Path          string        `yaml:"path"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// UIConfig holds page timings.
type UIConfig struct {
	RegisterRedirectDelay time.Duration `yaml:"register_redirect_delay"`
	NoticeDuration        time.Duration `yaml:"notice_duration"`
}

// LogConfig selects the slog level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Backend: BackendConfig{
			URL:     "http://localhost:3000",
			Timeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Path:          "data/crudtask.db",
			SessionTTL:    30 * 24 * time.Hour,
			SweepInterval: time.Hour,
		},
		UI: UIConfig{
			RegisterRedirectDelay: 1500 * time.Millisecond,
			NoticeDuration:        5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from CRUDTASK_* environment variables.
func (c *Config) ApplyEnv() {
	c.Server.Addr = util.EnvOrDefault("CRUDTASK_ADDR", c.Server.Addr)
	c.Backend.URL = util.EnvOrDefault("CRUDTASK_API_URL", c.Backend.URL)
	c.Backend.Timeout = util.EnvDurationOrDefault("CRUDTASK_API_TIMEOUT", c.Backend.Timeout)
	c.Storage.Path = util.EnvOrDefault("CRUDTASK_DB_PATH", c.Storage.Path)
	c.Storage.SessionTTL = util.EnvDurationOrDefault("CRUDTASK_SESSION_TTL", c.Storage.SessionTTL)
	c.Log.Level = util.EnvOrDefault("CRUDTASK_LOG_LEVEL", c.Log.Level)
}

// Overrides are command line values; empty fields keep the current setting.
type Overrides struct {
	Addr     string
	APIURL   string
	DBPath   string
	LogLevel string
}

// Apply copies every non-empty override into the config.
func (c *Config) Apply(o Overrides) {
	if o.Addr != "" {
		c.Server.Addr = o.Addr
	}
	if o.APIURL != "" {
		c.Backend.URL = o.APIURL
	}
	if o.DBPath != "" {
		c.Storage.Path = o.DBPath
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if u, err := url.Parse(c.Backend.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url %q is not an http(s) URL", c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, errors.New("storage.path is empty"))
	}
	if c.Storage.SessionTTL <= 0 {
		errs = append(errs, errors.New("storage.session_ttl must be positive"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses the configured level (debug, info, warn, error).
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
