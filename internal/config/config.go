package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
	Activity  ActivityConfig  `yaml:"activity"`
	Preview   PreviewConfig   `yaml:"preview"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StoreConfig struct {
	Driver     string         `yaml:"driver"`
	Path       string         `yaml:"path"`
	Database   DatabaseConfig `yaml:"database"`
	Migrations string         `yaml:"migrations"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AnalysisConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ActivityConfig struct {
	LogCap int `yaml:"log_cap"`
}

type PreviewConfig struct {
	MaxDimension int `yaml:"max_dimension"`
	Quality      int `yaml:"quality"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Default returns the configuration used for keys the file leaves out.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Store: StoreConfig{
			Driver:     DriverSQLite,
			Path:       "data/vizofit.db",
			Migrations: "migrations",
		},
		Analysis: AnalysisConfig{
			Model:   "gemini-2.5-flash",
			Timeout: 60 * time.Second,
		},
		Tailscale: TailscaleConfig{Hostname: "vizofit"},
		Log:       LogConfig{Level: "info"},
		Activity:  ActivityConfig{LogCap: 300},
		Preview:   PreviewConfig{MaxDimension: 800, Quality: 70},
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. Env vars use the prefix VIZOFIT_:
//
//	VIZOFIT_SERVER_HOST, VIZOFIT_SERVER_PORT,
//	VIZOFIT_STORE_DRIVER, VIZOFIT_STORE_PATH,
//	VIZOFIT_DB_HOST, VIZOFIT_DB_PORT, VIZOFIT_DB_NAME,
//	VIZOFIT_DB_USER, VIZOFIT_DB_PASSWORD, VIZOFIT_DB_SSLMODE,
//	VIZOFIT_ANALYSIS_API_KEY (or GEMINI_API_KEY), VIZOFIT_ANALYSIS_MODEL,
//	VIZOFIT_LOG_LEVEL, VIZOFIT_LOG_FILE, VIZOFIT_TAILSCALE_ENABLED
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadOptional behaves like Load but treats a missing file as empty, so a
// local client can run on defaults and environment alone.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		applyEnvOverrides(cfg)
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}

func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("VIZOFIT_SERVER_HOST", &cfg.Server.Host)
	num("VIZOFIT_SERVER_PORT", &cfg.Server.Port)
	str("VIZOFIT_STORE_DRIVER", &cfg.Store.Driver)
	str("VIZOFIT_STORE_PATH", &cfg.Store.Path)
	str("VIZOFIT_DB_HOST", &cfg.Store.Database.Host)
	num("VIZOFIT_DB_PORT", &cfg.Store.Database.Port)
	str("VIZOFIT_DB_NAME", &cfg.Store.Database.Name)
	str("VIZOFIT_DB_USER", &cfg.Store.Database.User)
	str("VIZOFIT_DB_PASSWORD", &cfg.Store.Database.Password)
	str("VIZOFIT_DB_SSLMODE", &cfg.Store.Database.SSLMode)
	str("GEMINI_API_KEY", &cfg.Analysis.APIKey)
	str("VIZOFIT_ANALYSIS_API_KEY", &cfg.Analysis.APIKey)
	str("VIZOFIT_ANALYSIS_MODEL", &cfg.Analysis.Model)
	str("VIZOFIT_LOG_LEVEL", &cfg.Log.Level)
	str("VIZOFIT_LOG_FILE", &cfg.Log.File)
	if v := os.Getenv("VIZOFIT_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for sqlite")
		}
	case DriverPostgres:
		db := c.Store.Database
		if db.Host == "" {
			return fmt.Errorf("store.database.host is required")
		}
		if db.Port == 0 {
			return fmt.Errorf("store.database.port is required")
		}
		if db.Name == "" {
			return fmt.Errorf("store.database.name is required")
		}
		if db.User == "" {
			return fmt.Errorf("store.database.user is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("store.driver %q is not one of sqlite, postgres, memory", c.Store.Driver)
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis.timeout must be positive")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Activity.LogCap <= 0 {
		return fmt.Errorf("activity.log_cap must be positive")
	}
	if c.Preview.MaxDimension <= 0 {
		return fmt.Errorf("preview.max_dimension must be positive")
	}
	if c.Preview.Quality < 1 || c.Preview.Quality > 100 {
		return fmt.Errorf("preview.quality must be between 1 and 100")
	}
	return nil
}

// ParseLevel maps log.level to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
	return lvl, nil
}
