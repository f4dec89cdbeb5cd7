package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/storage"
)

// FileEnv names the optional TOML file read before the environment
const FileEnv = "STUDIO_CONFIG"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	AI        AIConfig        `toml:"ai"`
	Engine    EngineConfig    `toml:"engine"`
	Library   LibraryConfig   `toml:"library"`
	Logging   LogConfig       `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" toml:"port"`
	Host        string   `envconfig:"HOST" toml:"host"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" toml:"cors_origins"`
}

// StorageConfig selects the schema persistence backend.
type StorageConfig struct {
	Driver        string   `envconfig:"STORAGE_DRIVER" toml:"driver"`
	Path          string   `envconfig:"STORAGE_PATH" toml:"path"`
	Compress      bool     `envconfig:"STORAGE_COMPRESS" toml:"compress"`
	Watch         bool     `envconfig:"STORAGE_WATCH" toml:"watch"`
	WatchDebounce Duration `envconfig:"STORAGE_WATCH_DEBOUNCE" toml:"watch_debounce"`
}

// AIConfig holds the chat completions endpoint. An empty key and base URL
// select the offline mock.
type AIConfig struct {
	BaseURL string   `envconfig:"AI_BASE_URL" toml:"base_url"`
	APIKey  string   `envconfig:"AI_API_KEY" toml:"api_key"`
	Model   string   `envconfig:"AI_MODEL" toml:"model"`
	Timeout Duration `envconfig:"AI_TIMEOUT" toml:"timeout"`
}

// EngineConfig tunes flow execution.
type EngineConfig struct {
	FlowConcurrency string   `envconfig:"FLOW_CONCURRENCY" toml:"flow_concurrency"`
	RequestMode     string   `envconfig:"REQUEST_MODE" toml:"request_mode"`
	RequestDelay    Duration `envconfig:"REQUEST_DELAY" toml:"request_delay"`
	RequestRate     float64  `envconfig:"REQUEST_RATE" toml:"request_rate"`
	ScriptTimeout   Duration `envconfig:"SCRIPT_TIMEOUT" toml:"script_timeout"`
}

// LibraryConfig points at reusable components seeded on startup.
type LibraryConfig struct {
	Dir     string `envconfig:"LIBRARY_DIR" toml:"dir"`
	Pattern string `envconfig:"LIBRARY_PATTERN" toml:"pattern"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" toml:"enabled"`
}

// Duration is a time.Duration written as "500ms" in both TOML and env vars.
type Duration time.Duration

// Std returns the standard library duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText formats the duration
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Load builds configuration from defaults, then the TOML file named by
// STUDIO_CONFIG, then environment variables.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(FileEnv))
}

// LoadFile is Load with an explicit TOML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	// Fields carry no envconfig defaults so unset variables keep file values.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown enumerations
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverFile, storage.DriverBolt, storage.DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := engine.ParsePolicy(c.Engine.FlowConcurrency); err != nil {
		return err
	}
	switch engine.RequestMode(c.Engine.RequestMode) {
	case engine.RequestLive, engine.RequestOffline:
	default:
		return fmt.Errorf("unknown request mode %q", c.Engine.RequestMode)
	}
	return nil
}

// EngineConfig converts the engine section
func (c *Config) EngineConfig() engine.Config {
	policy, _ := engine.ParsePolicy(c.Engine.FlowConcurrency)
	return engine.Config{
		Policy:       policy,
		RequestMode:  engine.RequestMode(c.Engine.RequestMode),
		RequestDelay: c.Engine.RequestDelay.Std(),
	}
}

// StorageConfig converts the storage section
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Driver:   c.Storage.Driver,
		Path:     c.Storage.Path,
		Key:      storage.DefaultKey,
		Compress: c.Storage.Compress,
	}
}

// UseRemoteAI reports whether a real completions endpoint is configured
func (c *Config) UseRemoteAI() bool {
	return c.AI.APIKey != "" || c.AI.BaseURL != ""
}

// Addr returns host:port
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Driver:        storage.DriverFile,
			Path:          "data/schema.json",
			WatchDebounce: Duration(500 * time.Millisecond),
		},
		AI: AIConfig{
			Model:   "gpt-4o-mini",
			Timeout: Duration(60 * time.Second),
		},
		Engine: EngineConfig{
			FlowConcurrency: string(engine.PolicyAllow),
			RequestMode:     string(engine.RequestOffline),
			RequestDelay:    Duration(500 * time.Millisecond),
			ScriptTimeout:   Duration(time.Second),
		},
		Library: LibraryConfig{
			Pattern: "**/*.json",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
