// Package config loads service settings from defaults, an optional YAML
// file, an optional .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvPort        = "PORT"
	EnvBucket      = "GCS_BUCKET"
	EnvCredentials = "GCS_CREDENTIALS_FILE"
	EnvModel       = "GEMINI_MODEL"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvMaxUploadMB = "FINORA_MAX_UPLOAD_MB"
	EnvOrigins     = "FINORA_ALLOWED_ORIGINS"
)

// Config holds every tunable of the binaries.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Advisor AdvisorConfig `yaml:"advisor"`
	Log     LogConfig     `yaml:"log"`
	Jobs    JobsConfig    `yaml:"jobs"`
	PDF     PDFConfig     `yaml:"pdf"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	MaxUploadMB     int    `yaml:"max_upload_mb"`
}

type AdvisorConfig struct {
	Model string `yaml:"model"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type JobsConfig struct {
	Workers    int `yaml:"workers"`
	QueueSize  int `yaml:"queue_size"`
	MaxRetries int `yaml:"max_retries"`
}

type PDFConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{MaxUploadMB: 10},
		Advisor: AdvisorConfig{Model: "gemini-2.5-flash"},
		Log:     LogConfig{Level: "info", Format: "console"},
		Jobs:    JobsConfig{Workers: 5, QueueSize: 100, MaxRetries: 3},
		PDF:     PDFConfig{Concurrency: 4},
	}
}

// Load builds a Config. configPath names a YAML file and may be empty.
// dotenvPath names a .env file whose variables are added to the process
// environment without overriding it; a missing file is ignored.
func Load(configPath, dotenvPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("could not read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("could not parse config file %s: %w", configPath, err)
		}
	}

	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvBucket); ok {
		c.Storage.Bucket = v
	}
	if v, ok := lookup(EnvCredentials); ok {
		c.Storage.CredentialsFile = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Advisor.Model = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvMaxUploadMB); ok && v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxUploadMB, err)
		}
		c.Storage.MaxUploadMB = mb
	}
	if v, ok := lookup(EnvOrigins); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	return nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Storage.MaxUploadMB < 1 {
		errs = append(errs, fmt.Errorf("storage.max_upload_mb must be positive, got %d", c.Storage.MaxUploadMB))
	}
	if c.Jobs.Workers < 1 {
		errs = append(errs, fmt.Errorf("jobs.workers must be positive, got %d", c.Jobs.Workers))
	}
	if c.Jobs.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("jobs.queue_size must be positive, got %d", c.Jobs.QueueSize))
	}
	if c.Jobs.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("jobs.max_retries must not be negative, got %d", c.Jobs.MaxRetries))
	}
	if c.PDF.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("pdf.concurrency must be positive, got %d", c.PDF.Concurrency))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// MaxUploadBytes is the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadMB) << 20
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
