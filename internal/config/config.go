package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Input       InputConfig       `yaml:"input" envconfig:"INPUT"`
	ObjectStore ObjectStoreConfig `yaml:"object_store" envconfig:"OBJECT_STORE" validate:"-"`
	Pipeline    PipelineConfig    `yaml:"pipeline" envconfig:"PIPELINE"`
	Output      OutputConfig      `yaml:"output" envconfig:"OUTPUT"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
	Server      ServerConfig      `yaml:"server" envconfig:"SERVER"`
}

// InputConfig selects where raw datasets come from
type InputConfig struct {
	Source   string `yaml:"source" envconfig:"SOURCE" validate:"oneof=dir workbook objectstore"`
	Dir      string `yaml:"dir" envconfig:"DIR" validate:"required_if=Source dir"`
	Workbook string `yaml:"workbook" envconfig:"WORKBOOK" validate:"required_if=Source workbook"`
}

// ObjectStoreConfig holds S3-compatible bucket settings. Only validated when
// Input.Source is objectstore.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint" envconfig:"ENDPOINT" validate:"required"`
	AccessKey string `yaml:"access_key" envconfig:"ACCESS_KEY" validate:"required"`
	SecretKey string `yaml:"secret_key" envconfig:"SECRET_KEY" validate:"required"`
	Bucket    string `yaml:"bucket" envconfig:"BUCKET" validate:"required"`
	Prefix    string `yaml:"prefix" envconfig:"PREFIX"`
	Region    string `yaml:"region" envconfig:"REGION"`
	UseSSL    bool   `yaml:"use_ssl" envconfig:"USE_SSL"`
}

// PipelineConfig selects the cleaning profile
type PipelineConfig struct {
	Profile    string `yaml:"profile" envconfig:"PROFILE" validate:"oneof=standard legacy"`
	StatusMode string `yaml:"status_mode" envconfig:"STATUS_MODE" validate:"omitempty,oneof=enum keyword"`
}

// OutputConfig lists the report destinations. Empty paths disable a destination.
type OutputConfig struct {
	ReportPath   string `yaml:"report_path" envconfig:"REPORT_PATH"`
	CleanedDir   string `yaml:"cleaned_dir" envconfig:"CLEANED_DIR"`
	WorkbookPath string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`
	ArchivePath  string `yaml:"archive_path" envconfig:"ARCHIVE_PATH"`
	Stdout       bool   `yaml:"stdout" envconfig:"STDOUT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// ServerConfig contains HTTP server configuration for the report server
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// Load builds the configuration from defaults, then the YAML file, then
// RETAILPULSE_* environment variables, each layer overriding the previous.
// An explicit path that does not exist is an error; otherwise the usual
// locations are searched and a missing file is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields carry no default tags, so unset variables leave earlier layers intact
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg. Keys absent from the file keep their value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints, plus the object store block when it is the input source
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Input.Source == SourceObjectStore {
		if err := v.Struct(c.ObjectStore); err != nil {
			return fmt.Errorf("object store: %w", err)
		}
	}
	return nil
}

// EffectiveStatusMode returns the shipment status mode after applying the profile default
func (c *Config) EffectiveStatusMode() string {
	if c.Pipeline.StatusMode != "" {
		return c.Pipeline.StatusMode
	}
	if c.Pipeline.Profile == ProfileLegacy {
		return StatusModeKeyword
	}
	return StatusModeEnum
}

// getConfigFilePath returns the first config file found in the usual locations
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Source: SourceDir,
			Dir:    DefaultDatasetDir,
		},
		Pipeline: PipelineConfig{
			Profile: ProfileStandard,
		},
		Output: OutputConfig{
			ReportPath: DefaultReportPath,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFilePath,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "retailpulse",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Server: ServerConfig{
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
	}
}
