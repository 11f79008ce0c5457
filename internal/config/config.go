package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. Values come from the
// environment (DATAPULSE_ prefix), optionally merged over a YAML file.
type Config struct {
	Input   InputConfig   `yaml:"input" split_words:"true"`
	Output  OutputConfig  `yaml:"output" split_words:"true"`
	Logging LoggingConfig `yaml:"logging" split_words:"true"`
	AI      AIConfig      `yaml:"ai" split_words:"true"`
	Server  ServerConfig  `yaml:"server" split_words:"true"`
}

// InputConfig locates the dataset to process.
type InputConfig struct {
	Path string `yaml:"path" split_words:"true" default:"sample.csv"`
}

// OutputConfig names the artifacts a run writes.
type OutputConfig struct {
	Dir        string `yaml:"dir" split_words:"true" default:"output"`
	CleanedCSV string `yaml:"cleaned_csv" split_words:"true" default:"cleaned_output.csv"`
	ChartPNG   string `yaml:"chart_png" split_words:"true" default:"top_products.png"`
	ReportPDF  string `yaml:"report_pdf" split_words:"true" default:"report.pdf"`
	TopN       int    `yaml:"top_n" split_words:"true" default:"10" validate:"min=1,max=100"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" split_words:"true" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" default:"logs/datapulse.log"`
}

// AIConfig configures the summarizer collaborator. An empty APIKey disables
// the call; the pipeline substitutes placeholder text instead of failing.
type AIConfig struct {
	Endpoint string        `yaml:"endpoint" split_words:"true" default:"https://generativelanguage.googleapis.com/v1beta/models"`
	Model    string        `yaml:"model" split_words:"true" default:"gemini-2.0-flash"`
	APIKey   string        `yaml:"api_key" split_words:"true"`
	Timeout  time.Duration `yaml:"timeout" split_words:"true" default:"30s"`
	RPS      float64       `yaml:"rps" split_words:"true" default:"1" validate:"gt=0"`
}

// ServerConfig configures the report server.
type ServerConfig struct {
	Port            int           `yaml:"port" split_words:"true" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" default:"10s"`
}

var validate = validator.New()

// Load builds the configuration: defaults and environment first, then a
// YAML file when one exists at configPath (empty means skip the file), with
// environment values taking precedence over the file.
func Load(configPath string) (*Config, error) {
	var fileCfg Config
	haveFile := false
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			loaded, err := loadFromFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			fileCfg = *loaded
			haveFile = true
		}
	}

	var cfg Config
	if err := envconfig.Process("DATAPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if haveFile {
		cfg = merge(fileCfg, cfg)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile reads a YAML configuration file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays file values on the env-derived config. A file value applies
// only when it was set in the file and the matching DATAPULSE_ variable is
// absent from the environment, so explicit env vars always win while file
// values still beat built-in defaults.
func merge(file, env Config) Config {
	out := env
	overlay := func(key string, set bool, apply func()) {
		if !set {
			return
		}
		if _, fromEnv := os.LookupEnv("DATAPULSE_" + key); !fromEnv {
			apply()
		}
	}

	overlay("INPUT_PATH", file.Input.Path != "", func() { out.Input.Path = file.Input.Path })
	overlay("OUTPUT_DIR", file.Output.Dir != "", func() { out.Output.Dir = file.Output.Dir })
	overlay("OUTPUT_CLEANED_CSV", file.Output.CleanedCSV != "", func() { out.Output.CleanedCSV = file.Output.CleanedCSV })
	overlay("OUTPUT_CHART_PNG", file.Output.ChartPNG != "", func() { out.Output.ChartPNG = file.Output.ChartPNG })
	overlay("OUTPUT_REPORT_PDF", file.Output.ReportPDF != "", func() { out.Output.ReportPDF = file.Output.ReportPDF })
	overlay("OUTPUT_TOP_N", file.Output.TopN != 0, func() { out.Output.TopN = file.Output.TopN })
	overlay("LOGGING_LEVEL", file.Logging.Level != "", func() { out.Logging.Level = file.Logging.Level })
	overlay("LOGGING_OUTPUT", file.Logging.Output != "", func() { out.Logging.Output = file.Logging.Output })
	overlay("LOGGING_FILE_PATH", file.Logging.FilePath != "", func() { out.Logging.FilePath = file.Logging.FilePath })
	overlay("AI_ENDPOINT", file.AI.Endpoint != "", func() { out.AI.Endpoint = file.AI.Endpoint })
	overlay("AI_MODEL", file.AI.Model != "", func() { out.AI.Model = file.AI.Model })
	overlay("AI_API_KEY", file.AI.APIKey != "", func() { out.AI.APIKey = file.AI.APIKey })
	overlay("AI_TIMEOUT", file.AI.Timeout != 0, func() { out.AI.Timeout = file.AI.Timeout })
	overlay("AI_RPS", file.AI.RPS != 0, func() { out.AI.RPS = file.AI.RPS })
	overlay("SERVER_PORT", file.Server.Port != 0, func() { out.Server.Port = file.Server.Port })
	overlay("SERVER_READ_TIMEOUT", file.Server.ReadTimeout != 0, func() { out.Server.ReadTimeout = file.Server.ReadTimeout })
	overlay("SERVER_WRITE_TIMEOUT", file.Server.WriteTimeout != 0, func() { out.Server.WriteTimeout = file.Server.WriteTimeout })
	overlay("SERVER_IDLE_TIMEOUT", file.Server.IdleTimeout != 0, func() { out.Server.IdleTimeout = file.Server.IdleTimeout })
	overlay("SERVER_SHUTDOWN_TIMEOUT", file.Server.ShutdownTimeout != 0, func() { out.Server.ShutdownTimeout = file.Server.ShutdownTimeout })
	return out
}

// resolvePaths anchors relative output paths under the output directory.
func (c *Config) resolvePaths() error {
	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
	abs, err := filepath.Abs(c.Output.Dir)
	if err != nil {
		return err
	}
	c.Output.Dir = abs
	return nil
}

// CleanedCSVPath returns the absolute path of the cleaned CSV artifact.
func (c *Config) CleanedCSVPath() string { return c.artifact(c.Output.CleanedCSV) }

// ChartPath returns the absolute path of the chart artifact.
func (c *Config) ChartPath() string { return c.artifact(c.Output.ChartPNG) }

// PDFPath returns the absolute path of the PDF report artifact.
func (c *Config) PDFPath() string { return c.artifact(c.Output.ReportPDF) }

func (c *Config) artifact(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}

// EnsureOutputDir creates the output directory tree.
func (c *Config) EnsureOutputDir() error {
	return os.MkdirAll(c.Output.Dir, 0o755)
}
