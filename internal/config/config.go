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
	Dataset Dataset `yaml:"dataset" mapstructure:"dataset"`
	Prompt  Prompt  `yaml:"prompt" mapstructure:"prompt"`
	Gemini  Gemini  `yaml:"gemini" mapstructure:"gemini"`
	Claude  Claude  `yaml:"claude" mapstructure:"claude"`
	Run     Run     `yaml:"run" mapstructure:"run"`
	Extract Extract `yaml:"extract" mapstructure:"extract"`
	Retry   Retry   `yaml:"retry" mapstructure:"retry"`
	Store   Store   `yaml:"store" mapstructure:"store"`
	Server  Server  `yaml:"server" mapstructure:"server"`
	Log     Log     `yaml:"log" mapstructure:"log"`
}

// Dataset points at the puzzle images and their annotations.
type Dataset struct {
	ImagesDir       string `yaml:"images_dir" mapstructure:"images_dir"`
	AnnotationsFile string `yaml:"annotations_file" mapstructure:"annotations_file"`
	ExamplesFile    string `yaml:"examples_file" mapstructure:"examples_file"`
}

// Prompt configures prompt construction.
type Prompt struct {
	Style        string `yaml:"style" mapstructure:"style"`
	Question     string `yaml:"question" mapstructure:"question"`
	TemplatesDir string `yaml:"templates_dir" mapstructure:"templates_dir"`
}

// Gemini holds Gemini API settings. Set UseVertex with Project and
// Location to go through Vertex AI instead of the Gemini API.
type Gemini struct {
	APIKey          string `yaml:"api_key" mapstructure:"api_key"`
	Model           string `yaml:"model" mapstructure:"model"`
	UseVertex       bool   `yaml:"use_vertex" mapstructure:"use_vertex"`
	Project         string `yaml:"project" mapstructure:"project"`
	Location        string `yaml:"location" mapstructure:"location"`
	MaxOutputTokens int    `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	SupportsCoT     bool   `yaml:"supports_cot" mapstructure:"supports_cot"`
}

// Claude holds Anthropic API settings.
type Claude struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	SupportsCoT bool   `yaml:"supports_cot" mapstructure:"supports_cot"`
}

// Run configures benchmark execution.
type Run struct {
	Backend       string `yaml:"backend" mapstructure:"backend"`
	Concurrency   int    `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerMinute int    `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	LogsDir       string `yaml:"logs_dir" mapstructure:"logs_dir"`
}

// Extract configures answer extraction.
type Extract struct {
	LexiconFile string `yaml:"lexicon_file" mapstructure:"lexicon_file"`
	Parallelism int    `yaml:"parallelism" mapstructure:"parallelism"`
}

// Retry configures model-call retry behavior.
type Retry struct {
	MaxAttempts        int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffSecs float64 `yaml:"initial_backoff_secs" mapstructure:"initial_backoff_secs"`
	MaxBackoffSecs     float64 `yaml:"max_backoff_secs" mapstructure:"max_backoff_secs"`
}

// Store configures the run registry database.
type Store struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// Server configures the read-only results API.
type Server struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// Log configures logging.
type Log struct {
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
	v.SetEnvPrefix("REBUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.images_dir", "dataset/images")
	v.SetDefault("dataset.annotations_file", "dataset/annotations.csv")
	v.SetDefault("prompt.style", "zero_shot")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.location", "us-central1")
	v.SetDefault("gemini.max_output_tokens", 1024)
	v.SetDefault("gemini.supports_cot", true)
	v.SetDefault("claude.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("claude.max_tokens", 1024)
	v.SetDefault("claude.supports_cot", true)
	v.SetDefault("run.backend", "gemini")
	v.SetDefault("run.concurrency", 4)
	v.SetDefault("run.rate_per_minute", 60)
	v.SetDefault("run.logs_dir", "logs")
	v.SetDefault("extract.parallelism", 8)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_secs", 1)
	v.SetDefault("retry.max_backoff_secs", 60)
	v.SetDefault("store.db_path", "rebusbench.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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
func InitLogger(cfg Log) error {
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
