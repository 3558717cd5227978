package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fairwaylabs/shotlens/internal/resolve"
)

// Config holds the full application configuration.
type Config struct {
	OCR     OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Fields  FieldsConfig    `yaml:"fields" mapstructure:"fields"`
	Scoring resolve.Weights `yaml:"scoring" mapstructure:"scoring"`
	Store   StoreConfig     `yaml:"store" mapstructure:"store"`
	Batch   BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig    `yaml:"server" mapstructure:"server"`
	Export  ExportConfig    `yaml:"export" mapstructure:"export"`
	Log     LogConfig       `yaml:"log" mapstructure:"log"`
}

// OCRConfig configures the text-recognition backend.
type OCRConfig struct {
	Provider      string  `yaml:"provider" mapstructure:"provider"`
	TesseractPath string  `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	PSMs          []int   `yaml:"psms" mapstructure:"psms"`
	EasyOCRURL    string  `yaml:"easyocr_url" mapstructure:"easyocr_url"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// Timeout returns the request timeout as a duration.
func (c OCRConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// FieldsConfig points at the field definition file. An empty path means
// the built-in layout.
type FieldsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// StoreConfig configures the results database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BatchConfig configures directory processing.
type BatchConfig struct {
	MaxConcurrentImages int `yaml:"max_concurrent_images" mapstructure:"max_concurrent_images"`
}

// ServerConfig configures the extraction API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// ExportConfig configures result export.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
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
	v.SetEnvPrefix("SHOTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ocr.provider", "tesseract")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.rate_limit", 5.0)
	v.SetDefault("ocr.timeout_secs", 30)
	v.SetDefault("ocr.max_retries", 3)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "shotlens.db")
	v.SetDefault("batch.max_concurrent_images", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("export.dir", "output")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	defaults := resolve.DefaultWeights()
	v.SetDefault("scoring.proximity", defaults.Proximity)
	v.SetDefault("scoring.decimal", defaults.Decimal)
	v.SetDefault("scoring.decimal_drop", defaults.DecimalDrop)
	v.SetDefault("scoring.range_center", defaults.RangeCenter)
	v.SetDefault("scoring.digit_extract", defaults.DigitExtract)
	v.SetDefault("scoring.sign", defaults.Sign)
	v.SetDefault("scoring.confidence", defaults.Confidence)
	v.SetDefault("scoring.pattern_match", defaults.PatternMatch)

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
