package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Analysis Analysis `mapstructure:"analysis"`
	Cache    Cache    `mapstructure:"cache"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Analysis holds the pipeline tuning options recognized by the analyzer,
// reflection engine, and model selection.
type Analysis struct {
	SegmentSize         int     `mapstructure:"segment_size"`          // character budget per segment
	SegmentOverlap      int     `mapstructure:"segment_overlap"`       // max trailing blocks carried between segments
	MaxConcurrency      int     `mapstructure:"max_concurrency"`       // concurrent segment model calls
	EnableReflection    bool    `mapstructure:"enable_reflection"`
	MaxReflectionRounds int     `mapstructure:"max_reflection_rounds"`
	QualityThreshold    float64 `mapstructure:"quality_threshold"`
	AnalysisModel       string  `mapstructure:"analysis_model"`
	ReflectionModel     string  `mapstructure:"reflection_model"`
	EmbeddingModel      string  `mapstructure:"embedding_model"`
	MaxCost             float64 `mapstructure:"max_cost"` // USD per 1k tokens ceiling for model selection, 0 = unlimited
}

// Cache holds cache tier configuration
type Cache struct {
	Redis       RedisConfig `mapstructure:"redis"`
	MemoryLimit int         `mapstructure:"memory_limit"` // in-process entry cap
	TTL         string      `mapstructure:"ttl"`
}

// RedisConfig holds the distributed cache tier configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from the config file, environment, and defaults.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".distill")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached global configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("ai.gemini.api_key", "")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.3)

	viper.SetDefault("analysis.segment_size", 2000)
	viper.SetDefault("analysis.segment_overlap", 3)
	viper.SetDefault("analysis.max_concurrency", 4)
	viper.SetDefault("analysis.enable_reflection", true)
	viper.SetDefault("analysis.max_reflection_rounds", 2)
	viper.SetDefault("analysis.quality_threshold", 7.0)
	viper.SetDefault("analysis.analysis_model", "gemini-2.5-flash")
	viper.SetDefault("analysis.reflection_model", "gemini-2.5-pro")
	viper.SetDefault("analysis.embedding_model", "gemini-embedding-001")
	viper.SetDefault("analysis.max_cost", 0.0)

	viper.SetDefault("cache.redis.addr", "localhost:6379")
	viper.SetDefault("cache.redis.db", 0)
	viper.SetDefault("cache.memory_limit", 1000)
	viper.SetDefault("cache.ttl", "15m")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// validateConfig checks bounds on the pipeline options
func validateConfig(config *Config) error {
	if config.Analysis.SegmentSize < 200 {
		return fmt.Errorf("analysis.segment_size must be at least 200, got %d", config.Analysis.SegmentSize)
	}
	if config.Analysis.MaxReflectionRounds < 0 {
		return fmt.Errorf("analysis.max_reflection_rounds must not be negative, got %d", config.Analysis.MaxReflectionRounds)
	}
	if config.Analysis.QualityThreshold < 0 || config.Analysis.QualityThreshold > 10 {
		return fmt.Errorf("analysis.quality_threshold must be in [0,10], got %f", config.Analysis.QualityThreshold)
	}
	if config.Analysis.MaxConcurrency < 1 {
		return fmt.Errorf("analysis.max_concurrency must be at least 1, got %d", config.Analysis.MaxConcurrency)
	}
	return nil
}
