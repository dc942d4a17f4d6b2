// Package config loads application configuration from file, defaults, and
// environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/docugraph/docugraph/pkg/nlp"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Extraction configuration
	Extraction ExtractionConfig `mapstructure:"extraction"`

	// NLP configuration
	NLP NLPConfig `mapstructure:"nlp"`

	// Store configuration
	Store StoreConfig `mapstructure:"store"`

	// Export configuration
	Export ExportConfig `mapstructure:"export"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker nlp.CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, color
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// ExtractionConfig tunes the chunking and fan-out of extraction runs.
type ExtractionConfig struct {
	ChunkSize         int    `mapstructure:"chunk_size"`
	OverlapPercentage int    `mapstructure:"overlap_percentage"`
	MaxConcurrency    int    `mapstructure:"max_concurrency"`
	OntologyPath      string `mapstructure:"ontology_path"`
}

// NLPConfig holds language model configuration.
type NLPConfig struct {
	Provider    string  `mapstructure:"provider"` // openai, anthropic
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// StoreConfig holds the job store configuration.
type StoreConfig struct {
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

// ExportConfig holds graph export configuration.
type ExportConfig struct {
	Neo4jURI      string `mapstructure:"neo4j_uri"`
	Neo4jUser     string `mapstructure:"neo4j_user"`
	Neo4jPassword string `mapstructure:"neo4j_password"`
	Neo4jDatabase string `mapstructure:"neo4j_database"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "color")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Extraction defaults
	viper.SetDefault("extraction.chunk_size", 1000)
	viper.SetDefault("extraction.overlap_percentage", 10)
	viper.SetDefault("extraction.max_concurrency", 4)

	// NLP defaults
	viper.SetDefault("nlp.provider", "openai")
	viper.SetDefault("nlp.model", "gpt-4o")
	viper.SetDefault("nlp.temperature", 0.0)
	viper.SetDefault("nlp.max_tokens", 4096)

	// Store defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("store.path", fmt.Sprintf("%s/.docugraph/jobs", home))
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.docugraph/telemetry", home))
	}

	// Export defaults
	viper.SetDefault("export.neo4j_uri", "bolt://localhost:7687")
	viper.SetDefault("export.neo4j_user", "neo4j")
	viper.SetDefault("export.neo4j_database", "neo4j")

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && config.NLP.Provider == "openai" {
		config.NLP.APIKey = apiKey
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" && config.NLP.Provider == "anthropic" {
		config.NLP.APIKey = apiKey
	}
	if baseURL := os.Getenv("NLP_BASE_URL"); baseURL != "" {
		config.NLP.BaseURL = baseURL
	}
	if model := os.Getenv("NLP_MODEL"); model != "" {
		config.NLP.Model = model
	}

	// Neo4j export credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Export.Neo4jURI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Export.Neo4jUser = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Export.Neo4jPassword = pass
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Store settings
	if path := os.Getenv("DOCUGRAPH_STORE_PATH"); path != "" {
		config.Store.Path = path
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
