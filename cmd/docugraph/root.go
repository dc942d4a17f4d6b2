package docugraph

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/docugraph/docugraph/pkg/config"
	"github.com/docugraph/docugraph/pkg/logger"
	"github.com/docugraph/docugraph/pkg/nlp"
	"github.com/docugraph/docugraph/pkg/telemetry"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "docugraph",
		Short: "DocuGraph: Knowledge Graph Extraction Tool",
		Long: `DocuGraph extracts knowledge graphs from documents.

It splits a document into overlapping text windows, extracts entities and
relationships from each window with a language model, and reassembles the
fragments into a single deduplicated graph.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.docugraph.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".docugraph" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".docugraph")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger builds the application logger. When telemetry is enabled,
// error-level records are also captured to Parquet files alongside the
// colored console output.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := parseLogLevel(cfg.Log.Level)
	colorHandler := logger.NewColorHandler(os.Stderr, level)

	if !cfg.Telemetry.Enabled || cfg.Telemetry.ParquetPath == "" {
		return slog.New(colorHandler), nil
	}

	parquetHandler, err := telemetry.NewParquetHandler(colorHandler, cfg.Telemetry.ParquetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize error tracking: %v\n", err)
		return slog.New(colorHandler), nil
	}
	fmt.Fprintln(os.Stderr, "Error tracking enabled at:", cfg.Telemetry.ParquetPath)
	return slog.New(parquetHandler), nil
}

// newNLPClient builds the configured language model client, wrapped with
// retries and a circuit breaker.
func newNLPClient(cfg *config.Config, log *slog.Logger) (nlp.Client, error) {
	if cfg.NLP.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for NLP provider %q", cfg.NLP.Provider)
	}

	nlpConfig := nlp.Config{
		Model:       cfg.NLP.Model,
		Temperature: &cfg.NLP.Temperature,
		MaxTokens:   &cfg.NLP.MaxTokens,
		BaseURL:     cfg.NLP.BaseURL,
	}

	var base nlp.Client
	switch cfg.NLP.Provider {
	case "openai":
		client, err := nlp.NewOpenAIClient(cfg.NLP.APIKey, nlpConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create NLP client: %w", err)
		}
		base = client
	case "anthropic":
		base = nlp.NewAnthropicClient(cfg.NLP.APIKey, nlpConfig)
	default:
		return nil, fmt.Errorf("unsupported NLP provider: %s", cfg.NLP.Provider)
	}

	retryClient := nlp.NewRetryClient(base, nlp.DefaultRetryConfig())
	return nlp.NewCircuitBreakerClient(retryClient, cfg.CircuitBreaker, cfg.NLP.Provider, log), nil
}
