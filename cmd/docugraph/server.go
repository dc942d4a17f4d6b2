package docugraph

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docugraph/docugraph/pkg/config"
	"github.com/docugraph/docugraph/pkg/extractor"
	"github.com/docugraph/docugraph/pkg/ontology"
	"github.com/docugraph/docugraph/pkg/server"
	"github.com/docugraph/docugraph/pkg/store"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the DocuGraph HTTP server",
	Long: `Start the DocuGraph HTTP server to provide REST API access to extraction jobs.

The server provides endpoints for:
- Submitting documents for extraction
- Polling job status and fetching results
- Exporting graphs as bulk-import CSV
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Store flags
	serverCmd.Flags().String("store-path", "", "Job store path (default is $HOME/.docugraph/jobs)")
	serverCmd.Flags().Bool("store-in-memory", false, "Keep jobs in memory only")

	// Extraction flags
	serverCmd.Flags().Int("chunk-size", 0, "Window size in characters")
	serverCmd.Flags().Int("overlap", -1, "Window overlap as a percentage of chunk size")
	serverCmd.Flags().Int("concurrency", 0, "Maximum concurrent window extractions")
	serverCmd.Flags().String("ontology", "", "Path to an ontology YAML file")

	// NLP flags
	serverCmd.Flags().String("nlp-provider", "", "NLP provider (openai, anthropic)")
	serverCmd.Flags().String("nlp-model", "", "NLP model")
	serverCmd.Flags().String("nlp-api-key", "", "NLP API key")
	serverCmd.Flags().String("nlp-base-url", "", "NLP base URL")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)

	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	nlpClient, err := newNLPClient(cfg, log)
	if err != nil {
		return err
	}

	ontologyPrompt := ""
	if cfg.Extraction.OntologyPath != "" {
		onto, err := ontology.Load(cfg.Extraction.OntologyPath)
		if err != nil {
			return fmt.Errorf("failed to load ontology: %w", err)
		}
		ontologyPrompt = onto.PromptText()
	}

	var jobStore *store.JobStore
	if cfg.Store.InMemory {
		jobStore, err = store.OpenInMemory()
	} else {
		jobStore, err = store.Open(cfg.Store.Path)
	}
	if err != nil {
		return fmt.Errorf("failed to open job store: %w", err)
	}
	defer jobStore.Close()

	windowExtractor := extractor.New(nlpClient, ontologyPrompt, log)
	service := server.NewService(jobStore, windowExtractor, cfg, log)

	srv := server.New(cfg, service, log)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Store flags
	if cmd.Flags().Changed("store-path") {
		cfg.Store.Path, _ = cmd.Flags().GetString("store-path")
	}
	if cmd.Flags().Changed("store-in-memory") {
		cfg.Store.InMemory, _ = cmd.Flags().GetBool("store-in-memory")
	}

	// Extraction flags
	if cmd.Flags().Changed("chunk-size") {
		cfg.Extraction.ChunkSize, _ = cmd.Flags().GetInt("chunk-size")
	}
	if cmd.Flags().Changed("overlap") {
		cfg.Extraction.OverlapPercentage, _ = cmd.Flags().GetInt("overlap")
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Extraction.MaxConcurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if cmd.Flags().Changed("ontology") {
		cfg.Extraction.OntologyPath, _ = cmd.Flags().GetString("ontology")
	}

	// NLP flags
	if cmd.Flags().Changed("nlp-provider") {
		cfg.NLP.Provider, _ = cmd.Flags().GetString("nlp-provider")
	}
	if cmd.Flags().Changed("nlp-model") {
		cfg.NLP.Model, _ = cmd.Flags().GetString("nlp-model")
	}
	if cmd.Flags().Changed("nlp-api-key") {
		cfg.NLP.APIKey, _ = cmd.Flags().GetString("nlp-api-key")
	}
	if cmd.Flags().Changed("nlp-base-url") {
		cfg.NLP.BaseURL, _ = cmd.Flags().GetString("nlp-base-url")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
		cfg.Telemetry.Enabled = true
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if !cfg.Store.InMemory && cfg.Store.Path == "" {
		return fmt.Errorf("job store path is required")
	}
	return nil
}
