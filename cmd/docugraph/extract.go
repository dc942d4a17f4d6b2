package docugraph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	docugraphlib "github.com/docugraph/docugraph"
	"github.com/docugraph/docugraph/pkg/config"
	"github.com/docugraph/docugraph/pkg/document"
	"github.com/docugraph/docugraph/pkg/export"
	"github.com/docugraph/docugraph/pkg/extractor"
	"github.com/docugraph/docugraph/pkg/ontology"
	"github.com/docugraph/docugraph/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract a knowledge graph from a document",
	Long: `Extract a knowledge graph from a single document and write the result as JSON.

Supported input formats are plain text, Markdown, and PDF. The result can
additionally be exported as bulk-import CSV files or loaded directly into a
Neo4j instance.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("output", "", "Write the JSON result to this file instead of stdout")
	extractCmd.Flags().Int("chunk-size", 0, "Window size in characters")
	extractCmd.Flags().Int("overlap", -1, "Window overlap as a percentage of chunk size")
	extractCmd.Flags().Int("concurrency", 0, "Maximum concurrent window extractions")
	extractCmd.Flags().String("ontology", "", "Path to an ontology YAML file")

	extractCmd.Flags().String("csv-dir", "", "Also write <name>_nodes.csv and <name>_relationships.csv to this directory")
	extractCmd.Flags().String("csv-format", "neo4j", "CSV dialect (neo4j, neptune)")
	extractCmd.Flags().Bool("neo4j", false, "Load the result into the configured Neo4j instance")

	extractCmd.Flags().String("nlp-provider", "", "NLP provider (openai, anthropic)")
	extractCmd.Flags().String("nlp-model", "", "NLP model")
	extractCmd.Flags().String("nlp-api-key", "", "NLP API key")
	extractCmd.Flags().String("nlp-base-url", "", "NLP base URL")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideExtractFlags(cmd, cfg)

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	doc, err := document.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	log.Info("document loaded",
		"name", doc.Name, "format", doc.Format,
		"words", doc.WordCount(), "chars", doc.CharCount())

	nlpClient, err := newNLPClient(cfg, log)
	if err != nil {
		return err
	}
	defer nlpClient.Close()

	ontologyPrompt := ""
	if cfg.Extraction.OntologyPath != "" {
		onto, err := ontology.Load(cfg.Extraction.OntologyPath)
		if err != nil {
			return fmt.Errorf("failed to load ontology: %w", err)
		}
		ontologyPrompt = onto.PromptText()
	}

	pipelineCfg := docugraphlib.DefaultPipelineConfig()
	if cfg.Extraction.ChunkSize > 0 {
		pipelineCfg.ChunkSize = cfg.Extraction.ChunkSize
	}
	if cfg.Extraction.OverlapPercentage >= 0 {
		pipelineCfg.OverlapPercentage = cfg.Extraction.OverlapPercentage
	}
	if cfg.Extraction.MaxConcurrency > 0 {
		pipelineCfg.MaxConcurrency = cfg.Extraction.MaxConcurrency
	}

	pipeline := docugraphlib.NewPipeline(extractor.New(nlpClient, ontologyPrompt, log), pipelineCfg, log)

	result, err := pipeline.Run(cmd.Context(), doc.Text)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	log.Info("extraction finalized",
		"entities", result.Metadata.TotalUniqueEntities,
		"relationships", result.Metadata.TotalResolved,
		"windows", result.Metadata.WindowsProcessed)

	if err := writeResult(cmd, result); err != nil {
		return err
	}
	if err := writeCSVExports(cmd, doc.Name, result); err != nil {
		return err
	}

	if load, _ := cmd.Flags().GetBool("neo4j"); load {
		loader, err := export.NewNeo4jLoader(
			cfg.Export.Neo4jURI, cfg.Export.Neo4jUser, cfg.Export.Neo4jPassword, cfg.Export.Neo4jDatabase, log)
		if err != nil {
			return fmt.Errorf("failed to connect to Neo4j: %w", err)
		}
		defer loader.Close(context.Background())

		if err := loader.CreateIndices(cmd.Context()); err != nil {
			return fmt.Errorf("failed to create Neo4j indices: %w", err)
		}
		if err := loader.Load(cmd.Context(), result); err != nil {
			return fmt.Errorf("failed to load graph into Neo4j: %w", err)
		}
		log.Info("graph loaded into Neo4j", "uri", cfg.Export.Neo4jURI)
	}

	return nil
}

func writeResult(cmd *cobra.Command, result *types.ExtractionResult) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Println(string(payload))
		return nil
	}
	if err := os.WriteFile(output, payload, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Result written to:", output)
	return nil
}

func writeCSVExports(cmd *cobra.Command, docName string, result *types.ExtractionResult) error {
	csvDir, _ := cmd.Flags().GetString("csv-dir")
	if csvDir == "" {
		return nil
	}

	format, _ := cmd.Flags().GetString("csv-format")
	dialect := export.DialectNeo4j
	switch format {
	case "neo4j":
	case "neptune":
		dialect = export.DialectNeptune
	default:
		return fmt.Errorf("unsupported CSV dialect: %s", format)
	}

	if err := os.MkdirAll(csvDir, 0755); err != nil {
		return fmt.Errorf("failed to create CSV directory: %w", err)
	}

	base := strings.TrimSuffix(docName, filepath.Ext(docName))
	nodesPath := filepath.Join(csvDir, base+"_nodes.csv")
	relsPath := filepath.Join(csvDir, base+"_relationships.csv")

	nodesFile, err := os.Create(nodesPath)
	if err != nil {
		return fmt.Errorf("failed to create nodes CSV: %w", err)
	}
	defer nodesFile.Close()
	if err := export.WriteNodesCSV(nodesFile, dialect, result.Nodes); err != nil {
		return fmt.Errorf("failed to write nodes CSV: %w", err)
	}

	relsFile, err := os.Create(relsPath)
	if err != nil {
		return fmt.Errorf("failed to create relationships CSV: %w", err)
	}
	defer relsFile.Close()
	if err := export.WriteRelationshipsCSV(relsFile, dialect, result.Relationships); err != nil {
		return fmt.Errorf("failed to write relationships CSV: %w", err)
	}

	fmt.Fprintln(os.Stderr, "CSV files written to:", csvDir)
	return nil
}

func overrideExtractFlags(cmd *cobra.Command, cfg *config.Config) {
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
}
