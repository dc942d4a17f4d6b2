package docugraph

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/docugraph/docugraph/pkg/config"
	"github.com/docugraph/docugraph/pkg/document"
	"github.com/docugraph/docugraph/pkg/ontology"
)

var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "Work with extraction ontologies",
}

var ontologyBuildCmd = &cobra.Command{
	Use:   "build <sample-file>",
	Short: "Infer an ontology from a sample document",
	Long: `Infer an extraction ontology from a representative sample document.

The language model proposes entity and relationship types for the document's
domain. Review and edit the generated YAML before using it for extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runOntologyBuild,
}

func init() {
	rootCmd.AddCommand(ontologyCmd)
	ontologyCmd.AddCommand(ontologyBuildCmd)

	ontologyBuildCmd.Flags().String("domain", "", "A short description of the document domain")
	ontologyBuildCmd.Flags().String("output", "", "Write the ontology YAML to this file instead of stdout")
	ontologyBuildCmd.Flags().Int("sample-chars", 4000, "Maximum number of sample characters sent to the model")
}

func runOntologyBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	doc, err := document.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load sample document: %w", err)
	}

	sample := doc.Text
	if limit, _ := cmd.Flags().GetInt("sample-chars"); limit > 0 && len(sample) > limit {
		sample = sample[:limit]
	}

	nlpClient, err := newNLPClient(cfg, log)
	if err != nil {
		return err
	}
	defer nlpClient.Close()

	domain, _ := cmd.Flags().GetString("domain")
	builder := ontology.NewBuilder(nlpClient, log)
	onto, err := builder.BuildFromSample(cmd.Context(), sample, domain)
	if err != nil {
		return fmt.Errorf("failed to build ontology: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if err := onto.Save(output); err != nil {
			return fmt.Errorf("failed to save ontology: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Ontology written to:", output)
		return nil
	}

	payload, err := yaml.Marshal(onto)
	if err != nil {
		return fmt.Errorf("failed to encode ontology: %w", err)
	}
	fmt.Print(string(payload))
	return nil
}
