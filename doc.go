// Package docugraph reassembles knowledge-graph fragments extracted from
// overlapping document windows into a single coherent graph.
//
// Large documents do not fit in one language-model call, so extraction runs
// per window and every window names its entities with throwaway local
// identifiers. The same real-world entity shows up under different local
// identifiers and different surface spellings across windows. This package
// owns the reassembly: deduplicating entities by type and normalized name,
// assigning stable identifiers, rewiring relationship endpoints onto those
// identifiers, and reporting how much deduplication and resolution happened.
//
// The core workflow is a one-shot Processor:
//
//	processor := docugraph.NewProcessor(nil, logger)
//	for i, result := range windowResults {
//		if err := processor.ProcessWindowResult(i, result); err != nil {
//			return err
//		}
//	}
//	graph, err := processor.Finalize()
//
// For end-to-end runs over raw text, Pipeline wires the chunker, an LLM
// extractor, and the Processor together behind a single Run call.
package docugraph
