// Package nexusflow is an embeddable dataflow pipeline runtime. A host
// program declares a directed acyclic graph of processing modules,
// either programmatically through PipelineBuilder or from a declarative
// YAML document, and the runtime turns it into a running concurrent
// computation: one worker goroutine per module, bounded blocking
// channels on every edge, and reference-counted copy-on-write messages
// flowing between them.
//
// The Pipeline owns everything transitively and drives the lifecycle:
// Init materializes actors and channels and initializes modules in
// topological order, Start launches the workers, Stop shuts the
// channels down and joins the workers, DeInit releases module resources
// in reverse topological order.
package nexusflow
