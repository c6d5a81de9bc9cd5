// Package graph is the project-graph compiler. It turns an immutable
// model.ProjectSpec into a fully cross-referenced graph of typed nodes ready
// for serialization into the on-disk project format.
//
// # Structure
//
// The compiler is built from five cooperating parts:
//
//   - Store: assigns stable node identities and owns every compiled node;
//     the only component that mutates the output graph.
//   - resolver: computes each target's direct, transitive-embeddable and
//     packaged dependency sets and classifies linkage and embedding.
//   - phase assembler: builds each target's ordered list of build phases
//     from its resolved dependencies and classified sources.
//   - settings synthesizer: flattens configuration-, target- and inferred
//     settings into one map per (target, configuration) pair.
//   - orderer: sorts groups and targets into a deterministic, locale-aware
//     order so that repeated compilations produce byte-identical output.
//
// # Lifecycle
//
// A Compiler instance runs exactly once. Compile performs a single
// synchronous pass over the spec's targets and aggregate targets, then
// orders the graph and seals the store. Calling Compile a second time on
// the same instance is a programming error and panics.
package graph
