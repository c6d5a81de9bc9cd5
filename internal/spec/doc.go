// Package spec loads declarative project specifications from HCL files into
// the format-agnostic model.
//
// A spec is one `project` block, optionally split across several .hcl files
// in a directory; targets, aggregate targets and configs from all files
// merge into a single model.ProjectSpec. Decoding is two-stage in the usual
// way: gohcl extracts the block structure, then attribute expressions are
// evaluated into settings values, preserving the scalar-vs-list distinction
// the settings synthesizer depends on.
package spec
