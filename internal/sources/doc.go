// Package sources resolves file-system paths into file references, groups
// and build-phase classifications for the graph compiler.
//
// The resolver is the compiler's view of the project's source tree. It walks
// each target's declared source paths, classifies every file into a build
// phase by extension (or by an explicit override on the source spec), and
// interns file references so the same path always resolves to the same node.
// All file-system access goes through afero, so tests run against an
// in-memory tree.
package sources
