package graph

import (
	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/node"
)

// ClassifiedSource is one source file resolved and classified by the source
// resolver.
type ClassifiedSource struct {
	Path    string
	FileRef node.Ref

	// Phase is the build phase kind the file belongs to.
	Phase node.PhaseKind

	// InPhase reports whether the file belongs to any phase at all; files
	// like folder-reference children or excluded files carry false.
	InPhase bool

	CopySpec         *model.CopyFilesSpec
	CompilerFlags    []string
	HeaderVisibility string
}

// SourceResolver is the external collaborator that resolves file-system
// paths into file references and grouping hierarchy. Implementations must
// be idempotent: the same path and tree kind return the same reference on
// repeated calls.
type SourceResolver interface {
	// ClassifySources resolves a target's source specs into classified,
	// phase-tagged file references.
	ClassifySources(target *model.Target) ([]ClassifiedSource, error)

	// FileReference resolves a path into a file reference node, creating it
	// on first use.
	FileReference(path string, tree node.TreeKind) node.Ref

	// ContainedFileReference resolves a standalone settings file into a
	// file reference contained in the project's root group.
	ContainedFileReference(path string) node.Ref

	// RootGroups returns the ordered root group references of the project.
	RootGroups() []node.Ref

	// KnownRegions returns the localization region codes discovered while
	// resolving sources.
	KnownRegions() []string

	// InfoPlistPath scans the target's declared sources for a file literally
	// named "Info.plist" and returns the first match.
	InfoPlistPath(target *model.Target) (string, bool)
}

// ScriptSource is the external collaborator that resolves a build script's
// body, either from inline text or by reading the file at its path. A read
// failure is recoverable and must be reported, not panicked.
type ScriptSource interface {
	Resolve(script *model.BuildScript) (string, error)
}
