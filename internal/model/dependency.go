// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Dependency structure, the raw edge a target declares
// toward another target, a framework on disk, or a packaged binary.
//
// Why pointer-typed flags?
//
// The embed, link and code-sign flags are tri-state: explicitly true,
// explicitly false, or unset. An unset flag means "use the type-dependent
// default", and those defaults depend on both ends of the edge, so they can
// only be resolved by the dependency resolver once the dependent target is
// known. The model stores the user's intent verbatim and never pre-resolves.
package model

// DependencyKind discriminates the three reference forms a dependency can take.
type DependencyKind int

const (
	// DependencyTarget references another target (or aggregate target) of
	// this project by name.
	DependencyTarget DependencyKind = iota
	// DependencyFramework references a framework on disk by path.
	DependencyFramework
	// DependencyPackaged references a prebuilt binary fetched by an external
	// dependency manager, identified by its name.
	DependencyPackaged
)

// String returns the spec-facing name of the kind.
func (k DependencyKind) String() string {
	switch k {
	case DependencyTarget:
		return "target"
	case DependencyFramework:
		return "framework"
	case DependencyPackaged:
		return "packagedBinary"
	}
	return "unknown"
}

// Dependency is a single dependency declaration on a target.
type Dependency struct {
	Kind      DependencyKind
	Reference string // target name, framework path, or packaged binary name

	// Tri-state flags; nil means "resolver decides".
	Embed    *bool
	Link     *bool
	CodeSign *bool

	// RemoveHeaders controls the RemoveHeadersOnCopy attribute when the
	// dependency is embedded into a frameworks destination.
	RemoveHeaders bool

	// Implicit marks a dependency on a target built by another project in
	// the same workspace, matched by product name rather than target name.
	Implicit bool

	// CopyPhase routes the embedded product into a custom copy-files
	// destination instead of the bucket chosen by classification.
	CopyPhase *CopyFilesSpec
}

// DestinationKind enumerates the copy-files destinations a build phase can
// target.
type DestinationKind string

const (
	DestAbsolutePath      DestinationKind = "absolutePath"
	DestProductsDirectory DestinationKind = "productsDirectory"
	DestWrapper           DestinationKind = "wrapper"
	DestExecutables       DestinationKind = "executables"
	DestResources         DestinationKind = "resources"
	DestFrameworks        DestinationKind = "frameworks"
	DestSharedFrameworks  DestinationKind = "sharedFrameworks"
	DestSharedSupport     DestinationKind = "sharedSupport"
	DestPlugins           DestinationKind = "plugins"
)

// CopyFilesSpec names a copy-files destination plus an optional subpath
// below it. Distinct (destination, subpath) pairs yield distinct phases.
type CopyFilesSpec struct {
	Destination DestinationKind
	Subpath     string
}
