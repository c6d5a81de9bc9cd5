// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Target structure, the atomic buildable unit of a
// project specification, together with its source, build-rule and legacy
// build-tool sub-structures.
package model

// Target is the format-agnostic representation of a `target` block.
type Target struct {
	Name        string
	Type        ProductType
	Platform    Platform
	ProductName string // defaults to Name when empty

	Dependencies []*Dependency
	Sources      []*SourceSpec

	PreBuildScripts  []*BuildScript
	PostBuildScripts []*BuildScript
	BuildRules       []*BuildRule

	Settings    *Settings
	ConfigFiles map[string]string // config name -> external settings file path
	Attributes  map[string]any

	// RequiresObjCLinking marks a static library whose symbols must be
	// force-loaded by dependents (-ObjC). nil applies the product default.
	RequiresObjCLinking *bool

	// Legacy switches the target to an external build tool invocation
	// instead of compiled sources.
	Legacy *LegacyTool
}

// ShouldEmbedDependencies reports whether this target embeds its embeddable
// dependencies by default.
func (t *Target) ShouldEmbedDependencies() bool {
	return t.Type.ShouldEmbedDependencies()
}

// DefaultsToObjCLinking resolves the RequiresObjCLinking tri-state: explicit
// value if set, otherwise true only for static libraries.
func (t *Target) DefaultsToObjCLinking() bool {
	if t.RequiresObjCLinking != nil {
		return *t.RequiresObjCLinking
	}
	return t.Type == ProductStaticLibrary
}

// ProductFileName returns the file name of the built product.
func (t *Target) ProductFileName() string {
	name := t.ProductName
	if name == "" {
		name = t.Name
	}
	ext := t.Type.FileExtension()
	if ext == "" {
		return name
	}
	if t.Type == ProductStaticLibrary {
		return "lib" + name + "." + ext
	}
	return name + "." + ext
}

// SourceSpec describes one source file or directory declared on a target.
type SourceSpec struct {
	Path          string
	CompilerFlags []string

	// PhaseOverride forces the files of this spec into a specific phase
	// kind instead of the extension-based classification.
	PhaseOverride string

	// CopySpec places the files into a copy-files phase. Only meaningful
	// when the classification (or override) is copy-files.
	CopySpec *CopyFilesSpec

	// HeaderVisibility applies to header files: "public", "private" or ""
	// for project-visible.
	HeaderVisibility string
}

// BuildRule is a custom per-target rule mapping a file pattern or type to a
// compiler or script.
type BuildRule struct {
	Name                     string
	FilePattern              string // mutually exclusive with FileType
	FileType                 string
	CompilerSpec             string // empty means a script rule
	Script                   string
	OutputFiles              []string
	OutputFilesCompilerFlags []string
	RunOncePerArchitecture   *bool
}

// LegacyTool describes an external build tool standing in for compiled
// sources.
type LegacyTool struct {
	ToolPath         string
	Arguments        string
	WorkingDirectory string
	PassSettings     bool
}
