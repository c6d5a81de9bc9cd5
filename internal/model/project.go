// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the ProjectSpec structure, the root container for a
// complete project definition, and the project-wide Options block.
package model

// GroupSortPosition controls where groups sort relative to files inside a
// parent group.
type GroupSortPosition string

const (
	GroupsFirst GroupSortPosition = "top"
	GroupsLast  GroupSortPosition = "bottom"
	GroupsMixed GroupSortPosition = "none"
)

// Options holds project-wide compilation options.
type Options struct {
	BundleIDPrefix    string
	GroupSortPosition GroupSortPosition
	DeploymentTargets map[Platform]string

	// TransitivelyLinkDependencies links transitive target dependencies in
	// addition to direct ones.
	TransitivelyLinkDependencies bool

	// PackagedBuildPath is the directory the external dependency manager
	// places prebuilt binaries in, relative to the project root. Platform
	// subdirectories are appended to it.
	PackagedBuildPath string

	// PackagedEmbedScript embeds packaged binaries through the dependency
	// manager's copy script instead of copying them directly.
	PackagedEmbedScript bool
}

// ProjectSpec is the read-only root of a project definition. It is immutable
// for the duration of a compilation.
type ProjectSpec struct {
	Name             string
	Targets          []*Target
	AggregateTargets []*AggregateTarget
	Configs          []*Config
	Options          Options
	ConfigFiles      map[string]string // config name -> external settings file
	Attributes       map[string]any

	// FileGroups are the root source groups the file resolver builds the
	// group hierarchy from.
	FileGroups []string
}

// Target returns the named native target, or nil.
func (p *ProjectSpec) Target(name string) *Target {
	for _, t := range p.Targets {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// AggregateTarget returns the named aggregate target, or nil.
func (p *ProjectSpec) AggregateTarget(name string) *AggregateTarget {
	for _, t := range p.AggregateTargets {
		if t.Name == name {
			return t
		}
	}
	return nil
}
