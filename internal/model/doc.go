// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go struct representation of a declarative
// project specification. It is the read-only input to the graph compiler.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - ProjectSpec: The root container for an entire project definition. It
//     aggregates targets, aggregate targets, build configurations and
//     project-wide options parsed from one or more spec files.
//
//   - Target: A named buildable unit (application, framework, library, test
//     bundle, extension, ...) with sources, dependencies, scripts, rules and
//     build settings.
//
//   - AggregateTarget: A target with no sources of its own that exists only
//     to sequence other targets and scripts.
//
//   - Dependency: A single edge declared by a target, pointing at another
//     target, a framework on disk, or an externally packaged binary. Its
//     optional embed/link/code-sign flags stay unresolved here; the
//     dependency resolver owns the type-dependent defaulting rules.
//
// Why a separate model package?
//
// The model is deliberately free of compilation logic. It organizes the raw
// specification into a predictable, strongly-typed structure that the graph
// compiler can traverse, while the spec package owns the format-specific
// (HCL) decoding. The compiler never mutates a ProjectSpec: one immutable
// spec instance may feed any number of compilations.
package model
