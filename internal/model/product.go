// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the product-type and platform vocabulary shared by the
// whole compiler. Nearly every defaulting rule in the dependency resolver is
// keyed by these two enumerations, so their behavior methods live here rather
// than being re-derived at call sites.
package model

// Platform identifies the operating system a target is built for.
type Platform string

const (
	PlatformIOS     Platform = "iOS"
	PlatformMacOS   Platform = "macOS"
	PlatformTVOS    Platform = "tvOS"
	PlatformWatchOS Platform = "watchOS"
)

// ProductType identifies what kind of artifact a target produces.
type ProductType string

const (
	ProductApplication       ProductType = "application"
	ProductFramework         ProductType = "framework"
	ProductStaticLibrary     ProductType = "staticLibrary"
	ProductDynamicLibrary    ProductType = "dynamicLibrary"
	ProductBundle            ProductType = "bundle"
	ProductUnitTestBundle    ProductType = "unitTestBundle"
	ProductUITestBundle      ProductType = "uiTestBundle"
	ProductAppExtension      ProductType = "appExtension"
	ProductMessagesExtension ProductType = "messagesExtension"
	ProductXPCService        ProductType = "xpcService"
	ProductWatchApp          ProductType = "watchApp"
	ProductWatchExtension    ProductType = "watchExtension"
	ProductCommandLineTool   ProductType = "commandLineTool"
)

// Linkage describes how a product is bound into a dependent at link time.
type Linkage int

const (
	LinkageNone Linkage = iota
	LinkageStatic
	LinkageDynamic
)

// DefaultLinkage returns how products of this type are linked when the
// declaring dependency carries no explicit override.
func (p ProductType) DefaultLinkage() Linkage {
	switch p {
	case ProductFramework, ProductDynamicLibrary:
		return LinkageDynamic
	case ProductStaticLibrary:
		return LinkageStatic
	default:
		return LinkageNone
	}
}

// IsApp reports whether the product is an application-like executable
// package (including watch apps).
func (p ProductType) IsApp() bool {
	switch p {
	case ProductApplication, ProductWatchApp:
		return true
	}
	return false
}

// IsTest reports whether the product is a test bundle.
func (p ProductType) IsTest() bool {
	return p == ProductUnitTestBundle || p == ProductUITestBundle
}

// IsExecutable reports whether the product contains a linked executable
// image, which is what the static-linkage rule cares about.
func (p ProductType) IsExecutable() bool {
	switch p {
	case ProductApplication, ProductWatchApp, ProductCommandLineTool,
		ProductUnitTestBundle, ProductUITestBundle,
		ProductAppExtension, ProductMessagesExtension,
		ProductWatchExtension, ProductXPCService:
		return true
	}
	return false
}

// IsEmbeddable reports whether a product of this type can be copied into a
// dependent's package at all.
func (p ProductType) IsEmbeddable() bool {
	switch p {
	case ProductFramework, ProductDynamicLibrary, ProductBundle,
		ProductAppExtension, ProductMessagesExtension,
		ProductWatchApp, ProductWatchExtension, ProductXPCService:
		return true
	}
	return false
}

// ShouldEmbedDependencies reports whether targets of this product type embed
// their embeddable dependencies by default. Apps and test bundles do; their
// package is the final destination of everything they depend on.
func (p ProductType) ShouldEmbedDependencies() bool {
	return p.IsApp() || p.IsTest()
}

// FileExtension returns the on-disk extension of the built product.
func (p ProductType) FileExtension() string {
	switch p {
	case ProductApplication, ProductWatchApp:
		return "app"
	case ProductFramework:
		return "framework"
	case ProductStaticLibrary:
		return "a"
	case ProductDynamicLibrary:
		return "dylib"
	case ProductBundle:
		return "bundle"
	case ProductUnitTestBundle, ProductUITestBundle:
		return "xctest"
	case ProductAppExtension, ProductMessagesExtension, ProductWatchExtension:
		return "appex"
	case ProductXPCService:
		return "xpc"
	case ProductCommandLineTool:
		return ""
	}
	return ""
}
