package graph

import "github.com/vk/projgraph/internal/model"

// EmbedBucket is the copy destination an embedded dependency is routed into.
type EmbedBucket int

const (
	// BucketNone means the dependency is not embedded.
	BucketNone EmbedBucket = iota
	// BucketPlugIns holds app extensions.
	BucketPlugIns
	// BucketFrameworks holds frameworks and dynamic libraries.
	BucketFrameworks
	// BucketWatch holds watch app content.
	BucketWatch
	// BucketXPC holds XPC service binaries.
	BucketXPC
	// BucketResources is the generic copy-resources fallback.
	BucketResources
)

// String names the bucket for logs and phase titles.
func (b EmbedBucket) String() string {
	switch b {
	case BucketPlugIns:
		return "Embed App Extensions"
	case BucketFrameworks:
		return "Embed Frameworks"
	case BucketWatch:
		return "Embed Watch Content"
	case BucketXPC:
		return "Embed XPC Services"
	case BucketResources:
		return "Copy Resources"
	}
	return "none"
}

// depDecision is one resolved row of the defaulting table: the effective
// link/embed/code-sign booleans plus the embed destination.
type depDecision struct {
	Link     bool
	Embed    bool
	CodeSign bool
	Bucket   EmbedBucket
}

// decideDependency resolves the tri-state flags of a dependency into
// concrete booleans and an embed bucket. It is a pure function of the
// dependency's declaration, the dependency's product type and platform, and
// the dependent's product type, which keeps the defaulting rules auditable
// in isolation from graph construction.
//
// depProduct and depPlatform describe the *dependency's* product; for
// framework and packaged-binary dependencies they are the framework product
// type and the dependent's platform.
func decideDependency(dep *model.Dependency, depProduct model.ProductType, depPlatform model.Platform, dependent model.ProductType) depDecision {
	var d depDecision

	switch dep.Kind {
	case model.DependencyTarget:
		d.Link = defaultTargetLink(depProduct, dependent)
		d.Embed = dependent.ShouldEmbedDependencies() && depProduct.IsEmbeddable()
	case model.DependencyFramework:
		d.Link = true
		d.Embed = false
	case model.DependencyPackaged:
		d.Link = true
		d.Embed = false
	}

	if dep.Link != nil {
		d.Link = *dep.Link
	}
	if dep.Embed != nil {
		d.Embed = *dep.Embed
	}

	if d.Embed {
		d.Bucket = classifyEmbed(dep.Kind, depProduct, depPlatform)
		// Resource bundles are not code-signable; everything else embedded
		// is signed unless the user opts out.
		d.CodeSign = d.Bucket != BucketResources
		if dep.CodeSign != nil {
			d.CodeSign = *dep.CodeSign
		}
	}

	return d
}

// defaultTargetLink implements the linking rule for target dependencies: a
// dynamic product links into anything but a static library, and a static
// product links only into executables.
func defaultTargetLink(depProduct, dependent model.ProductType) bool {
	switch depProduct.DefaultLinkage() {
	case model.LinkageDynamic:
		return dependent != model.ProductStaticLibrary
	case model.LinkageStatic:
		return dependent.IsExecutable()
	}
	return false
}

// classifyEmbed routes an embedded dependency into exactly one bucket, keyed
// by the dependency's own product type and platform. Framework and packaged
// dependencies are framework files and always land in the frameworks bucket.
func classifyEmbed(kind model.DependencyKind, depProduct model.ProductType, depPlatform model.Platform) EmbedBucket {
	if kind != model.DependencyTarget {
		return BucketFrameworks
	}
	switch depProduct {
	case model.ProductAppExtension, model.ProductMessagesExtension:
		return BucketPlugIns
	case model.ProductFramework, model.ProductDynamicLibrary:
		return BucketFrameworks
	case model.ProductWatchApp, model.ProductWatchExtension:
		return BucketWatch
	case model.ProductXPCService:
		return BucketXPC
	}
	if depPlatform == model.PlatformWatchOS && depProduct.IsApp() {
		return BucketWatch
	}
	return BucketResources
}
