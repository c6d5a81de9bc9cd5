package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/testutil"
)

var allProductTypes = []model.ProductType{
	model.ProductApplication, model.ProductFramework, model.ProductStaticLibrary,
	model.ProductDynamicLibrary, model.ProductBundle, model.ProductUnitTestBundle,
	model.ProductUITestBundle, model.ProductAppExtension, model.ProductMessagesExtension,
	model.ProductXPCService, model.ProductWatchApp, model.ProductWatchExtension,
	model.ProductCommandLineTool,
}

// Every (dependency product, dependent product) pair must route to exactly
// one bucket or to "not embedded"; no pair may be left unhandled.
func TestDecideDependency_ClassificationComplete(t *testing.T) {
	t.Parallel()

	for _, depProduct := range allProductTypes {
		for _, dependent := range allProductTypes {
			dep := testutil.TargetDep("X")
			d := decideDependency(dep, depProduct, model.PlatformIOS, dependent)
			if d.Embed {
				assert.NotEqual(t, BucketNone, d.Bucket,
					"embedded %s into %s must pick a bucket", depProduct, dependent)
			} else {
				assert.Equal(t, BucketNone, d.Bucket,
					"unembedded %s into %s must not pick a bucket", depProduct, dependent)
			}
		}
	}
}

func TestDecideDependency_LinkDefaults(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		depProduct model.ProductType
		dependent  model.ProductType
		expectLink bool
	}{
		{"dynamic framework into app", model.ProductFramework, model.ProductApplication, true},
		{"dynamic framework into framework", model.ProductFramework, model.ProductFramework, true},
		{"dynamic framework into static library", model.ProductFramework, model.ProductStaticLibrary, false},
		{"static library into app", model.ProductStaticLibrary, model.ProductApplication, true},
		{"static library into test bundle", model.ProductStaticLibrary, model.ProductUnitTestBundle, true},
		{"static library into framework", model.ProductStaticLibrary, model.ProductFramework, false},
		{"bundle into app", model.ProductBundle, model.ProductApplication, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := decideDependency(testutil.TargetDep("X"), tc.depProduct, model.PlatformIOS, tc.dependent)
			assert.Equal(t, tc.expectLink, d.Link)
		})
	}
}

func TestDecideDependency_EmbedBuckets(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		depProduct model.ProductType
		platform   model.Platform
		expect     EmbedBucket
	}{
		{"app extension", model.ProductAppExtension, model.PlatformIOS, BucketPlugIns},
		{"messages extension", model.ProductMessagesExtension, model.PlatformIOS, BucketPlugIns},
		{"framework", model.ProductFramework, model.PlatformIOS, BucketFrameworks},
		{"dynamic library", model.ProductDynamicLibrary, model.PlatformMacOS, BucketFrameworks},
		{"watch app", model.ProductWatchApp, model.PlatformWatchOS, BucketWatch},
		{"watch extension", model.ProductWatchExtension, model.PlatformWatchOS, BucketWatch},
		{"xpc service", model.ProductXPCService, model.PlatformMacOS, BucketXPC},
		{"resource bundle", model.ProductBundle, model.PlatformIOS, BucketResources},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// Force embedding to observe the classification.
			dep := testutil.TargetDep("X")
			dep.Embed = testutil.BoolPtr(true)
			d := decideDependency(dep, tc.depProduct, tc.platform, model.ProductApplication)
			assert.Equal(t, tc.expect, d.Bucket)
		})
	}
}

func TestDecideDependency_CodeSignDefaults(t *testing.T) {
	t.Parallel()

	embed := testutil.TargetDep("X")
	embed.Embed = testutil.BoolPtr(true)

	// Frameworks are signed on copy by default.
	d := decideDependency(embed, model.ProductFramework, model.PlatformIOS, model.ProductApplication)
	assert.True(t, d.CodeSign)

	// Resource bundles are not signable.
	d = decideDependency(embed, model.ProductBundle, model.PlatformIOS, model.ProductApplication)
	assert.False(t, d.CodeSign)

	// Explicit override wins.
	noSign := testutil.TargetDep("X")
	noSign.Embed = testutil.BoolPtr(true)
	noSign.CodeSign = testutil.BoolPtr(false)
	d = decideDependency(noSign, model.ProductFramework, model.PlatformIOS, model.ProductApplication)
	assert.False(t, d.CodeSign)
}

func TestDecideDependency_ExplicitFlagsOverrideDefaults(t *testing.T) {
	t.Parallel()

	dep := testutil.FrameworkDep("Vendor/Lib.framework")
	dep.Link = testutil.BoolPtr(false)
	dep.Embed = testutil.BoolPtr(true)

	d := decideDependency(dep, model.ProductFramework, model.PlatformIOS, model.ProductApplication)
	assert.False(t, d.Link)
	assert.True(t, d.Embed)
	assert.Equal(t, BucketFrameworks, d.Bucket)
}
