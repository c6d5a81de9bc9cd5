package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/testutil"
)

func newSynthesizer(spec *model.ProjectSpec) (*synthesizer, *stubSources) {
	sources := newStubSources(NewStore())
	return &synthesizer{spec: spec, sources: sources}, sources
}

func TestAppendSetting_TypePreservation(t *testing.T) {
	t.Parallel()

	// Absent: seeded with $(inherited).
	settings := map[string]any{}
	appendSetting(settings, "OTHER_LDFLAGS", "-ObjC")
	assert.Equal(t, []string{"$(inherited)", "-ObjC"}, settings["OTHER_LDFLAGS"])

	// Scalar: becomes a two-part list starting with the original.
	settings = map[string]any{"OTHER_LDFLAGS": "-lz"}
	appendSetting(settings, "OTHER_LDFLAGS", "-ObjC")
	assert.Equal(t, []string{"-lz", "-ObjC"}, settings["OTHER_LDFLAGS"])

	// List: appended in place.
	settings = map[string]any{"OTHER_LDFLAGS": []string{"-lz", "-lc++"}}
	appendSetting(settings, "OTHER_LDFLAGS", "-ObjC")
	assert.Equal(t, []string{"-lz", "-lc++", "-ObjC"}, settings["OTHER_LDFLAGS"])
}

func TestSanitizeBundleID(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{"App", "App"},
		{"My_App", "My-App"},
		{"My App!", "MyApp"},
		{"app.v2", "app.v2"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, sanitizeBundleID(tc.in), tc.in)
	}
}

func TestSettingsForConfig_InfoPlistInference(t *testing.T) {
	t.Parallel()

	// Arrange: the source resolver knows an Info.plist for App.
	app := testutil.Target("App", model.ProductApplication)
	spec := testutil.Spec("P", app)
	syn, sources := newSynthesizer(spec)
	sources.infoPlists["App"] = "App/Info.plist"

	// Act
	scan := &infoPlistScan{}
	settings := syn.settingsForConfig(app, spec.Configs[0], &targetInference{}, scan)

	// Assert: inferred from the first source named Info.plist, memoized.
	assert.Equal(t, "App/Info.plist", settings["INFOPLIST_FILE"])
	assert.True(t, scan.done)

	// Second configuration reuses the memoized scan result.
	settings = syn.settingsForConfig(app, spec.Configs[1], &targetInference{}, scan)
	assert.Equal(t, "App/Info.plist", settings["INFOPLIST_FILE"])
}

func TestSettingsForConfig_ExplicitInfoPlistStopsScan(t *testing.T) {
	t.Parallel()

	app := testutil.Target("App", model.ProductApplication)
	app.Settings.Base["INFOPLIST_FILE"] = "Custom/Info.plist"
	spec := testutil.Spec("P", app)
	syn, sources := newSynthesizer(spec)
	sources.infoPlists["App"] = "App/Info.plist"

	scan := &infoPlistScan{}
	settings := syn.settingsForConfig(app, spec.Configs[0], &targetInference{}, scan)

	assert.Equal(t, "Custom/Info.plist", settings["INFOPLIST_FILE"])
	assert.True(t, scan.done)
	assert.False(t, scan.found, "explicit setting must end the search without scanning")
}

func TestSettingsForConfig_BundleIdentifier(t *testing.T) {
	t.Parallel()

	app := testutil.Target("My_App", model.ProductApplication)
	spec := testutil.Spec("P", app)
	spec.Options.BundleIDPrefix = "com.example"
	syn, _ := newSynthesizer(spec)

	settings := syn.settingsForConfig(app, spec.Configs[0], &targetInference{}, &infoPlistScan{})

	assert.Equal(t, "com.example.My-App", settings["PRODUCT_BUNDLE_IDENTIFIER"])
}

func TestSettingsForConfig_UITestTargetName(t *testing.T) {
	t.Parallel()

	uiTests := testutil.Target("AppUITests", model.ProductUITestBundle)
	spec := testutil.Spec("P", uiTests)
	syn, _ := newSynthesizer(spec)

	inf := &targetInference{TestTargetName: "App"}
	settings := syn.settingsForConfig(uiTests, spec.Configs[0], inf, &infoPlistScan{})

	assert.Equal(t, "App", settings["TEST_TARGET_NAME"])
}

func TestSettingsForConfig_ObjCLinking(t *testing.T) {
	t.Parallel()

	app := testutil.Target("App", model.ProductApplication)
	spec := testutil.Spec("P", app)
	syn, _ := newSynthesizer(spec)

	inf := &targetInference{ObjCLinking: true}
	settings := syn.settingsForConfig(app, spec.Configs[0], inf, &infoPlistScan{})

	assert.Equal(t, []string{"$(inherited)", "-ObjC"}, settings["OTHER_LDFLAGS"])
}

func TestSettingsForConfig_SearchPathsPackagedFirst(t *testing.T) {
	t.Parallel()

	app := testutil.Target("App", model.ProductApplication)
	spec := testutil.Spec("P", app)
	syn, _ := newSynthesizer(spec)

	inf := &targetInference{
		PackagedSearchPaths:  []string{"$(PROJECT_DIR)/Packages/Build/iOS"},
		FrameworkSearchPaths: []string{"Vendor"},
	}
	settings := syn.settingsForConfig(app, spec.Configs[0], inf, &infoPlistScan{})

	assert.Equal(t, []string{
		"$(inherited)",
		"$(PROJECT_DIR)/Packages/Build/iOS",
		"Vendor",
	}, settings["FRAMEWORK_SEARCH_PATHS"])
}

func TestSettingsForConfig_PerConfigOverridesBase(t *testing.T) {
	t.Parallel()

	app := testutil.Target("App", model.ProductApplication)
	app.Settings.Base["SWIFT_VERSION"] = "5.0"
	app.Settings.Configs["Release"] = map[string]any{"SWIFT_VERSION": "5.9"}
	spec := testutil.Spec("P", app)
	spec.Configs[0].Settings["ENABLE_TESTABILITY"] = "YES"
	syn, _ := newSynthesizer(spec)

	scan := &infoPlistScan{}
	debug := syn.settingsForConfig(app, spec.Configs[0], &targetInference{}, scan)
	release := syn.settingsForConfig(app, spec.Configs[1], &targetInference{}, scan)

	assert.Equal(t, "5.0", debug["SWIFT_VERSION"])
	assert.Equal(t, "YES", debug["ENABLE_TESTABILITY"])
	assert.Equal(t, "5.9", release["SWIFT_VERSION"])
	_, ok := release["ENABLE_TESTABILITY"]
	assert.False(t, ok)
}

func TestProjectedAttributes(t *testing.T) {
	t.Parallel()

	// Agreement across configurations projects the attribute.
	perConfig := []map[string]any{
		{"CODE_SIGN_STYLE": "Manual", "DEVELOPMENT_TEAM": "ABCDEF"},
		{"CODE_SIGN_STYLE": "Manual", "DEVELOPMENT_TEAM": "ABCDEF"},
	}
	attrs := projectedAttributes(perConfig)
	assert.Equal(t, "Manual", attrs["ProvisioningStyle"])
	assert.Equal(t, "ABCDEF", attrs["DevelopmentTeam"])

	// Disagreement silently omits it.
	perConfig[1]["DEVELOPMENT_TEAM"] = "OTHER"
	attrs = projectedAttributes(perConfig)
	assert.Equal(t, "Manual", attrs["ProvisioningStyle"])
	_, ok := attrs["DevelopmentTeam"]
	assert.False(t, ok)

	// Absence in one configuration omits it too.
	delete(perConfig[0], "CODE_SIGN_STYLE")
	attrs = projectedAttributes(perConfig)
	require.Empty(t, attrs["ProvisioningStyle"])
}
