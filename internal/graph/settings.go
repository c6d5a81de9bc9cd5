package graph

import (
	"strings"

	"github.com/vk/projgraph/internal/model"
)

// Build-setting keys the synthesizer reads or writes.
const (
	settingInfoPlist            = "INFOPLIST_FILE"
	settingBundleID             = "PRODUCT_BUNDLE_IDENTIFIER"
	settingTestTargetName       = "TEST_TARGET_NAME"
	settingOtherLDFlags         = "OTHER_LDFLAGS"
	settingFrameworkSearchPaths = "FRAMEWORK_SEARCH_PATHS"
	settingInteropHeaderName    = "SWIFT_OBJC_INTERFACE_HEADER_NAME"
	settingCodeSignStyle        = "CODE_SIGN_STYLE"
	settingDevelopmentTeam      = "DEVELOPMENT_TEAM"
)

// objcLinkerFlag is appended to dependents of force-loaded static libraries.
const objcLinkerFlag = "-ObjC"

// targetInference carries the per-target facts the compiler gathered during
// dependency resolution that feed inferred settings.
type targetInference struct {
	// ObjCLinking appends -ObjC to OTHER_LDFLAGS.
	ObjCLinking bool

	// PackagedSearchPaths are prepended before FrameworkSearchPaths when
	// merging into FRAMEWORK_SEARCH_PATHS.
	PackagedSearchPaths  []string
	FrameworkSearchPaths []string

	// TestTargetName is the inferred application target of a UI test.
	TestTargetName string
}

// infoPlistScan memoizes the lazy Info.plist source scan across the
// configurations of one target. The scan runs at most once; an explicit
// setting found for an earlier configuration also stops it.
type infoPlistScan struct {
	done  bool
	path  string
	found bool
}

// synthesizer flattens configuration-, target- and inferred settings into a
// single map per (target, configuration) pair.
type synthesizer struct {
	spec    *model.ProjectSpec
	sources SourceResolver
}

// settingsForConfig builds the flat settings map for one (target, config)
// pair. Inferred values are applied in fixed order, each only when the user
// did not set the key explicitly; the linker-flag and search-path merges
// append with list/scalar/absent type preservation.
func (s *synthesizer) settingsForConfig(target *model.Target, cfg *model.Config, inf *targetInference, scan *infoPlistScan) map[string]any {
	settings := map[string]any{}
	for k, v := range cfg.Settings {
		settings[k] = copyValue(v)
	}
	for k, v := range target.Settings.ForConfig(cfg.Name) {
		settings[k] = v
	}

	// (a) product info descriptor, from the first source literally named
	// Info.plist. An explicit setting on any configuration ends the search.
	if _, ok := settings[settingInfoPlist]; ok {
		scan.done = true
	} else {
		if !scan.done {
			scan.done = true
			scan.path, scan.found = s.sources.InfoPlistPath(target)
		}
		if scan.found {
			settings[settingInfoPlist] = scan.path
		}
	}

	// (b) bundle identifier from the sanitized target name.
	if _, ok := settings[settingBundleID]; !ok && s.spec.Options.BundleIDPrefix != "" {
		settings[settingBundleID] = s.spec.Options.BundleIDPrefix + "." + sanitizeBundleID(target.Name)
	}

	// (c) UI tests point at their application target.
	if _, ok := settings[settingTestTargetName]; !ok && target.Type == model.ProductUITestBundle && inf.TestTargetName != "" {
		settings[settingTestTargetName] = inf.TestTargetName
	}

	// (d) forced ObjC linking propagated up from static library dependencies.
	if inf.ObjCLinking {
		appendSetting(settings, settingOtherLDFlags, objcLinkerFlag)
	}

	// (e) framework search paths, packaged-binary paths first.
	paths := append(append([]string{}, inf.PackagedSearchPaths...), inf.FrameworkSearchPaths...)
	if len(paths) > 0 {
		appendSetting(settings, settingFrameworkSearchPaths, paths...)
	}

	return settings
}

// appendSetting merges values into a possibly present setting while
// preserving its shape: a list value is appended in place, a scalar value
// becomes an ordered two-part list starting with the original, and an
// absent value is seeded with $(inherited).
func appendSetting(settings map[string]any, key string, values ...string) {
	existing, ok := settings[key]
	if !ok {
		settings[key] = append([]string{"$(inherited)"}, values...)
		return
	}
	switch v := existing.(type) {
	case []string:
		settings[key] = append(v, values...)
	case string:
		settings[key] = append([]string{v}, values...)
	default:
		settings[key] = append([]string{"$(inherited)"}, values...)
	}
}

// sanitizeBundleID turns a target name into a bundle identifier fragment:
// underscores become hyphens and anything outside letters, digits, hyphen
// and dot is dropped.
func sanitizeBundleID(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '_':
			b.WriteRune('-')
		case r == '-' || r == '.',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mirroredAttributes maps target attributes onto the build setting they
// mirror. An attribute is projected only when every configuration resolves
// the setting to the exact same non-absent scalar value.
var mirroredAttributes = []struct {
	Attribute string
	Setting   string
}{
	{"ProvisioningStyle", settingCodeSignStyle},
	{"DevelopmentTeam", settingDevelopmentTeam},
}

// projectedAttributes computes the mirrored target attributes from the
// per-configuration settings maps. Disagreement across configurations is a
// soft inconsistency: the attribute is silently omitted.
func projectedAttributes(perConfig []map[string]any) map[string]any {
	attrs := map[string]any{}
	if len(perConfig) == 0 {
		return attrs
	}
	for _, m := range mirroredAttributes {
		value, ok := perConfig[0][m.Setting].(string)
		if !ok {
			continue
		}
		agree := true
		for _, settings := range perConfig[1:] {
			other, ok := settings[m.Setting].(string)
			if !ok || other != value {
				agree = false
				break
			}
		}
		if agree {
			attrs[m.Attribute] = value
		}
	}
	return attrs
}

// interopHeaderName returns the resolved interop header setting for a
// config, if any.
func interopHeaderName(settings map[string]any) string {
	name, _ := settings[settingInteropHeaderName].(string)
	return name
}

func copyValue(v any) any {
	if list, ok := v.([]string); ok {
		return append([]string(nil), list...)
	}
	return v
}
