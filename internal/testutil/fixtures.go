// Package testutil provides small fixture builders for compiler tests.
package testutil

import "github.com/vk/projgraph/internal/model"

// BoolPtr returns a pointer to b, for tri-state dependency flags.
func BoolPtr(b bool) *bool { return &b }

// Target builds a minimal target fixture.
func Target(name string, productType model.ProductType, deps ...*model.Dependency) *model.Target {
	return &model.Target{
		Name:         name,
		Type:         productType,
		Platform:     model.PlatformIOS,
		Dependencies: deps,
		Settings:     model.NewSettings(),
	}
}

// TargetDep builds a target-kind dependency.
func TargetDep(reference string) *model.Dependency {
	return &model.Dependency{Kind: model.DependencyTarget, Reference: reference, RemoveHeaders: true}
}

// FrameworkDep builds a framework-kind dependency.
func FrameworkDep(path string) *model.Dependency {
	return &model.Dependency{Kind: model.DependencyFramework, Reference: path, RemoveHeaders: true}
}

// PackagedDep builds a packaged-binary dependency.
func PackagedDep(name string) *model.Dependency {
	return &model.Dependency{Kind: model.DependencyPackaged, Reference: name, RemoveHeaders: true}
}

// Spec builds a project spec with a default Debug/Release config pair.
func Spec(name string, targets ...*model.Target) *model.ProjectSpec {
	return &model.ProjectSpec{
		Name:    name,
		Targets: targets,
		Configs: []*model.Config{
			{Name: "Debug", Type: model.ConfigDebug, Settings: map[string]any{}},
			{Name: "Release", Type: model.ConfigRelease, Settings: map[string]any{}},
		},
	}
}
