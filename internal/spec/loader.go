package spec

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/fsutil"
	"github.com/vk/projgraph/internal/model"
)

// Loader parses .hcl spec files into a model.ProjectSpec.
type Loader struct {
	fs afero.Fs
}

// NewLoader returns a loader over the given file system.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load reads the spec file or directory at specPath and merges all project
// blocks found into a single ProjectSpec. Exactly one project name must be
// declared.
func (l *Loader) Load(ctx context.Context, specPath string) (*model.ProjectSpec, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("loading project spec", "path", specPath)

	files, err := fsutil.FindFilesByExtension(l.fs, specPath, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find spec files in %s: %w", specPath, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl spec files found in %s", specPath)
	}

	parser := hclparse.NewParser()
	var spec *model.ProjectSpec
	for _, file := range files {
		src, err := afero.ReadFile(l.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec file %s: %w", file, err)
		}
		hclFile, diags := parser.ParseHCL(src, file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse spec file %s: %w", file, diags)
		}

		var parsed hclSpecFile
		diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode spec file %s: %w", file, diags)
		}

		for _, p := range parsed.Projects {
			if spec == nil {
				spec = &model.ProjectSpec{
					Name:        p.Name,
					ConfigFiles: map[string]string{},
					Attributes:  map[string]any{},
				}
			} else if spec.Name != p.Name {
				return nil, fmt.Errorf("spec declares two project names: %q and %q", spec.Name, p.Name)
			}
			if err := mergeProject(spec, p); err != nil {
				return nil, fmt.Errorf("in spec file %s: %w", file, err)
			}
		}
	}
	if spec == nil {
		return nil, fmt.Errorf("no project block found in %s", specPath)
	}

	logger.Debug("project spec loaded",
		"project", spec.Name,
		"targets", len(spec.Targets),
		"aggregate_targets", len(spec.AggregateTargets),
		"configs", len(spec.Configs))
	return spec, nil
}

// mergeProject folds one decoded project block into the accumulated spec.
func mergeProject(spec *model.ProjectSpec, p *hclProject) error {
	if p.Options != nil {
		spec.Options = model.Options{
			BundleIDPrefix:               p.Options.BundleIDPrefix,
			GroupSortPosition:            model.GroupSortPosition(p.Options.GroupSortPosition),
			TransitivelyLinkDependencies: p.Options.TransitivelyLink,
			PackagedBuildPath:            p.Options.PackagedBuildPath,
			PackagedEmbedScript:          p.Options.PackagedEmbedScript,
		}
	}
	if p.ConfigFiles != nil {
		files, err := decodeStringMap(p.ConfigFiles)
		if err != nil {
			return fmt.Errorf("project config_files: %w", err)
		}
		for k, v := range files {
			spec.ConfigFiles[k] = v
		}
	}
	spec.FileGroups = append(spec.FileGroups, p.FileGroups...)

	for _, cfg := range p.Configs {
		settings, err := decodeSettingsAttr(cfg.Settings)
		if err != nil {
			return fmt.Errorf("config %q: %w", cfg.Name, err)
		}
		spec.Configs = append(spec.Configs, &model.Config{
			Name:     cfg.Name,
			Type:     model.ConfigType(cfg.Type),
			Settings: settings,
		})
	}
	for _, t := range p.Targets {
		target, err := buildTarget(t)
		if err != nil {
			return fmt.Errorf("target %q: %w", t.Name, err)
		}
		spec.Targets = append(spec.Targets, target)
	}
	for _, a := range p.Aggregates {
		aggregate, err := buildAggregate(a)
		if err != nil {
			return fmt.Errorf("aggregate_target %q: %w", a.Name, err)
		}
		spec.AggregateTargets = append(spec.AggregateTargets, aggregate)
	}
	return nil
}

// buildTarget translates one decoded target block.
func buildTarget(t *hclTarget) (*model.Target, error) {
	target := &model.Target{
		Name:                t.Name,
		Type:                model.ProductType(t.Type),
		Platform:            model.Platform(t.Platform),
		ProductName:         t.ProductName,
		RequiresObjCLinking: t.RequiresObjCLinking,
	}

	for _, s := range t.Sources {
		target.Sources = append(target.Sources, &model.SourceSpec{Path: s})
	}
	for _, s := range t.SourceSpecs {
		target.Sources = append(target.Sources, &model.SourceSpec{
			Path:             s.Path,
			CompilerFlags:    s.CompilerFlags,
			PhaseOverride:    s.BuildPhase,
			HeaderVisibility: s.HeaderVisibility,
			CopySpec:         buildCopySpec(s.Copy),
		})
	}

	for _, d := range t.Dependencies {
		dep, err := buildDependency(d)
		if err != nil {
			return nil, err
		}
		target.Dependencies = append(target.Dependencies, dep)
	}

	settings, err := buildSettings(t.Settings)
	if err != nil {
		return nil, err
	}
	target.Settings = settings

	if t.ConfigFiles != nil {
		target.ConfigFiles, err = decodeStringMap(t.ConfigFiles)
		if err != nil {
			return nil, fmt.Errorf("config_files: %w", err)
		}
	}

	for _, s := range t.PreScripts {
		target.PreBuildScripts = append(target.PreBuildScripts, buildScript(s))
	}
	for _, s := range t.PostScripts {
		target.PostBuildScripts = append(target.PostBuildScripts, buildScript(s))
	}
	for _, rule := range t.BuildRules {
		target.BuildRules = append(target.BuildRules, &model.BuildRule{
			Name:         rule.Name,
			FilePattern:  rule.FilePattern,
			FileType:     rule.FileType,
			CompilerSpec: rule.CompilerSpec,
			Script:       rule.Script,
			OutputFiles:  rule.OutputFiles,
		})
	}
	if t.Legacy != nil {
		target.Legacy = &model.LegacyTool{
			ToolPath:         t.Legacy.Tool,
			Arguments:        t.Legacy.Arguments,
			WorkingDirectory: t.Legacy.WorkingDirectory,
			PassSettings:     t.Legacy.PassSettings,
		}
	}
	return target, nil
}

func buildAggregate(a *hclAggregate) (*model.AggregateTarget, error) {
	aggregate := &model.AggregateTarget{
		Name:    a.Name,
		Targets: a.Targets,
	}
	settings, err := buildSettings(a.Settings)
	if err != nil {
		return nil, err
	}
	aggregate.Settings = settings
	for _, s := range a.Scripts {
		aggregate.BuildScripts = append(aggregate.BuildScripts, buildScript(s))
	}
	return aggregate, nil
}

// buildDependency validates that exactly one reference form is set.
func buildDependency(d *hclDependency) (*model.Dependency, error) {
	dep := &model.Dependency{
		Embed:    d.Embed,
		Link:     d.Link,
		CodeSign: d.CodeSign,
		Implicit: d.Implicit,
	}
	dep.RemoveHeaders = d.RemoveHeaders == nil || *d.RemoveHeaders
	dep.CopyPhase = buildCopySpec(d.Copy)

	refs := 0
	if d.Target != "" {
		dep.Kind = model.DependencyTarget
		dep.Reference = d.Target
		refs++
	}
	if d.Framework != "" {
		dep.Kind = model.DependencyFramework
		dep.Reference = d.Framework
		refs++
	}
	if d.Packaged != "" {
		dep.Kind = model.DependencyPackaged
		dep.Reference = d.Packaged
		refs++
	}
	if refs != 1 {
		return nil, fmt.Errorf("dependency must set exactly one of target, framework, packaged")
	}
	return dep, nil
}

func buildCopySpec(c *hclCopySpec) *model.CopyFilesSpec {
	if c == nil {
		return nil
	}
	return &model.CopyFilesSpec{
		Destination: model.DestinationKind(c.Destination),
		Subpath:     c.Subpath,
	}
}

func buildScript(s *hclScript) *model.BuildScript {
	return &model.BuildScript{
		Name:                  s.Name,
		Inline:                s.Script,
		Path:                  s.Path,
		Shell:                 s.Shell,
		InputFiles:            s.InputFiles,
		OutputFiles:           s.OutputFiles,
		ShowEnv:               s.ShowEnv,
		RunOnlyWhenInstalling: s.InstallOnly,
	}
}

// buildSettings translates the optional settings block.
func buildSettings(s *hclSettings) (*model.Settings, error) {
	settings := model.NewSettings()
	if s == nil {
		return settings, nil
	}
	base, err := decodeSettingsAttr(s.Base)
	if err != nil {
		return nil, fmt.Errorf("settings base: %w", err)
	}
	settings.Base = base
	for _, cfg := range s.Configs {
		values, err := decodeSettingsAttr(cfg.Values)
		if err != nil {
			return nil, fmt.Errorf("settings config %q: %w", cfg.Name, err)
		}
		settings.Configs[cfg.Name] = values
	}
	return settings, nil
}

// decodeStringMap evaluates an object expression into a string-to-string map.
func decodeStringMap(expr hcl.Expression) (map[string]string, error) {
	values, err := decodeSettingsAttr(expr)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for k, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("value for %q must be a string", k)
		}
		out[k] = s
	}
	return out, nil
}
