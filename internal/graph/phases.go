package graph

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/node"
)

// dstSubfolderSpec maps a copy-files destination onto the numeric code the
// project format uses.
var dstSubfolderSpec = map[model.DestinationKind]string{
	model.DestAbsolutePath:      "0",
	model.DestWrapper:           "1",
	model.DestExecutables:       "6",
	model.DestResources:         "7",
	model.DestFrameworks:        "10",
	model.DestSharedFrameworks:  "11",
	model.DestSharedSupport:     "12",
	model.DestPlugins:           "13",
	model.DestProductsDirectory: "16",
}

// defaultShell is used for script phases that do not name one.
const defaultShell = "/bin/sh"

// phaseInputs is everything the compiler hands the assembler for one
// target beyond its raw spec: classified sources and the build files the
// dependency resolution step produced.
type phaseInputs struct {
	Sources []ClassifiedSource

	// Linked build files for the frameworks (link) phase.
	Linked []node.Ref

	// Buckets holds the embed build files per destination bucket.
	Buckets map[EmbedBucket][]node.Ref

	// PackagedScriptInputs triggers the indirect packaged-binary embed
	// script phase when non-empty.
	PackagedScriptInputs []string

	// InteropHeader is the resolved interop header name setting, if any.
	InteropHeader string
}

// phaseAssembler builds each target's ordered build phase list. Phases that
// would be empty are omitted, except the sources phase which is always
// present.
type phaseAssembler struct {
	store   *Store
	scripts ScriptSource
}

// assemble builds the target's phases in fixed order and returns their refs.
func (a *phaseAssembler) assemble(target *model.Target, in *phaseInputs) ([]node.Ref, error) {
	var phases []node.Ref

	pre, err := a.scriptPhases(target, "pre", target.PreBuildScripts)
	if err != nil {
		return nil, err
	}
	phases = append(phases, pre...)

	compile, hasSwift := a.partitionSources(in.Sources)
	phases = append(phases, a.filePhase(target, node.PhaseSources, "sources", compile.sources))

	resources := a.buildFiles(target, "resources", compile.resources)
	resources = append(resources, in.Buckets[BucketResources]...)
	if len(resources) > 0 {
		phases = append(phases, a.phase(target, "resources", &node.BuildPhase{
			Kind:  node.PhaseResources,
			Files: resources,
		}))
	}

	if p := a.interopHeaderPhase(target, in.InteropHeader, hasSwift); p != "" {
		phases = append(phases, p)
	}

	phases = append(phases, a.copyFilePhases(target, compile.copies)...)

	if target.Type == model.ProductFramework || target.Type == model.ProductDynamicLibrary {
		if headers := a.buildFiles(target, "headers", compile.headers); len(headers) > 0 {
			phases = append(phases, a.phase(target, "headers", &node.BuildPhase{
				Kind:  node.PhaseHeaders,
				Files: headers,
			}))
		}
	}

	if len(in.Linked) > 0 {
		phases = append(phases, a.phase(target, "frameworks", &node.BuildPhase{
			Kind:  node.PhaseFrameworks,
			Files: in.Linked,
		}))
	}

	for _, bucket := range []EmbedBucket{BucketPlugIns, BucketFrameworks, BucketWatch, BucketXPC} {
		files := in.Buckets[bucket]
		if len(files) == 0 {
			continue
		}
		phases = append(phases, a.phase(target, fmt.Sprintf("embed-%d", bucket), embedPhase(bucket, files)))
	}

	if len(in.PackagedScriptInputs) > 0 {
		phases = append(phases, a.packagedEmbedPhase(target, in.PackagedScriptInputs))
	}

	post, err := a.scriptPhases(target, "post", target.PostBuildScripts)
	if err != nil {
		return nil, err
	}
	phases = append(phases, post...)

	return phases, nil
}

// partitioned groups classified sources by the phase they land in.
type partitioned struct {
	sources   []ClassifiedSource
	resources []ClassifiedSource
	headers   []ClassifiedSource
	copies    map[model.CopyFilesSpec][]ClassifiedSource
}

func (a *phaseAssembler) partitionSources(sources []ClassifiedSource) (partitioned, bool) {
	out := partitioned{copies: map[model.CopyFilesSpec][]ClassifiedSource{}}
	hasSwift := false
	for _, src := range sources {
		if !src.InPhase {
			continue
		}
		switch src.Phase {
		case node.PhaseSources:
			if path.Ext(src.Path) == ".swift" {
				hasSwift = true
			}
			out.sources = append(out.sources, src)
		case node.PhaseResources:
			out.resources = append(out.resources, src)
		case node.PhaseHeaders:
			out.headers = append(out.headers, src)
		case node.PhaseCopyFiles:
			spec := model.CopyFilesSpec{Destination: model.DestResources}
			if src.CopySpec != nil {
				spec = *src.CopySpec
			}
			out.copies[spec] = append(out.copies[spec], src)
		}
	}
	return out, hasSwift
}

// buildFiles turns classified sources into build-file nodes, deduplicated by
// underlying file reference and sorted by final path component.
func (a *phaseAssembler) buildFiles(target *model.Target, phase string, sources []ClassifiedSource) []node.Ref {
	byRef := map[node.Ref]ClassifiedSource{}
	for _, src := range sources {
		if _, ok := byRef[src.FileRef]; !ok {
			byRef[src.FileRef] = src
		}
	}
	deduped := make([]ClassifiedSource, 0, len(byRef))
	for _, src := range byRef {
		deduped = append(deduped, src)
	}
	// Filename first; ties between distinct files break on the full path so
	// repeated compilations order them identically.
	sort.Slice(deduped, func(i, j int) bool {
		if bi, bj := path.Base(deduped[i].Path), path.Base(deduped[j].Path); bi != bj {
			return bi < bj
		}
		if deduped[i].Path != deduped[j].Path {
			return deduped[i].Path < deduped[j].Path
		}
		return deduped[i].FileRef < deduped[j].FileRef
	})

	refs := make([]node.Ref, 0, len(deduped))
	for _, src := range deduped {
		bf := &node.BuildFile{FileRef: src.FileRef}
		if len(src.CompilerFlags) > 0 {
			bf.Settings = map[string]any{"COMPILER_FLAGS": joinFlags(src.CompilerFlags)}
		}
		if src.HeaderVisibility != "" {
			bf.Settings = map[string]any{"ATTRIBUTES": []string{capitalized(src.HeaderVisibility)}}
		}
		id := fmt.Sprintf("buildFile:%s:%s:%s", target.Name, phase, src.FileRef)
		refs = append(refs, a.store.Create(id, bf))
	}
	return refs
}

// filePhase registers a phase over classified sources. Used for the sources
// phase, which is always present even when empty.
func (a *phaseAssembler) filePhase(target *model.Target, kind node.PhaseKind, name string, sources []ClassifiedSource) node.Ref {
	return a.phase(target, name, &node.BuildPhase{
		Kind:  kind,
		Files: a.buildFiles(target, name, sources),
	})
}

// copyFilePhases emits one phase per distinct (destination, subpath) pair in
// a deterministic order.
func (a *phaseAssembler) copyFilePhases(target *model.Target, copies map[model.CopyFilesSpec][]ClassifiedSource) []node.Ref {
	specs := make([]model.CopyFilesSpec, 0, len(copies))
	for spec := range copies {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool {
		if specs[i].Destination != specs[j].Destination {
			return specs[i].Destination < specs[j].Destination
		}
		return specs[i].Subpath < specs[j].Subpath
	})

	var phases []node.Ref
	for _, spec := range specs {
		name := fmt.Sprintf("copy:%s:%s", spec.Destination, spec.Subpath)
		phases = append(phases, a.phase(target, name, &node.BuildPhase{
			Kind:             node.PhaseCopyFiles,
			Files:            a.buildFiles(target, name, copies[spec]),
			DstSubfolderSpec: dstSubfolderSpec[spec.Destination],
			DstPath:          spec.Subpath,
		}))
	}
	return phases
}

// interopHeaderPhase emits the generated-header copy script for static
// libraries producing an interop bridging header.
func (a *phaseAssembler) interopHeaderPhase(target *model.Target, headerName string, hasSwift bool) node.Ref {
	if target.Type != model.ProductStaticLibrary || headerName == "" || !hasSwift {
		return ""
	}
	script := fmt.Sprintf("mkdir -p \"${BUILT_PRODUCTS_DIR}/include\"\n"+
		"cp \"${DERIVED_SOURCES_DIR}/%s.h\" \"${BUILT_PRODUCTS_DIR}/include/\"\n", headerName)
	return a.phase(target, "interop-header", &node.BuildPhase{
		Kind:      node.PhaseRunScript,
		Name:      "Copy Generated Interface Header",
		ShellPath: defaultShell,
		Script:    script,
	})
}

// packagedEmbedPhase emits the script phase that copies packaged binaries
// into the product via the dependency manager's copy tool.
func (a *phaseAssembler) packagedEmbedPhase(target *model.Target, inputs []string) node.Ref {
	return a.phase(target, "packaged-embed", &node.BuildPhase{
		Kind:       node.PhaseRunScript,
		Name:       "Embed Packaged Dependencies",
		ShellPath:  defaultShell,
		Script:     "carthage copy-frameworks\n",
		InputPaths: inputs,
	})
}

// scriptPhases resolves and registers the target's declared script phases.
// A body read failure is a recoverable compilation failure naming the
// target and script.
func (a *phaseAssembler) scriptPhases(target *model.Target, stage string, scripts []*model.BuildScript) ([]node.Ref, error) {
	var phases []node.Ref
	for i, script := range scripts {
		body, err := a.scripts.Resolve(script)
		if err != nil {
			return nil, &ScriptError{Target: target.Name, Script: script.Name, Err: err}
		}
		shell := script.Shell
		if shell == "" {
			shell = defaultShell
		}
		phases = append(phases, a.phase(target, fmt.Sprintf("%s-script-%d", stage, i), &node.BuildPhase{
			Kind:                               node.PhaseRunScript,
			Name:                               script.Name,
			ShellPath:                          shell,
			Script:                             body,
			InputPaths:                         script.InputFiles,
			OutputPaths:                        script.OutputFiles,
			ShowEnvVarsInLog:                   script.ShowEnv,
			RunOnlyForDeploymentPostprocessing: script.RunOnlyWhenInstalling,
		}))
	}
	return phases, nil
}

// phase registers a phase node under a target-scoped logical id.
func (a *phaseAssembler) phase(target *model.Target, name string, p *node.BuildPhase) node.Ref {
	return a.store.Create(fmt.Sprintf("phase:%s:%s", target.Name, name), p)
}

// embedPhase builds the copy-files phase node for one embed bucket.
func embedPhase(bucket EmbedBucket, files []node.Ref) *node.BuildPhase {
	p := &node.BuildPhase{
		Kind:  node.PhaseCopyFiles,
		Name:  bucket.String(),
		Files: files,
	}
	switch bucket {
	case BucketPlugIns:
		p.DstSubfolderSpec = dstSubfolderSpec[model.DestPlugins]
	case BucketFrameworks:
		p.DstSubfolderSpec = dstSubfolderSpec[model.DestFrameworks]
	case BucketWatch:
		p.DstSubfolderSpec = dstSubfolderSpec[model.DestWrapper]
		p.DstPath = "$(CONTENTS_FOLDER_PATH)/Watch"
	case BucketXPC:
		p.DstSubfolderSpec = dstSubfolderSpec[model.DestWrapper]
		p.DstPath = "$(CONTENTS_FOLDER_PATH)/XPCServices"
	}
	return p
}

func joinFlags(flags []string) string {
	return strings.Join(flags, " ")
}

func capitalized(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
