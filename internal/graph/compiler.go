package graph

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/node"
)

// compileState is the compiler's two-state lifecycle.
type compileState int

const (
	stateNotStarted compileState = iota
	stateCompleted
)

// CompiledProject is the sealed output graph plus its root node reference.
type CompiledProject struct {
	Store *Store
	Root  node.Ref
}

// Compiler compiles one ProjectSpec into a CompiledProject. An instance is
// single-use: Compile may be called exactly once.
type Compiler struct {
	spec    *model.ProjectSpec
	store   *Store
	sources SourceResolver
	scripts ScriptSource

	res   *resolver
	synth *synthesizer
	asm   *phaseAssembler
	state compileState

	projectRef  node.Ref
	targetRefs  map[string]node.Ref
	productRefs map[string]node.Ref

	// Shared accumulators, written only during the dependency-resolution
	// step of each target in strict sequence.
	frameworkFiles []node.Ref
	frameworkSeen  map[node.Ref]bool
	packagedFiles  map[model.Platform][]node.Ref
	packagedSeen   map[model.Platform]map[string]node.Ref
	containedRefs  []node.Ref
	containedSeen  map[node.Ref]bool

	targetAttributes map[string]map[string]any // keyed by target name
}

// New returns a compiler over the given spec and collaborators. The store
// is shared with the source resolver so file references land in the same
// graph.
func New(spec *model.ProjectSpec, store *Store, sources SourceResolver, scripts ScriptSource) *Compiler {
	return &Compiler{
		spec:    spec,
		store:   store,
		sources: sources,
		scripts: scripts,

		res:   &resolver{spec: spec},
		synth: &synthesizer{spec: spec, sources: sources},
		asm:   &phaseAssembler{store: store, scripts: scripts},

		targetRefs:       map[string]node.Ref{},
		productRefs:      map[string]node.Ref{},
		frameworkSeen:    map[node.Ref]bool{},
		packagedFiles:    map[model.Platform][]node.Ref{},
		packagedSeen:     map[model.Platform]map[string]node.Ref{},
		containedSeen:    map[node.Ref]bool{},
		targetAttributes: map[string]map[string]any{},
	}
}

// Compile runs the single compilation pass: one iteration over the spec's
// targets and aggregate targets, then graph ordering and project-node
// attribution. Calling Compile on a completed instance is a programming
// error and panics.
func (c *Compiler) Compile(ctx context.Context) (*CompiledProject, error) {
	if c.state == stateCompleted {
		panic("graph: Compile called twice on the same Compiler instance")
	}
	c.state = stateCompleted

	logger := ctxlog.FromContext(ctx)
	logger.Debug("compile: starting", "project", c.spec.Name, "targets", len(c.spec.Targets))

	// First pass: register every target and product node so dependency
	// edges can reference targets declared later in the spec.
	project := &node.ProjectNode{Name: c.spec.Name, DevelopmentRegion: "en"}
	c.projectRef = c.store.Create("project:"+c.spec.Name, project)
	c.createTargetSkeletons()
	logger.Debug("compile: target skeletons created", "node_count", c.store.Len())

	// Second pass: compile each target's dependencies, phases and settings.
	for _, target := range c.spec.Targets {
		if err := c.compileTarget(ctx, target); err != nil {
			return nil, err
		}
	}
	for _, aggregate := range c.spec.AggregateTargets {
		if err := c.compileAggregate(ctx, aggregate); err != nil {
			return nil, err
		}
	}
	logger.Debug("compile: target pass complete", "node_count", c.store.Len())

	// Final pass: project configuration, grouping, ordering, attribution.
	c.finalizeProject(project)
	c.store.Seal()
	logger.Debug("compile: graph sealed", "node_count", c.store.Len())

	return &CompiledProject{Store: c.store, Root: c.projectRef}, nil
}

// createTargetSkeletons registers a target node and product reference for
// every native, legacy and aggregate target up front.
func (c *Compiler) createTargetSkeletons() {
	for _, t := range c.spec.Targets {
		kind := node.TargetNative
		if t.Legacy != nil {
			kind = node.TargetLegacy
		}
		tn := &node.TargetNode{
			Kind:        kind,
			Name:        t.Name,
			ProductType: string(t.Type),
			ProductName: t.ProductFileName(),
		}
		c.targetRefs[t.Name] = c.store.Create("target:"+t.Name, tn)

		// Legacy products come from the external tool; only native targets
		// get a product reference in the Products group.
		if t.Legacy == nil {
			product := &node.FileReference{
				Path:         t.ProductFileName(),
				SourceTree:   node.TreeBuildProducts,
				ExplicitType: productFileType(t.Type),
			}
			ref := c.store.Create("product:"+t.Name, product)
			c.productRefs[t.Name] = ref
			tn.ProductReference = ref
		}
	}
	for _, a := range c.spec.AggregateTargets {
		tn := &node.TargetNode{Kind: node.TargetAggregate, Name: a.Name}
		c.targetRefs[a.Name] = c.store.Create("target:"+a.Name, tn)
	}
}

// compileTarget resolves one target's dependencies, assembles its phases
// and synthesizes its settings, writing everything into the store.
func (c *Compiler) compileTarget(ctx context.Context, target *model.Target) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("compile: target", "name", target.Name, "type", string(target.Type))

	tn := c.targetNode(target.Name)

	direct, err := c.res.resolveDirect(target)
	if err != nil {
		return err
	}

	// Embedding considers the transitive closure when the target embeds its
	// dependencies; linking stays direct unless the project opts into
	// transitive linking.
	embeddable := direct
	if target.ShouldEmbedDependencies() {
		deps, err := c.res.resolveTransitiveEmbeddable(ctx, target)
		if err != nil {
			return err
		}
		embeddable = embeddable[:0:0]
		for _, dep := range deps {
			rd, err := c.res.resolve(dep, target)
			if err != nil {
				return err
			}
			embeddable = append(embeddable, rd)
		}
	}

	linked := direct
	if c.spec.Options.TransitivelyLinkDependencies && target.ShouldEmbedDependencies() {
		linked = embeddable
	}

	inf := &targetInference{}
	inputs := &phaseInputs{Buckets: map[EmbedBucket][]node.Ref{}}

	var linkedFiles []node.Ref
	for _, rd := range linked {
		if !rd.Link {
			continue
		}
		fileRef, ok := c.dependencyFileRef(target, rd)
		if !ok {
			continue
		}
		id := fmt.Sprintf("link:%s:%s", target.Name, fileRef)
		linkedFiles = append(linkedFiles, c.store.Create(id, &node.BuildFile{FileRef: fileRef}))
	}
	inputs.Linked = linkedFiles

	for _, rd := range embeddable {
		if !rd.Embed {
			continue
		}
		if rd.Dependency.Kind == model.DependencyPackaged && c.spec.Options.PackagedEmbedScript {
			inputs.PackagedScriptInputs = append(inputs.PackagedScriptInputs,
				"$(SRCROOT)/"+c.packagedBinaryPath(target.Platform, rd.Dependency.Reference))
			continue
		}
		fileRef, ok := c.dependencyFileRef(target, rd)
		if !ok {
			continue
		}
		bucket := rd.Bucket
		if rd.Dependency.CopyPhase != nil {
			// A custom copy destination overrides bucket classification.
			src := ClassifiedSource{
				Path:     c.dependencyPath(target, rd),
				FileRef:  fileRef,
				Phase:    node.PhaseCopyFiles,
				InPhase:  true,
				CopySpec: rd.Dependency.CopyPhase,
			}
			inputs.Sources = append(inputs.Sources, src)
			continue
		}
		bf := &node.BuildFile{FileRef: fileRef, Settings: embedAttributes(rd)}
		id := fmt.Sprintf("embed:%s:%s", target.Name, fileRef)
		inputs.Buckets[bucket] = append(inputs.Buckets[bucket], c.store.Create(id, bf))
	}

	// Framework search paths for framework-path dependencies.
	for _, rd := range direct {
		if rd.Dependency.Kind == model.DependencyFramework {
			if dir := path.Dir(rd.Dependency.Reference); dir != "" && dir != "." {
				inf.FrameworkSearchPaths = appendUnique(inf.FrameworkSearchPaths, dir)
			}
		}
	}

	// Packaged-binary search paths, one per platform build directory.
	packaged, err := c.res.resolvePackaged(target.Name)
	if err != nil {
		return err
	}
	if len(packaged) > 0 {
		inf.PackagedSearchPaths = append(inf.PackagedSearchPaths,
			"$(PROJECT_DIR)/"+c.packagedBuildDir(target.Platform))
	}

	inf.ObjCLinking = requiresObjCLinking(embeddable)
	inf.TestTargetName = c.uiTestHostApp(target)

	classified, err := c.sources.ClassifySources(target)
	if err != nil {
		return err
	}
	inputs.Sources = append(inputs.Sources, classified...)

	// Settings per configuration, then the configuration list.
	scan := &infoPlistScan{}
	var perConfig []map[string]any
	var configRefs []node.Ref
	for _, cfg := range c.spec.Configs {
		settings := c.synth.settingsForConfig(target, cfg, inf, scan)
		perConfig = append(perConfig, settings)
		configRefs = append(configRefs, c.buildConfiguration(target.Name, target.ConfigFiles, cfg, settings))
	}
	tn.ConfigurationList = c.configurationList("target:"+target.Name, configRefs)

	if target.Legacy != nil {
		tn.BuildToolPath = target.Legacy.ToolPath
		tn.BuildArgumentsString = target.Legacy.Arguments
		tn.BuildWorkingDirectory = target.Legacy.WorkingDirectory
		tn.PassBuildSettingsInEnvironment = target.Legacy.PassSettings
	} else {
		for _, cfgSettings := range perConfig {
			if name := interopHeaderName(cfgSettings); name != "" {
				inputs.InteropHeader = name
				break
			}
		}
		phases, err := c.asm.assemble(target, inputs)
		if err != nil {
			return err
		}
		tn.BuildPhases = phases
		tn.BuildRules = c.buildRules(target)
	}

	// Dependency edges for direct target and aggregate dependencies.
	for _, rd := range direct {
		if rd.Target == nil && rd.Aggregate == nil {
			continue
		}
		tn.Dependencies = append(tn.Dependencies, c.dependencyEdge(target.Name, rd.Dependency.Reference))
	}

	c.attributeTarget(target, perConfig)
	return nil
}

// compileAggregate compiles a sourceless aggregate target: edges to its
// listed targets, its script phases, and its settings.
func (c *Compiler) compileAggregate(ctx context.Context, aggregate *model.AggregateTarget) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("compile: aggregate target", "name", aggregate.Name)

	tn := c.targetNode(aggregate.Name)

	seen := map[string]bool{}
	for _, name := range aggregate.Targets {
		if c.spec.Target(name) == nil && c.spec.AggregateTarget(name) == nil {
			return &UnknownTargetError{Dependent: aggregate.Name, Reference: name}
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		tn.Dependencies = append(tn.Dependencies, c.dependencyEdge(aggregate.Name, name))
	}

	scriptTarget := &model.Target{Name: aggregate.Name, PreBuildScripts: aggregate.BuildScripts}
	phases, err := c.asm.scriptPhases(scriptTarget, "pre", aggregate.BuildScripts)
	if err != nil {
		return err
	}
	tn.BuildPhases = phases

	// Packaged binaries aggregate across the listed sub-targets. The
	// aggregate produces nothing to copy into, so only the indirect embed
	// script can carry them.
	if c.spec.Options.PackagedEmbedScript {
		inputs, err := c.aggregatePackagedInputs(aggregate)
		if err != nil {
			return err
		}
		if len(inputs) > 0 {
			tn.BuildPhases = append(tn.BuildPhases, c.asm.packagedEmbedPhase(scriptTarget, inputs))
		}
	}

	var configRefs []node.Ref
	for _, cfg := range c.spec.Configs {
		settings := map[string]any{}
		for k, v := range aggregate.Settings.ForConfig(cfg.Name) {
			settings[k] = v
		}
		configRefs = append(configRefs, c.buildConfiguration(aggregate.Name, aggregate.ConfigFiles, cfg, settings))
	}
	tn.ConfigurationList = c.configurationList("target:"+aggregate.Name, configRefs)
	return nil
}

// aggregatePackagedInputs resolves the packaged-binary dependencies reachable
// from an aggregate target's listed sub-targets, grouped by sub-target
// platform so each binary resolves against the right platform build
// directory. Sub-target listing order keeps the result deterministic.
func (c *Compiler) aggregatePackagedInputs(aggregate *model.AggregateTarget) ([]string, error) {
	var platforms []model.Platform
	byPlatform := map[model.Platform][]string{}
	for _, name := range aggregate.Targets {
		t := c.spec.Target(name)
		if t == nil {
			continue
		}
		if _, ok := byPlatform[t.Platform]; !ok {
			platforms = append(platforms, t.Platform)
		}
		byPlatform[t.Platform] = append(byPlatform[t.Platform], name)
	}

	var inputs []string
	for _, platform := range platforms {
		packaged, err := c.res.resolvePackaged(byPlatform[platform]...)
		if err != nil {
			return nil, err
		}
		for _, dep := range packaged {
			inputs = appendUnique(inputs, "$(SRCROOT)/"+c.packagedBinaryPath(platform, dep.Reference))
		}
	}
	return inputs, nil
}

// finalizeProject builds the project configuration list, the main group and
// the synthetic groups, orders the whole tree, and attributes the root node.
func (c *Compiler) finalizeProject(project *node.ProjectNode) {
	var configRefs []node.Ref
	for _, cfg := range c.spec.Configs {
		settings := map[string]any{}
		for k, v := range cfg.Settings {
			settings[k] = copyValue(v)
		}
		configRefs = append(configRefs, c.buildConfiguration("project", c.spec.ConfigFiles, cfg, settings))
	}
	project.ConfigurationList = c.configurationList("project:"+c.spec.Name, configRefs)

	mainGroup := &node.Group{SourceTree: node.TreeGroup}
	mainGroup.Children = append(mainGroup.Children, c.sources.RootGroups()...)
	mainGroup.Children = append(mainGroup.Children, c.containedRefs...)

	products := &node.Group{Name: "Products", SourceTree: node.TreeGroup, Synthetic: true}
	for _, t := range c.spec.Targets {
		if ref, ok := c.productRefs[t.Name]; ok {
			products.Children = append(products.Children, ref)
		}
	}
	project.ProductsGroup = c.store.Create("group:products", products)
	mainGroup.Children = append(mainGroup.Children, project.ProductsGroup)

	if len(c.frameworkFiles) > 0 {
		frameworks := &node.Group{Name: "Frameworks", SourceTree: node.TreeGroup, Synthetic: true, Children: c.frameworkFiles}
		mainGroup.Children = append(mainGroup.Children, c.store.Create("group:frameworks", frameworks))
	}
	platforms := make([]model.Platform, 0, len(c.packagedFiles))
	for platform := range c.packagedFiles {
		platforms = append(platforms, platform)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	for _, platform := range platforms {
		files := c.packagedFiles[platform]
		if len(files) == 0 {
			continue
		}
		group := &node.Group{Name: "Packages-" + string(platform), SourceTree: node.TreeGroup, Synthetic: true, Children: files}
		mainGroup.Children = append(mainGroup.Children, c.store.Create("group:packages:"+string(platform), group))
	}
	project.MainGroup = c.store.Create("group:main", mainGroup)

	for _, t := range c.spec.Targets {
		project.Targets = append(project.Targets, c.targetRefs[t.Name])
	}
	for _, a := range c.spec.AggregateTargets {
		project.Targets = append(project.Targets, c.targetRefs[a.Name])
	}

	ord := newOrderer(c.spec.Options.GroupSortPosition)
	ord.sortGroupTree(c.store, project.MainGroup)
	ord.sortTargets(c.store, project.Targets)

	project.KnownRegions = c.sources.KnownRegions()

	attrs := map[string]any{}
	for k, v := range c.spec.Attributes {
		attrs[k] = v
	}
	if len(c.targetAttributes) > 0 {
		byRef := map[string]any{}
		for name, ta := range c.targetAttributes {
			byRef[string(c.targetRefs[name])] = ta
		}
		attrs["TargetAttributes"] = byRef
	}
	project.Attributes = attrs
}

// attributeTarget projects mirrored build settings onto the target's
// attributes and records the UI-test host application reference.
func (c *Compiler) attributeTarget(target *model.Target, perConfig []map[string]any) {
	attrs := projectedAttributes(perConfig)
	for k, v := range target.Attributes {
		attrs[k] = v
	}
	if target.Type == model.ProductUITestBundle {
		if host := c.uiTestHostApp(target); host != "" {
			attrs["TestTargetID"] = string(c.targetRefs[host])
		}
	}
	if len(attrs) > 0 {
		c.targetAttributes[target.Name] = attrs
	}
}

// uiTestHostApp names the first target-kind dependency whose product type is
// application, for UI-test bundles only.
func (c *Compiler) uiTestHostApp(target *model.Target) string {
	if target.Type != model.ProductUITestBundle {
		return ""
	}
	for _, dep := range target.Dependencies {
		if dep.Kind != model.DependencyTarget {
			continue
		}
		if t := c.spec.Target(dep.Reference); t != nil && t.Type == model.ProductApplication {
			return t.Name
		}
	}
	return ""
}

// dependencyFileRef resolves the file reference a dependency's build files
// wrap: the dependency target's product, a framework on disk, or a packaged
// binary in its platform group. Framework and packaged references are
// deduplicated globally so each appears once in its top-level group.
func (c *Compiler) dependencyFileRef(target *model.Target, rd *ResolvedDependency) (node.Ref, bool) {
	switch rd.Dependency.Kind {
	case model.DependencyTarget:
		if rd.Target == nil {
			return "", false
		}
		ref, ok := c.productRefs[rd.Target.Name]
		return ref, ok
	case model.DependencyFramework:
		ref := c.sources.FileReference(rd.Dependency.Reference, node.TreeSourceRoot)
		if !c.frameworkSeen[ref] {
			c.frameworkSeen[ref] = true
			c.frameworkFiles = append(c.frameworkFiles, ref)
		}
		return ref, true
	case model.DependencyPackaged:
		platform := target.Platform
		seen := c.packagedSeen[platform]
		if seen == nil {
			seen = map[string]node.Ref{}
			c.packagedSeen[platform] = seen
		}
		if ref, ok := seen[rd.Dependency.Reference]; ok {
			return ref, true
		}
		ref := c.sources.FileReference(c.packagedBinaryPath(platform, rd.Dependency.Reference), node.TreeSourceRoot)
		seen[rd.Dependency.Reference] = ref
		c.packagedFiles[platform] = append(c.packagedFiles[platform], ref)
		return ref, true
	}
	return "", false
}

func (c *Compiler) dependencyPath(target *model.Target, rd *ResolvedDependency) string {
	switch rd.Dependency.Kind {
	case model.DependencyTarget:
		if rd.Target != nil {
			return rd.Target.ProductFileName()
		}
		return rd.Dependency.Reference
	case model.DependencyPackaged:
		return c.packagedBinaryPath(target.Platform, rd.Dependency.Reference)
	}
	return rd.Dependency.Reference
}

// dependencyEdge registers the proxy and dependency edge toward a named
// target.
func (c *Compiler) dependencyEdge(from, to string) node.Ref {
	proxy := &node.ContainerItemProxy{
		ContainerPortal: c.projectRef,
		RemoteGlobalID:  c.targetRefs[to],
		RemoteInfo:      to,
	}
	proxyRef := c.store.Create(fmt.Sprintf("proxy:%s:%s", from, to), proxy)
	edge := &node.TargetDependency{TargetName: to, Target: c.targetRefs[to], Proxy: proxyRef}
	return c.store.Create(fmt.Sprintf("dependency:%s:%s", from, to), edge)
}

// buildConfiguration registers one build configuration node, attaching the
// external settings file when one is declared for the configuration.
func (c *Compiler) buildConfiguration(owner string, configFiles map[string]string, cfg *model.Config, settings map[string]any) node.Ref {
	bc := &node.BuildConfiguration{Name: cfg.Name, Settings: settings}
	if filePath, ok := configFiles[cfg.Name]; ok && filePath != "" {
		ref := c.sources.ContainedFileReference(filePath)
		bc.BaseConfigurationRef = ref
		if !c.containedSeen[ref] {
			c.containedSeen[ref] = true
			c.containedRefs = append(c.containedRefs, ref)
		}
	}
	return c.store.Create(fmt.Sprintf("config:%s:%s", owner, cfg.Name), bc)
}

// configurationList registers the list node over per-config refs. The
// default configuration prefers a release-type config.
func (c *Compiler) configurationList(owner string, configRefs []node.Ref) node.Ref {
	defaultName := ""
	for _, cfg := range c.spec.Configs {
		if defaultName == "" || cfg.Type == model.ConfigRelease {
			defaultName = cfg.Name
		}
		if cfg.Type == model.ConfigRelease {
			break
		}
	}
	list := &node.ConfigurationList{Configurations: configRefs, DefaultConfigurationName: defaultName}
	return c.store.Create("configList:"+owner, list)
}

// buildRules registers the target's custom build rules.
func (c *Compiler) buildRules(target *model.Target) []node.Ref {
	var refs []node.Ref
	for i, rule := range target.BuildRules {
		compilerSpec := rule.CompilerSpec
		if compilerSpec == "" {
			compilerSpec = "com.apple.compilers.proxy.script"
		}
		fileType := rule.FileType
		if rule.FilePattern != "" {
			fileType = "pattern.proxy"
		}
		runOnce := true
		if rule.RunOncePerArchitecture != nil {
			runOnce = *rule.RunOncePerArchitecture
		}
		n := &node.BuildRuleNode{
			Name:                     rule.Name,
			CompilerSpec:             compilerSpec,
			FilePatterns:             rule.FilePattern,
			FileType:                 fileType,
			Script:                   rule.Script,
			OutputFiles:              rule.OutputFiles,
			OutputFilesCompilerFlags: rule.OutputFilesCompilerFlags,
			RunOncePerArchitecture:   runOnce,
		}
		refs = append(refs, c.store.Create(fmt.Sprintf("rule:%s:%d", target.Name, i), n))
	}
	return refs
}

func (c *Compiler) targetNode(name string) *node.TargetNode {
	n, _ := c.store.Get(c.targetRefs[name])
	return n.(*node.TargetNode)
}

func (c *Compiler) packagedBuildDir(platform model.Platform) string {
	dir := c.spec.Options.PackagedBuildPath
	if dir == "" {
		dir = "Packages/Build"
	}
	return dir + "/" + string(platform)
}

func (c *Compiler) packagedBinaryPath(platform model.Platform, name string) string {
	return c.packagedBuildDir(platform) + "/" + name + ".framework"
}

// embedAttributes builds the build-file settings for an embedded copy.
// Header stripping only applies to frameworks destinations.
func embedAttributes(rd *ResolvedDependency) map[string]any {
	var attrs []string
	if rd.CodeSign {
		attrs = append(attrs, "CodeSignOnCopy")
	}
	if rd.RemoveHeaders() && rd.Bucket == BucketFrameworks {
		attrs = append(attrs, "RemoveHeadersOnCopy")
	}
	if len(attrs) == 0 {
		return nil
	}
	return map[string]any{"ATTRIBUTES": attrs}
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

// productFileType maps a product type onto the explicit file type of its
// product reference.
func productFileType(p model.ProductType) string {
	switch p {
	case model.ProductApplication, model.ProductWatchApp:
		return "wrapper.application"
	case model.ProductFramework:
		return "wrapper.framework"
	case model.ProductStaticLibrary:
		return "archive.ar"
	case model.ProductDynamicLibrary:
		return "compiled.mach-o.dylib"
	case model.ProductBundle:
		return "wrapper.cfbundle"
	case model.ProductUnitTestBundle, model.ProductUITestBundle:
		return "wrapper.cfbundle"
	case model.ProductAppExtension, model.ProductMessagesExtension, model.ProductWatchExtension:
		return "wrapper.app-extension"
	case model.ProductXPCService:
		return "wrapper.xpc-service"
	case model.ProductCommandLineTool:
		return "compiled.mach-o.executable"
	}
	return "wrapper.cfbundle"
}
