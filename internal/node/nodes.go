package node

// Node is implemented by every compiled graph node variant.
type Node interface {
	// ISA returns the object class name used by the on-disk format.
	ISA() string
}

// TreeKind is the base a file reference's path is relative to.
type TreeKind string

const (
	TreeGroup         TreeKind = "<group>"
	TreeAbsolute      TreeKind = "<absolute>"
	TreeSourceRoot    TreeKind = "SOURCE_ROOT"
	TreeBuildProducts TreeKind = "BUILT_PRODUCTS_DIR"
	TreeSDKRoot       TreeKind = "SDKROOT"
)

// FileReference is a single file on disk or a built product.
type FileReference struct {
	Name          string
	Path          string
	SourceTree    TreeKind
	LastKnownType string
	ExplicitType  string
}

func (*FileReference) ISA() string { return "PBXFileReference" }

// Group is a folder-like container of file references and child groups.
type Group struct {
	Name       string
	Path       string
	SourceTree TreeKind
	Children   []Ref

	// Synthetic marks generated top-level groups (Products, Frameworks,
	// packaged-binary platform groups) that sort after organic groups.
	Synthetic bool
}

func (*Group) ISA() string { return "PBXGroup" }

// BuildFile wraps exactly one file reference for use inside one build phase,
// optionally carrying per-use settings such as embed attributes or compiler
// flags.
type BuildFile struct {
	FileRef  Ref
	Settings map[string]any
}

func (*BuildFile) ISA() string { return "PBXBuildFile" }

// PhaseKind discriminates the build phase variants.
type PhaseKind int

const (
	PhaseSources PhaseKind = iota
	PhaseResources
	PhaseFrameworks
	PhaseHeaders
	PhaseCopyFiles
	PhaseRunScript
)

// ISA returns the object class for the phase kind.
func (k PhaseKind) ISA() string {
	switch k {
	case PhaseSources:
		return "PBXSourcesBuildPhase"
	case PhaseResources:
		return "PBXResourcesBuildPhase"
	case PhaseFrameworks:
		return "PBXFrameworksBuildPhase"
	case PhaseHeaders:
		return "PBXHeadersBuildPhase"
	case PhaseCopyFiles:
		return "PBXCopyFilesBuildPhase"
	case PhaseRunScript:
		return "PBXShellScriptBuildPhase"
	}
	return "PBXBuildPhase"
}

// BuildPhase is one ordered stage of a target's build. Fields beyond Kind,
// Name and Files apply only to the kinds that use them.
type BuildPhase struct {
	Kind  PhaseKind
	Name  string
	Files []Ref // BuildFile refs

	// Copy-files phases.
	DstSubfolderSpec string
	DstPath          string

	// Script phases.
	ShellPath                          string
	Script                             string
	InputPaths                         []string
	OutputPaths                        []string
	ShowEnvVarsInLog                   bool
	RunOnlyForDeploymentPostprocessing bool
}

func (p *BuildPhase) ISA() string { return p.Kind.ISA() }

// BuildRuleNode is a per-target custom build rule.
type BuildRuleNode struct {
	Name                     string
	CompilerSpec             string
	FilePatterns             string
	FileType                 string
	Script                   string
	OutputFiles              []string
	OutputFilesCompilerFlags []string
	RunOncePerArchitecture   bool
}

func (*BuildRuleNode) ISA() string { return "PBXBuildRule" }

// TargetKind discriminates the three target node flavors.
type TargetKind int

const (
	TargetNative TargetKind = iota
	TargetAggregate
	TargetLegacy
)

// TargetNode is a native, aggregate or legacy target in the compiled graph.
type TargetNode struct {
	Kind        TargetKind
	Name        string
	ProductType string
	ProductName string

	// ProductReference, once set, never changes node type.
	ProductReference Ref

	BuildPhases       []Ref
	BuildRules        []Ref
	Dependencies      []Ref // TargetDependency refs
	ConfigurationList Ref

	// Legacy targets only.
	BuildToolPath                  string
	BuildArgumentsString           string
	BuildWorkingDirectory          string
	PassBuildSettingsInEnvironment bool
}

// ISA returns the target object class for the kind.
func (t *TargetNode) ISA() string {
	switch t.Kind {
	case TargetAggregate:
		return "PBXAggregateTarget"
	case TargetLegacy:
		return "PBXLegacyTarget"
	}
	return "PBXNativeTarget"
}

// ContainerItemProxy is the indirection the format requires between a
// dependency edge and the target it points at.
type ContainerItemProxy struct {
	ContainerPortal Ref // project node
	RemoteGlobalID  Ref // target node
	RemoteInfo      string
}

func (*ContainerItemProxy) ISA() string { return "PBXContainerItemProxy" }

// TargetDependency is the edge between a dependent target and one of its
// target dependencies.
type TargetDependency struct {
	TargetName string
	Target     Ref
	Proxy      Ref
}

func (*TargetDependency) ISA() string { return "PBXTargetDependency" }

// BuildConfiguration is one named settings map, optionally based on an
// external settings file.
type BuildConfiguration struct {
	Name                 string
	Settings             map[string]any
	BaseConfigurationRef Ref
}

func (*BuildConfiguration) ISA() string { return "XCBuildConfiguration" }

// ConfigurationList is the ordered set of build configurations attached to a
// target or to the project.
type ConfigurationList struct {
	Configurations           []Ref
	DefaultConfigurationName string
}

func (*ConfigurationList) ISA() string { return "XCConfigurationList" }

// ProjectNode is the root of the compiled graph.
type ProjectNode struct {
	Name              string
	MainGroup         Ref
	ProductsGroup     Ref
	ConfigurationList Ref
	Targets           []Ref
	KnownRegions      []string
	Attributes        map[string]any
	DevelopmentRegion string
}

func (*ProjectNode) ISA() string { return "PBXProject" }
