package spec

import "github.com/hashicorp/hcl/v2"

// hclSpecFile is the top-level structure of one spec file.
type hclSpecFile struct {
	Projects []*hclProject `hcl:"project,block"`
}

// hclProject is a single `project` block.
type hclProject struct {
	Name        string          `hcl:"name,label"`
	Options     *hclOptions     `hcl:"options,block"`
	Configs     []*hclConfig    `hcl:"config,block"`
	Targets     []*hclTarget    `hcl:"target,block"`
	Aggregates  []*hclAggregate `hcl:"aggregate_target,block"`
	ConfigFiles hcl.Expression  `hcl:"config_files,optional"`
	FileGroups  []string        `hcl:"file_groups,optional"`
}

type hclOptions struct {
	BundleIDPrefix      string `hcl:"bundle_id_prefix,optional"`
	GroupSortPosition   string `hcl:"group_sort_position,optional"`
	TransitivelyLink    bool   `hcl:"transitively_link_dependencies,optional"`
	PackagedBuildPath   string `hcl:"packaged_build_path,optional"`
	PackagedEmbedScript bool   `hcl:"packaged_embed_script,optional"`
}

type hclConfig struct {
	Name     string         `hcl:"name,label"`
	Type     string         `hcl:"type,optional"`
	Settings hcl.Expression `hcl:"settings,optional"`
}

type hclTarget struct {
	Name        string `hcl:"name,label"`
	Type        string `hcl:"type"`
	Platform    string `hcl:"platform"`
	ProductName string `hcl:"product_name,optional"`

	Sources     []string         `hcl:"sources,optional"`
	SourceSpecs []*hclSourceSpec `hcl:"source,block"`

	Dependencies []*hclDependency `hcl:"dependency,block"`
	Settings     *hclSettings     `hcl:"settings,block"`
	ConfigFiles  hcl.Expression   `hcl:"config_files,optional"`

	PreScripts  []*hclScript    `hcl:"prebuild_script,block"`
	PostScripts []*hclScript    `hcl:"postbuild_script,block"`
	BuildRules  []*hclBuildRule `hcl:"build_rule,block"`
	Legacy      *hclLegacy      `hcl:"legacy,block"`

	RequiresObjCLinking *bool `hcl:"requires_objc_linking,optional"`
}

type hclSourceSpec struct {
	Path             string       `hcl:"path"`
	CompilerFlags    []string     `hcl:"compiler_flags,optional"`
	BuildPhase       string       `hcl:"build_phase,optional"`
	HeaderVisibility string       `hcl:"header_visibility,optional"`
	Copy             *hclCopySpec `hcl:"copy,block"`
}

type hclDependency struct {
	Target    string `hcl:"target,optional"`
	Framework string `hcl:"framework,optional"`
	Packaged  string `hcl:"packaged,optional"`

	Embed         *bool `hcl:"embed,optional"`
	Link          *bool `hcl:"link,optional"`
	CodeSign      *bool `hcl:"code_sign,optional"`
	RemoveHeaders *bool `hcl:"remove_headers,optional"`
	Implicit      bool  `hcl:"implicit,optional"`

	Copy *hclCopySpec `hcl:"copy,block"`
}

type hclCopySpec struct {
	Destination string `hcl:"destination"`
	Subpath     string `hcl:"subpath,optional"`
}

type hclSettings struct {
	Base    hcl.Expression       `hcl:"base,optional"`
	Configs []*hclSettingsConfig `hcl:"config,block"`
}

type hclSettingsConfig struct {
	Name   string         `hcl:"name,label"`
	Values hcl.Expression `hcl:"values,optional"`
}

type hclScript struct {
	Name        string   `hcl:"name,label"`
	Script      string   `hcl:"script,optional"`
	Path        string   `hcl:"path,optional"`
	Shell       string   `hcl:"shell,optional"`
	InputFiles  []string `hcl:"input_files,optional"`
	OutputFiles []string `hcl:"output_files,optional"`
	ShowEnv     bool     `hcl:"show_env,optional"`
	InstallOnly bool     `hcl:"install_only,optional"`
}

type hclBuildRule struct {
	Name         string   `hcl:"name,label"`
	FilePattern  string   `hcl:"file_pattern,optional"`
	FileType     string   `hcl:"file_type,optional"`
	CompilerSpec string   `hcl:"compiler_spec,optional"`
	Script       string   `hcl:"script,optional"`
	OutputFiles  []string `hcl:"output_files,optional"`
}

type hclLegacy struct {
	Tool             string `hcl:"tool"`
	Arguments        string `hcl:"arguments,optional"`
	WorkingDirectory string `hcl:"working_directory,optional"`
	PassSettings     bool   `hcl:"pass_settings,optional"`
}

type hclAggregate struct {
	Name     string       `hcl:"name,label"`
	Targets  []string     `hcl:"targets"`
	Settings *hclSettings `hcl:"settings,block"`
	Scripts  []*hclScript `hcl:"script,block"`
}
