// Package serializer writes a sealed compiled graph as an OpenStep-style
// project file. Objects are emitted sorted by reference and every map is
// emitted with sorted keys, so output is byte-identical across runs for
// identical input graphs.
package serializer

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/vk/projgraph/internal/graph"
	"github.com/vk/projgraph/internal/node"
)

const objectVersion = 56

// Write serializes the compiled project to w.
func Write(w io.Writer, project *graph.CompiledProject) error {
	var b strings.Builder
	b.WriteString("// !$*UTF8*$!\n{\n")
	b.WriteString("\tarchiveVersion = 1;\n")
	b.WriteString("\tclasses = {\n\t};\n")
	fmt.Fprintf(&b, "\tobjectVersion = %d;\n", objectVersion)
	b.WriteString("\tobjects = {\n")

	refs := project.Store.Refs()
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	for _, ref := range refs {
		n, _ := project.Store.Get(ref)
		fmt.Fprintf(&b, "\t\t%s = ", ref)
		writeValue(&b, objectDict(n), 2)
		b.WriteString(";\n")
	}

	b.WriteString("\t};\n")
	fmt.Fprintf(&b, "\trootObject = %s;\n", project.Root)
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// objectDict flattens one node into its serialized dictionary.
func objectDict(n node.Node) map[string]any {
	d := map[string]any{"isa": n.ISA()}
	switch v := n.(type) {
	case *node.FileReference:
		setNonEmpty(d, "name", v.Name)
		setNonEmpty(d, "path", v.Path)
		d["sourceTree"] = string(v.SourceTree)
		setNonEmpty(d, "lastKnownFileType", v.LastKnownType)
		setNonEmpty(d, "explicitFileType", v.ExplicitType)
	case *node.Group:
		setNonEmpty(d, "name", v.Name)
		setNonEmpty(d, "path", v.Path)
		d["sourceTree"] = string(v.SourceTree)
		d["children"] = refList(v.Children)
	case *node.BuildFile:
		d["fileRef"] = string(v.FileRef)
		if len(v.Settings) > 0 {
			d["settings"] = v.Settings
		}
	case *node.BuildPhase:
		setNonEmpty(d, "name", v.Name)
		d["buildActionMask"] = "2147483647"
		d["runOnlyForDeploymentPostprocessing"] = boolString(v.RunOnlyForDeploymentPostprocessing)
		if v.Kind == node.PhaseRunScript {
			d["shellPath"] = v.ShellPath
			d["shellScript"] = v.Script
			d["inputPaths"] = stringList(v.InputPaths)
			d["outputPaths"] = stringList(v.OutputPaths)
			d["showEnvVarsInLog"] = boolString(v.ShowEnvVarsInLog)
		} else {
			d["files"] = refList(v.Files)
		}
		if v.Kind == node.PhaseCopyFiles {
			d["dstSubfolderSpec"] = v.DstSubfolderSpec
			d["dstPath"] = v.DstPath
		}
	case *node.BuildRuleNode:
		setNonEmpty(d, "name", v.Name)
		d["compilerSpec"] = v.CompilerSpec
		setNonEmpty(d, "filePatterns", v.FilePatterns)
		setNonEmpty(d, "fileType", v.FileType)
		setNonEmpty(d, "script", v.Script)
		d["outputFiles"] = stringList(v.OutputFiles)
		d["isEditable"] = "1"
		d["runOncePerArchitecture"] = boolString(v.RunOncePerArchitecture)
	case *node.TargetNode:
		d["name"] = v.Name
		setNonEmpty(d, "productType", v.ProductType)
		setNonEmpty(d, "productName", v.ProductName)
		if v.ProductReference != "" {
			d["productReference"] = string(v.ProductReference)
		}
		d["buildConfigurationList"] = string(v.ConfigurationList)
		d["buildPhases"] = refList(v.BuildPhases)
		d["dependencies"] = refList(v.Dependencies)
		if len(v.BuildRules) > 0 {
			d["buildRules"] = refList(v.BuildRules)
		}
		if v.Kind == node.TargetLegacy {
			d["buildToolPath"] = v.BuildToolPath
			d["buildArgumentsString"] = v.BuildArgumentsString
			setNonEmpty(d, "buildWorkingDirectory", v.BuildWorkingDirectory)
			d["passBuildSettingsInEnvironment"] = boolString(v.PassBuildSettingsInEnvironment)
		}
	case *node.ContainerItemProxy:
		d["containerPortal"] = string(v.ContainerPortal)
		d["proxyType"] = "1"
		d["remoteGlobalIDString"] = string(v.RemoteGlobalID)
		d["remoteInfo"] = v.RemoteInfo
	case *node.TargetDependency:
		d["name"] = v.TargetName
		d["target"] = string(v.Target)
		d["targetProxy"] = string(v.Proxy)
	case *node.BuildConfiguration:
		d["name"] = v.Name
		d["buildSettings"] = v.Settings
		if v.BaseConfigurationRef != "" {
			d["baseConfigurationReference"] = string(v.BaseConfigurationRef)
		}
	case *node.ConfigurationList:
		d["buildConfigurations"] = refList(v.Configurations)
		d["defaultConfigurationIsVisible"] = "0"
		d["defaultConfigurationName"] = v.DefaultConfigurationName
	case *node.ProjectNode:
		d["buildConfigurationList"] = string(v.ConfigurationList)
		d["compatibilityVersion"] = "Xcode 14.0"
		d["developmentRegion"] = v.DevelopmentRegion
		d["hasScannedForEncodings"] = "0"
		d["knownRegions"] = stringList(v.KnownRegions)
		d["mainGroup"] = string(v.MainGroup)
		if v.ProductsGroup != "" {
			d["productRefGroup"] = string(v.ProductsGroup)
		}
		d["projectDirPath"] = ""
		d["projectRoot"] = ""
		d["targets"] = refList(v.Targets)
		if len(v.Attributes) > 0 {
			d["attributes"] = v.Attributes
		}
	}
	return d
}

var bareString = regexp.MustCompile(`^[A-Za-z0-9_$./:-]+$`)

// writeValue emits a plist value at the given indent depth.
func writeValue(b *strings.Builder, value any, depth int) {
	indent := strings.Repeat("\t", depth)
	switch v := value.(type) {
	case string:
		b.WriteString(quote(v))
	case []any:
		b.WriteString("(\n")
		for _, element := range v {
			b.WriteString(indent + "\t")
			writeValue(b, element, depth+1)
			b.WriteString(",\n")
		}
		b.WriteString(indent + ")")
	case []string:
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		writeValue(b, list, depth)
	case map[string]any:
		b.WriteString("{\n")
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "%s\t%s = ", indent, quote(k))
			writeValue(b, v[k], depth+1)
			b.WriteString(";\n")
		}
		b.WriteString(indent + "}")
	default:
		b.WriteString(quote(fmt.Sprintf("%v", v)))
	}
}

// quote wraps a string in quotes unless it is safe to emit bare.
func quote(s string) string {
	if s != "" && bareString.MatchString(s) {
		return s
	}
	escaped := strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n", "\t", "\\t").Replace(s)
	return "\"" + escaped + "\""
}

func setNonEmpty(d map[string]any, key, value string) {
	if value != "" {
		d[key] = value
	}
}

func refList(refs []node.Ref) []any {
	out := make([]any, len(refs))
	for i, ref := range refs {
		out[i] = string(ref)
	}
	return out
}

func stringList(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

func boolString(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
