package sources

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/vk/projgraph/internal/graph"
	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/node"
)

// phase classification by file extension. Anything not listed compiles or
// copies per classifyExt's fallback.
var sourceExtensions = map[string]bool{
	".swift": true, ".m": true, ".mm": true, ".c": true, ".cc": true,
	".cpp": true, ".cxx": true, ".s": true, ".S": true, ".metal": true,
	".xcdatamodeld": true, ".intentdefinition": true,
}

var headerExtensions = map[string]bool{
	".h": true, ".hh": true, ".hpp": true, ".ipp": true, ".tpp": true,
}

// lastKnownType maps extensions onto the file-reference type strings the
// project format records.
var lastKnownType = map[string]string{
	".swift":      "sourcecode.swift",
	".m":          "sourcecode.c.objc",
	".mm":         "sourcecode.cpp.objcpp",
	".c":          "sourcecode.c.c",
	".cpp":        "sourcecode.cpp.cpp",
	".h":          "sourcecode.c.h",
	".hpp":        "sourcecode.cpp.h",
	".metal":      "sourcecode.metal",
	".storyboard": "file.storyboard",
	".xib":        "file.xib",
	".xcassets":   "folder.assetcatalog",
	".strings":    "text.plist.strings",
	".plist":      "text.plist.xml",
	".xcconfig":   "text.xcconfig",
	".framework":  "wrapper.framework",
	".json":       "text.json",
	".sh":         "text.script.sh",
	".md":         "net.daringfireball.markdown",
}

// Resolver implements graph.SourceResolver over an afero file system rooted
// at the project directory.
type Resolver struct {
	fs    afero.Fs
	root  string
	store *graph.Store

	files      map[string]node.Ref // keyed by tree|path
	groups     map[string]node.Ref
	rootGroups []node.Ref
	rootSeen   map[node.Ref]bool
	regions    map[string]bool

	infoPlists map[string]string // target name -> first Info.plist path
}

// NewResolver returns a resolver over the given file system and project
// root, creating its nodes in the shared store.
func NewResolver(fs afero.Fs, root string, store *graph.Store) *Resolver {
	return &Resolver{
		fs:         fs,
		root:       root,
		store:      store,
		files:      map[string]node.Ref{},
		groups:     map[string]node.Ref{},
		rootSeen:   map[node.Ref]bool{},
		regions:    map[string]bool{},
		infoPlists: map[string]string{},
	}
}

// ClassifySources resolves a target's source specs into phase-classified
// file references, building the group hierarchy as a side effect.
func (r *Resolver) ClassifySources(target *model.Target) ([]graph.ClassifiedSource, error) {
	var out []graph.ClassifiedSource
	for _, spec := range target.Sources {
		files, err := r.collectFiles(spec.Path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			cs := r.classify(file, spec)
			out = append(out, cs)
			if base := path.Base(file); base == "Info.plist" {
				if _, ok := r.infoPlists[target.Name]; !ok {
					r.infoPlists[target.Name] = file
				}
			}
		}
	}
	return out, nil
}

// collectFiles expands a source path into the files beneath it, recording
// localization regions and skipping hidden entries.
func (r *Resolver) collectFiles(sourcePath string) ([]string, error) {
	full := filepath.Join(r.root, sourcePath)
	info, err := r.fs.Stat(full)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{sourcePath}, nil
	}

	var files []string
	err = afero.Walk(r.fs, full, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") && p != full {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if strings.HasSuffix(name, ".lproj") {
				r.regions[strings.TrimSuffix(name, ".lproj")] = true
			}
			// Bundle-like directories classify as single files.
			if bundleDir(name) {
				rel, _ := filepath.Rel(r.root, p)
				files = append(files, filepath.ToSlash(rel))
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(r.root, p)
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// classify tags one file with its build phase, honoring the source spec's
// override, and interns its file reference into the group tree.
func (r *Resolver) classify(file string, spec *model.SourceSpec) graph.ClassifiedSource {
	cs := graph.ClassifiedSource{
		Path:             file,
		FileRef:          r.groupedFileReference(file),
		CompilerFlags:    spec.CompilerFlags,
		HeaderVisibility: spec.HeaderVisibility,
		CopySpec:         spec.CopySpec,
		InPhase:          true,
	}

	switch spec.PhaseOverride {
	case "sources":
		cs.Phase = node.PhaseSources
	case "resources":
		cs.Phase = node.PhaseResources
	case "headers":
		cs.Phase = node.PhaseHeaders
	case "copyFiles":
		cs.Phase = node.PhaseCopyFiles
	case "none":
		cs.InPhase = false
	default:
		cs.Phase, cs.InPhase = classifyExt(path.Ext(file), path.Base(file))
	}
	return cs
}

// classifyExt is the extension-based default classification.
func classifyExt(ext, base string) (node.PhaseKind, bool) {
	switch {
	case sourceExtensions[ext]:
		return node.PhaseSources, true
	case headerExtensions[ext]:
		return node.PhaseHeaders, true
	case base == "Info.plist":
		// The product info descriptor is referenced by settings, not copied.
		return 0, false
	case ext == ".xcconfig" || ext == ".md":
		return 0, false
	default:
		return node.PhaseResources, true
	}
}

// FileReference interns a file reference node for a path and tree kind.
// Repeated calls with the same arguments return the same reference.
func (r *Resolver) FileReference(filePath string, tree node.TreeKind) node.Ref {
	key := string(tree) + "|" + filePath
	if ref, ok := r.files[key]; ok {
		return ref
	}
	f := &node.FileReference{
		Name:          path.Base(filePath),
		Path:          filePath,
		SourceTree:    tree,
		LastKnownType: lastKnownType[path.Ext(filePath)],
	}
	ref := r.store.Create("fileRef:"+key, f)
	r.files[key] = ref
	return ref
}

// ContainedFileReference interns a standalone file (settings files and the
// like) referenced directly from the project's root group.
func (r *Resolver) ContainedFileReference(filePath string) node.Ref {
	return r.FileReference(filePath, node.TreeGroup)
}

// groupedFileReference interns the file reference and threads it into the
// group hierarchy for its directory.
func (r *Resolver) groupedFileReference(filePath string) node.Ref {
	ref := r.FileReference(filePath, node.TreeGroup)
	dir := path.Dir(filePath)
	groupRef := r.group(dir)
	g := r.store.Group(groupRef)
	for _, child := range g.Children {
		if child == ref {
			return ref
		}
	}
	g.Children = append(g.Children, ref)
	return ref
}

// group interns the group node for a directory path, wiring it into its
// parent and registering top-level directories as root groups.
func (r *Resolver) group(dir string) node.Ref {
	if ref, ok := r.groups[dir]; ok {
		return ref
	}
	g := &node.Group{Name: path.Base(dir), Path: dir, SourceTree: node.TreeGroup}
	ref := r.store.Create("group:path:"+dir, g)
	r.groups[dir] = ref

	parent := path.Dir(dir)
	if parent == "." || parent == "/" || parent == dir {
		if !r.rootSeen[ref] {
			r.rootSeen[ref] = true
			r.rootGroups = append(r.rootGroups, ref)
		}
		return ref
	}
	parentRef := r.group(parent)
	pg := r.store.Group(parentRef)
	pg.Children = append(pg.Children, ref)
	return ref
}

// RootGroups returns the top-level organic groups in creation order.
func (r *Resolver) RootGroups() []node.Ref {
	return append([]node.Ref(nil), r.rootGroups...)
}

// KnownRegions returns the sorted localization regions discovered so far,
// always including the development defaults.
func (r *Resolver) KnownRegions() []string {
	regions := map[string]bool{"en": true, "Base": true}
	for region := range r.regions {
		regions[region] = true
	}
	out := make([]string, 0, len(regions))
	for region := range regions {
		out = append(out, region)
	}
	sort.Strings(out)
	return out
}

// InfoPlistPath returns the first source file of the target literally named
// Info.plist. The scan happens during ClassifySources; targets never
// classified report no match.
func (r *Resolver) InfoPlistPath(target *model.Target) (string, bool) {
	if p, ok := r.infoPlists[target.Name]; ok {
		return p, true
	}
	for _, spec := range target.Sources {
		files, err := r.collectFiles(spec.Path)
		if err != nil {
			continue
		}
		for _, file := range files {
			if path.Base(file) == "Info.plist" {
				r.infoPlists[target.Name] = file
				return file, true
			}
		}
	}
	return "", false
}

// bundleDir reports directory extensions treated as single opaque files.
func bundleDir(name string) bool {
	switch path.Ext(name) {
	case ".xcassets", ".xcdatamodeld", ".framework", ".bundle":
		return true
	}
	return false
}
