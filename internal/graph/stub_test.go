package graph

import (
	"fmt"

	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/node"
)

// stubSources is an in-memory SourceResolver for compiler tests.
type stubSources struct {
	store      *Store
	classified map[string][]ClassifiedSource
	infoPlists map[string]string
	files      map[string]node.Ref
	roots      []node.Ref
	regions    []string
}

func newStubSources(store *Store) *stubSources {
	return &stubSources{
		store:      store,
		classified: map[string][]ClassifiedSource{},
		infoPlists: map[string]string{},
		files:      map[string]node.Ref{},
		regions:    []string{"Base", "en"},
	}
}

// addSource registers a classified source file for a target, creating its
// file reference on first use.
func (s *stubSources) addSource(targetName, path string, phase node.PhaseKind) {
	s.classified[targetName] = append(s.classified[targetName], ClassifiedSource{
		Path:    path,
		FileRef: s.FileReference(path, node.TreeGroup),
		Phase:   phase,
		InPhase: true,
	})
}

func (s *stubSources) ClassifySources(target *model.Target) ([]ClassifiedSource, error) {
	return s.classified[target.Name], nil
}

func (s *stubSources) FileReference(path string, tree node.TreeKind) node.Ref {
	key := string(tree) + "|" + path
	if ref, ok := s.files[key]; ok {
		return ref
	}
	ref := s.store.Create("fileRef:"+key, &node.FileReference{
		Name:       path,
		Path:       path,
		SourceTree: tree,
	})
	s.files[key] = ref
	return ref
}

func (s *stubSources) ContainedFileReference(path string) node.Ref {
	return s.FileReference(path, node.TreeGroup)
}

func (s *stubSources) RootGroups() []node.Ref { return s.roots }

func (s *stubSources) KnownRegions() []string { return s.regions }

func (s *stubSources) InfoPlistPath(target *model.Target) (string, bool) {
	path, ok := s.infoPlists[target.Name]
	return path, ok
}

// stubScripts resolves inline bodies and fails for configured script names.
type stubScripts struct {
	fail map[string]error
}

func (s *stubScripts) Resolve(script *model.BuildScript) (string, error) {
	if err, ok := s.fail[script.Name]; ok {
		return "", err
	}
	if script.Inline != "" {
		return script.Inline, nil
	}
	return "", fmt.Errorf("no body for script %q", script.Name)
}
