package sources

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/projgraph/internal/graph"
	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/node"
)

func newFixtureFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := []string{
		"/proj/App/main.swift",
		"/proj/App/AppDelegate.h",
		"/proj/App/Info.plist",
		"/proj/App/Assets.xcassets/Contents.json",
		"/proj/App/en.lproj/Main.strings",
		"/proj/App/de.lproj/Main.strings",
		"/proj/App/.DS_Store",
		"/proj/App/NOTES.md",
	}
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("x"), 0o644))
	}
	return fs
}

func classifyApp(t *testing.T, r *Resolver) map[string]graph.ClassifiedSource {
	t.Helper()
	target := &model.Target{
		Name:    "App",
		Type:    model.ProductApplication,
		Sources: []*model.SourceSpec{{Path: "App"}},
	}
	classified, err := r.ClassifySources(target)
	require.NoError(t, err)
	byPath := map[string]graph.ClassifiedSource{}
	for _, cs := range classified {
		byPath[cs.Path] = cs
	}
	return byPath
}

func TestClassifySources_ExtensionRouting(t *testing.T) {
	t.Parallel()

	r := NewResolver(newFixtureFs(t), "/proj", graph.NewStore())
	byPath := classifyApp(t, r)

	swift, ok := byPath["App/main.swift"]
	require.True(t, ok)
	assert.Equal(t, node.PhaseSources, swift.Phase)
	assert.True(t, swift.InPhase)

	header := byPath["App/AppDelegate.h"]
	assert.Equal(t, node.PhaseHeaders, header.Phase)

	// The asset catalog directory classifies as one opaque resource.
	catalog, ok := byPath["App/Assets.xcassets"]
	require.True(t, ok)
	assert.Equal(t, node.PhaseResources, catalog.Phase)
	_, leaked := byPath["App/Assets.xcassets/Contents.json"]
	assert.False(t, leaked)

	// Info.plist and markdown are referenced but built into no phase.
	assert.False(t, byPath["App/Info.plist"].InPhase)
	assert.False(t, byPath["App/NOTES.md"].InPhase)

	// Hidden files never surface.
	_, hidden := byPath["App/.DS_Store"]
	assert.False(t, hidden)

	// Localized resources classify normally.
	assert.Equal(t, node.PhaseResources, byPath["App/en.lproj/Main.strings"].Phase)
}

func TestClassifySources_IdempotentReferences(t *testing.T) {
	t.Parallel()

	store := graph.NewStore()
	r := NewResolver(newFixtureFs(t), "/proj", store)

	first := classifyApp(t, r)
	nodeCount := store.Len()
	second := classifyApp(t, r)

	// Re-classifying creates no new nodes and returns identical refs.
	assert.Equal(t, nodeCount, store.Len())
	for path, cs := range first {
		assert.Equal(t, cs.FileRef, second[path].FileRef, path)
	}

	// The App group holds each child once.
	groups := r.RootGroups()
	require.Len(t, groups, 1)
	app := store.Group(groups[0])
	require.NotNil(t, app)
	seen := map[node.Ref]bool{}
	for _, child := range app.Children {
		assert.False(t, seen[child], "duplicate child in group")
		seen[child] = true
	}
}

func TestClassifySources_PhaseOverride(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/Docs/guide.md", []byte("x"), 0o644))
	r := NewResolver(fs, "/proj", graph.NewStore())

	target := &model.Target{
		Name: "App",
		Type: model.ProductApplication,
		Sources: []*model.SourceSpec{{
			Path:          "Docs/guide.md",
			PhaseOverride: "resources",
		}},
	}
	classified, err := r.ClassifySources(target)
	require.NoError(t, err)
	require.Len(t, classified, 1)
	assert.Equal(t, node.PhaseResources, classified[0].Phase)
	assert.True(t, classified[0].InPhase)
}

func TestClassifySources_MissingPathFails(t *testing.T) {
	t.Parallel()

	r := NewResolver(afero.NewMemMapFs(), "/proj", graph.NewStore())
	target := &model.Target{
		Name:    "App",
		Sources: []*model.SourceSpec{{Path: "Gone"}},
	}

	_, err := r.ClassifySources(target)
	assert.Error(t, err)
}

func TestKnownRegions(t *testing.T) {
	t.Parallel()

	r := NewResolver(newFixtureFs(t), "/proj", graph.NewStore())
	classifyApp(t, r)

	assert.Equal(t, []string{"Base", "de", "en"}, r.KnownRegions())
}

func TestInfoPlistPath(t *testing.T) {
	t.Parallel()

	r := NewResolver(newFixtureFs(t), "/proj", graph.NewStore())
	target := &model.Target{
		Name:    "App",
		Sources: []*model.SourceSpec{{Path: "App"}},
	}

	// Works before any classification via the fallback scan.
	path, ok := r.InfoPlistPath(target)
	require.True(t, ok)
	assert.Equal(t, "App/Info.plist", path)

	// Unknown targets report no match.
	_, ok = r.InfoPlistPath(&model.Target{Name: "Other"})
	assert.False(t, ok)
}

func TestFileReference_LastKnownType(t *testing.T) {
	t.Parallel()

	store := graph.NewStore()
	r := NewResolver(afero.NewMemMapFs(), "/proj", store)

	ref := r.FileReference("Vendor/Lib.framework", node.TreeSourceRoot)
	f := store.FileReference(ref)
	require.NotNil(t, f)
	assert.Equal(t, "Lib.framework", f.Name)
	assert.Equal(t, "wrapper.framework", f.LastKnownType)
	assert.Equal(t, node.TreeSourceRoot, f.SourceTree)
}

func TestGroupHierarchy(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/App/Models/User.swift", []byte("x"), 0o644))
	store := graph.NewStore()
	r := NewResolver(fs, "/proj", store)

	target := &model.Target{
		Name:    "App",
		Sources: []*model.SourceSpec{{Path: "App"}},
	}
	_, err := r.ClassifySources(target)
	require.NoError(t, err)

	// App is the sole root; Models nests beneath it.
	roots := r.RootGroups()
	require.Len(t, roots, 1)
	app := store.Group(roots[0])
	require.NotNil(t, app)
	assert.Equal(t, "App", app.Name)
	require.Len(t, app.Children, 1)
	models := store.Group(app.Children[0])
	require.NotNil(t, models)
	assert.Equal(t, "Models", models.Name)
	require.Len(t, models.Children, 1)
	file := store.FileReference(models.Children[0])
	require.NotNil(t, file)
	assert.Equal(t, "User.swift", file.Name)
}
