package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appSpec = `
project "Demo" {
  config "Debug" {
    type = "debug"
  }
  config "Release" {
    type = "release"
  }

  target "App" {
    type     = "application"
    platform = "iOS"
    sources  = ["App"]

    dependency {
      target = "Lib"
    }
  }

  target "Lib" {
    type     = "framework"
    platform = "iOS"
    sources  = ["Lib"]
  }
}
`

func newProjectFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/proj/project.hcl":    appSpec,
		"/proj/App/main.swift": "print(\"hi\")\n",
		"/proj/App/Info.plist": "<plist/>\n",
		"/proj/Lib/Lib.swift":  "public struct Lib {}\n",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func runApp(t *testing.T, fs afero.Fs) string {
	t.Helper()
	config, err := NewConfig(Config{
		SpecPath:  "/proj/project.hcl",
		OutPath:   "/proj/Demo.pbxproj",
		LogFormat: "text",
		LogLevel:  "error",
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	require.NoError(t, NewApp(out, config).WithFs(fs).Run(context.Background()))

	written, err := afero.ReadFile(fs, "/proj/Demo.pbxproj")
	require.NoError(t, err)
	return string(written)
}

func TestRun_WritesProjectFile(t *testing.T) {
	t.Parallel()

	text := runApp(t, newProjectFs(t))

	assert.Contains(t, text, "// !$*UTF8*$!")
	assert.Contains(t, text, "isa = PBXProject;")
	assert.Contains(t, text, "isa = PBXNativeTarget;")
	assert.Contains(t, text, "name = App;")
	assert.Contains(t, text, "name = Lib;")
	assert.Contains(t, text, "INFOPLIST_FILE = App/Info.plist;")
}

func TestRun_DeterministicOutput(t *testing.T) {
	t.Parallel()

	first := runApp(t, newProjectFs(t))
	second := runApp(t, newProjectFs(t))

	assert.Equal(t, first, second)
}

func TestRun_MissingSpecFails(t *testing.T) {
	t.Parallel()

	config, err := NewConfig(Config{SpecPath: "/nowhere.hcl", LogFormat: "text", LogLevel: "error"})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	err = NewApp(out, config).WithFs(afero.NewMemMapFs()).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load project spec")
}

func TestNewConfig_RequiresSpecPath(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{})
	assert.Error(t, err)
}
