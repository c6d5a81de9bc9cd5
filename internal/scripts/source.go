// Package scripts resolves build-script bodies for the graph compiler,
// either from inline text or by reading a file relative to the project
// root. A read failure is a recoverable compilation failure; the compiler
// wraps it with the offending target and script name.
package scripts

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/vk/projgraph/internal/model"
)

// Source reads script bodies through an afero file system.
type Source struct {
	fs   afero.Fs
	root string
}

// NewSource returns a script source rooted at the project directory.
func NewSource(fs afero.Fs, root string) *Source {
	return &Source{fs: fs, root: root}
}

// Resolve returns the script's body: the inline text when present,
// otherwise the contents of the file at the script's path.
func (s *Source) Resolve(script *model.BuildScript) (string, error) {
	if script.Inline != "" {
		return script.Inline, nil
	}
	if script.Path == "" {
		return "", fmt.Errorf("script has neither inline body nor path")
	}
	body, err := afero.ReadFile(s.fs, filepath.Join(s.root, script.Path))
	if err != nil {
		return "", fmt.Errorf("reading script file %s: %w", script.Path, err)
	}
	return string(body), nil
}
