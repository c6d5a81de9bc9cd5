package scripts

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/projgraph/internal/model"
)

func TestResolve_InlineWins(t *testing.T) {
	t.Parallel()

	s := NewSource(afero.NewMemMapFs(), "/proj")

	body, err := s.Resolve(&model.BuildScript{Name: "Lint", Inline: "swiftlint\n", Path: "ignored.sh"})

	require.NoError(t, err)
	assert.Equal(t, "swiftlint\n", body)
}

func TestResolve_ReadsFileRelativeToRoot(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/scripts/gen.sh", []byte("echo hi\n"), 0o755))
	s := NewSource(fs, "/proj")

	body, err := s.Resolve(&model.BuildScript{Name: "Gen", Path: "scripts/gen.sh"})

	require.NoError(t, err)
	assert.Equal(t, "echo hi\n", body)
}

func TestResolve_MissingFile(t *testing.T) {
	t.Parallel()

	s := NewSource(afero.NewMemMapFs(), "/proj")

	_, err := s.Resolve(&model.BuildScript{Name: "Gen", Path: "scripts/gone.sh"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scripts/gone.sh")
}

func TestResolve_EmptyScript(t *testing.T) {
	t.Parallel()

	s := NewSource(afero.NewMemMapFs(), "/proj")

	_, err := s.Resolve(&model.BuildScript{Name: "Empty"})

	assert.Error(t, err)
}
