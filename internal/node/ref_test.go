package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeRef(t *testing.T) {
	t.Parallel()

	ref := MakeRef("target:App")

	// 24 uppercase hex characters, stable across calls.
	assert.Len(t, string(ref), 24)
	assert.Regexp(t, "^[0-9A-F]{24}$", string(ref))
	assert.Equal(t, ref, MakeRef("target:App"))
	assert.NotEqual(t, ref, MakeRef("target:Other"))
}
