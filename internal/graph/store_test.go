package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/projgraph/internal/node"
)

func TestStore_StableIdentifiers(t *testing.T) {
	t.Parallel()

	// Arrange: two independent stores receiving the same logical ids.
	a := NewStore()
	b := NewStore()

	// Act
	refA := a.Create("target:App", &node.TargetNode{Name: "App"})
	refB := b.Create("target:App", &node.TargetNode{Name: "App"})

	// Assert: same logical node, same identifier, across compilations.
	assert.Equal(t, refA, refB)
	assert.Len(t, string(refA), 24)
}

func TestStore_Lookup(t *testing.T) {
	t.Parallel()

	s := NewStore()
	tn := &node.TargetNode{Name: "App"}
	ref := s.Create("target:App", tn)

	got, ok := s.Get(ref)
	require.True(t, ok)
	assert.Same(t, tn, got)

	_, ok = s.Get(node.Ref("000000000000000000000000"))
	assert.False(t, ok)
}

func TestStore_DuplicateLogicalIDPanics(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Create("target:App", &node.TargetNode{Name: "App"})

	assert.Panics(t, func() {
		s.Create("target:App", &node.TargetNode{Name: "Other"})
	})
}

func TestStore_SameNodeReregistrationIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	tn := &node.TargetNode{Name: "App"}
	ref := s.Create("target:App", tn)

	assert.Equal(t, ref, s.Create("target:App", tn))
	assert.Equal(t, 1, s.Len())
}

func TestStore_CreateAfterSealPanics(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Seal()

	require.True(t, s.Sealed())
	assert.Panics(t, func() {
		s.Create("target:App", &node.TargetNode{Name: "App"})
	})
}
