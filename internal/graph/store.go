package graph

import (
	"fmt"

	"github.com/vk/projgraph/internal/node"
)

// Store assigns stable identities to compiled nodes and owns them for the
// lifetime of the graph. Nodes are registered under a caller-supplied
// logical id; the same logical id always yields the same reference, and no
// node is ever removed.
type Store struct {
	nodes  map[node.Ref]node.Node
	order  []node.Ref // insertion order, for deterministic iteration
	sealed bool
}

// NewStore returns an empty, unsealed store.
func NewStore() *Store {
	return &Store{nodes: map[node.Ref]node.Node{}}
}

// Create registers n under the given logical id and returns its stable
// reference. Registering two different nodes under one logical id, or
// creating after Seal, is a programming error and panics.
func (s *Store) Create(logicalID string, n node.Node) node.Ref {
	if s.sealed {
		panic("graph: Create on a sealed store")
	}
	ref := node.MakeRef(logicalID)
	if existing, ok := s.nodes[ref]; ok {
		if existing != n {
			panic(fmt.Sprintf("graph: logical id %q already registered", logicalID))
		}
		return ref
	}
	s.nodes[ref] = n
	s.order = append(s.order, ref)
	return ref
}

// Get returns the node registered under ref. Lookup is O(1).
func (s *Store) Get(ref node.Ref) (node.Node, bool) {
	n, ok := s.nodes[ref]
	return n, ok
}

// Group returns the node under ref as a *node.Group, or nil.
func (s *Store) Group(ref node.Ref) *node.Group {
	g, _ := s.nodes[ref].(*node.Group)
	return g
}

// FileReference returns the node under ref as a *node.FileReference, or nil.
func (s *Store) FileReference(ref node.Ref) *node.FileReference {
	f, _ := s.nodes[ref].(*node.FileReference)
	return f
}

// Refs returns every registered reference in insertion order.
func (s *Store) Refs() []node.Ref {
	return append([]node.Ref(nil), s.order...)
}

// Len returns the number of registered nodes.
func (s *Store) Len() int { return len(s.nodes) }

// Seal freezes the store. Any later Create panics.
func (s *Store) Seal() { s.sealed = true }

// Sealed reports whether the store has been frozen.
func (s *Store) Sealed() bool { return s.sealed }
