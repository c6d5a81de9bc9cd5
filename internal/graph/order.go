package graph

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/node"
)

// orderer sorts groups and targets into a deterministic, locale-aware order
// so repeated compilations of the same input serialize identically.
type orderer struct {
	collator *collate.Collator
	position model.GroupSortPosition
}

func newOrderer(position model.GroupSortPosition) *orderer {
	if position == "" {
		position = model.GroupsFirst
	}
	return &orderer{
		collator: collate.New(language.Und, collate.IgnoreCase, collate.Loose),
		position: position,
	}
}

// sortGroupTree orders a group's direct children and recurses into child
// groups. Children sort by a two-key comparator: the configurable group
// sort position first, then a locale-aware case-insensitive comparison of
// name-or-path. Synthetic top-level groups are appended after organic
// children, themselves sorted by the name comparator alone.
func (o *orderer) sortGroupTree(store *Store, ref node.Ref) {
	group := store.Group(ref)
	if group == nil {
		return
	}

	var organic, synthetic []node.Ref
	for _, child := range group.Children {
		if g := store.Group(child); g != nil && g.Synthetic {
			synthetic = append(synthetic, child)
			continue
		}
		organic = append(organic, child)
	}

	sort.SliceStable(organic, func(i, j int) bool {
		a, b := organic[i], organic[j]
		if pa, pb := o.groupPosition(store, a), o.groupPosition(store, b); pa != pb {
			return pa < pb
		}
		return o.collator.CompareString(o.nameOrPath(store, a), o.nameOrPath(store, b)) < 0
	})
	sort.SliceStable(synthetic, func(i, j int) bool {
		return o.collator.CompareString(o.nameOrPath(store, synthetic[i]), o.nameOrPath(store, synthetic[j])) < 0
	})

	group.Children = append(organic, synthetic...)
	for _, child := range group.Children {
		o.sortGroupTree(store, child)
	}
}

// sortTargets orders target refs by target name with the same comparator.
func (o *orderer) sortTargets(store *Store, refs []node.Ref) {
	sort.SliceStable(refs, func(i, j int) bool {
		return o.collator.CompareString(o.targetName(store, refs[i]), o.targetName(store, refs[j])) < 0
	})
}

// groupPosition is the primary sort key: groups pin first, last, or mix in
// with files depending on the configured position.
func (o *orderer) groupPosition(store *Store, ref node.Ref) int {
	isGroup := store.Group(ref) != nil
	switch o.position {
	case model.GroupsFirst:
		if isGroup {
			return 0
		}
		return 1
	case model.GroupsLast:
		if isGroup {
			return 1
		}
		return 0
	}
	return 0
}

func (o *orderer) nameOrPath(store *Store, ref node.Ref) string {
	if g := store.Group(ref); g != nil {
		if g.Name != "" {
			return g.Name
		}
		return g.Path
	}
	if f := store.FileReference(ref); f != nil {
		if f.Name != "" {
			return f.Name
		}
		return f.Path
	}
	return string(ref)
}

func (o *orderer) targetName(store *Store, ref node.Ref) string {
	if n, ok := store.Get(ref); ok {
		if t, ok := n.(*node.TargetNode); ok {
			return t.Name
		}
	}
	return string(ref)
}
