package graph

import (
	"context"
	"sort"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/model"
)

// ResolvedDependency is one dependency edge with its tri-state flags
// resolved into concrete link/embed/code-sign decisions relative to a
// specific dependent target.
type ResolvedDependency struct {
	Dependency *model.Dependency

	// Target is set for target-kind dependencies naming a native target;
	// Aggregate for ones naming an aggregate target.
	Target    *model.Target
	Aggregate *model.AggregateTarget

	Link     bool
	Embed    bool
	CodeSign bool
	Bucket   EmbedBucket
}

// RemoveHeaders reports whether the embedded copy should drop headers.
func (r *ResolvedDependency) RemoveHeaders() bool {
	return r.Dependency.RemoveHeaders
}

// resolver computes dependency sets over the immutable spec. It holds no
// per-compilation state; all accumulation lives on the compiler.
type resolver struct {
	spec *model.ProjectSpec
}

// resolve decides one dependency's flags relative to the dependent target,
// looking up the referenced target when the dependency is target-kind. An
// unknown reference is a fatal configuration error.
func (r *resolver) resolve(dep *model.Dependency, dependent *model.Target) (*ResolvedDependency, error) {
	rd := &ResolvedDependency{Dependency: dep}

	depProduct := model.ProductFramework
	depPlatform := dependent.Platform
	if dep.Kind == model.DependencyTarget {
		if t := r.spec.Target(dep.Reference); t != nil {
			rd.Target = t
			depProduct = t.Type
			depPlatform = t.Platform
		} else if a := r.spec.AggregateTarget(dep.Reference); a != nil {
			// Aggregate targets produce nothing; the edge only orders builds.
			rd.Aggregate = a
			return rd, nil
		} else {
			return nil, &UnknownTargetError{Dependent: dependent.Name, Reference: dep.Reference}
		}
	}

	d := decideDependency(dep, depProduct, depPlatform, dependent.Type)
	rd.Link = d.Link
	rd.Embed = d.Embed
	rd.CodeSign = d.CodeSign
	rd.Bucket = d.Bucket
	return rd, nil
}

// resolveDirect resolves each of the target's declared dependencies in
// declaration order. A reference declared more than once keeps its first
// declaration only, consistent with the first-seen-wins rule of the
// transitive walk.
func (r *resolver) resolveDirect(target *model.Target) ([]*ResolvedDependency, error) {
	seen := map[string]bool{}
	resolved := make([]*ResolvedDependency, 0, len(target.Dependencies))
	for _, dep := range target.Dependencies {
		if seen[dep.Reference] {
			continue
		}
		seen[dep.Reference] = true
		rd, err := r.resolve(dep, target)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, rd)
	}
	return resolved, nil
}

// resolveTransitiveEmbeddable walks the target dependency graph breadth
// first and collects one dependency per distinct reference, first seen wins,
// so the starting target's own declarations always override ones discovered
// transitively. A visited set makes cycles terminate. Targets that embed
// their own dependencies are not traversed past (their dependencies are
// already embedded in them), except for the traversal's starting target.
func (r *resolver) resolveTransitiveEmbeddable(ctx context.Context, start *model.Target) ([]*model.Dependency, error) {
	logger := ctxlog.FromContext(ctx)

	visited := map[string]bool{start.Name: true}
	seen := map[string]bool{}
	var collected []*model.Dependency
	queue := []*model.Target{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current != start && current.ShouldEmbedDependencies() {
			logger.Debug("resolver: not traversing past self-embedding target", "target", current.Name)
			continue
		}

		for _, dep := range current.Dependencies {
			if !seen[dep.Reference] {
				seen[dep.Reference] = true
				collected = append(collected, dep)
			}
			if dep.Kind != model.DependencyTarget {
				continue
			}
			next := r.spec.Target(dep.Reference)
			if next == nil {
				if r.spec.AggregateTarget(dep.Reference) != nil {
					continue
				}
				return nil, &UnknownTargetError{Dependent: current.Name, Reference: dep.Reference}
			}
			if !visited[next.Name] {
				visited[next.Name] = true
				queue = append(queue, next)
			}
		}
	}

	return collected, nil
}

// resolvePackaged performs the same BFS restricted to packaged-binary
// dependencies, seeded with one or more target names so an aggregate
// target's listed sub-targets aggregate together. The result is keyed by
// reference name, first seen wins, and sorted by key for determinism.
func (r *resolver) resolvePackaged(startNames ...string) ([]*model.Dependency, error) {
	visited := map[string]bool{}
	byName := map[string]*model.Dependency{}
	var queue []*model.Target

	for _, name := range startNames {
		if t := r.spec.Target(name); t != nil && !visited[t.Name] {
			visited[t.Name] = true
			queue = append(queue, t)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dep := range current.Dependencies {
			switch dep.Kind {
			case model.DependencyPackaged:
				// First seen during the BFS wins; later discoveries of the
				// same binary never overwrite an earlier declaration.
				if _, ok := byName[dep.Reference]; !ok {
					byName[dep.Reference] = dep
				}
			case model.DependencyTarget:
				next := r.spec.Target(dep.Reference)
				if next == nil {
					if r.spec.AggregateTarget(dep.Reference) != nil {
						continue
					}
					return nil, &UnknownTargetError{Dependent: current.Name, Reference: dep.Reference}
				}
				if !visited[next.Name] {
					visited[next.Name] = true
					queue = append(queue, next)
				}
			}
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]*model.Dependency, 0, len(names))
	for _, name := range names {
		deps = append(deps, byName[name])
	}
	return deps, nil
}

// requiresObjCLinking reports whether any resolved dependency forces the
// dependent to link with -ObjC (a static library whose symbols must be
// force-loaded).
func requiresObjCLinking(resolved []*ResolvedDependency) bool {
	for _, rd := range resolved {
		if rd.Target != nil && rd.Link && rd.Target.DefaultsToObjCLinking() {
			return true
		}
	}
	return false
}
