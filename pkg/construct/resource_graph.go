package construct

import (
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	// ResourceGraph holds every declared resource. An edge `A -> B` means A depends on B.
	ResourceGraph struct {
		underlying graph.Graph[ResourceId, Resource]
	}

	Dependency struct {
		Source ResourceId
		Target ResourceId
	}
)

func NewResourceGraph() *ResourceGraph {
	return &ResourceGraph{
		underlying: graph.New(
			func(r Resource) ResourceId {
				return r.Id()
			},
			graph.Directed(),
			graph.Acyclic(),
			graph.PreventCycles(),
		),
	}
}

// AddResource adds the resource to the graph. Adding the same resource twice is a no-op, but adding a different
// resource with an id already in use is an error.
func (rg *ResourceGraph) AddResource(res Resource) error {
	id := res.Id()
	if err := id.Validate(); err != nil {
		return err
	}
	if existing := rg.GetResource(id); existing != nil {
		if existing == res {
			return nil
		}
		return errors.Errorf("resource %s already exists", id)
	}
	if err := rg.underlying.AddVertex(res); err != nil {
		return errors.Wrapf(err, "could not add resource %s", id)
	}
	zap.S().Debugf("adding resource: %s", id)
	return nil
}

// AddDependency adds the edge `source -> target`. Both resources must already be in the graph.
func (rg *ResourceGraph) AddDependency(source, target ResourceId) error {
	err := rg.underlying.AddEdge(source, target)
	switch {
	case err == nil:
		zap.S().Debugf("adding %s -> %s", source, target)
		return nil
	case errors.Is(err, graph.ErrEdgeAlreadyExists):
		return nil
	case errors.Is(err, graph.ErrEdgeCreatesCycle):
		return errors.Errorf("dependency %s -> %s would create a cycle", source, target)
	case errors.Is(err, graph.ErrVertexNotFound):
		return errors.Errorf("dependency %s -> %s references an undeclared resource", source, target)
	}
	return errors.Wrapf(err, "could not add dependency %s -> %s", source, target)
}

// AddDependenciesReflect adds the resource and an edge to each resource it references (see [DirectDependencies]).
// Nothing is added if any referenced resource is missing.
func (rg *ResourceGraph) AddDependenciesReflect(res Resource) error {
	deps := DirectDependencies(res)
	for _, dep := range deps {
		if rg.GetResource(dep) == nil {
			return errors.Errorf("%s references undeclared resource %s", res.Id(), dep)
		}
	}
	if err := rg.AddResource(res); err != nil {
		return err
	}
	for _, dep := range deps {
		if err := rg.AddDependency(res.Id(), dep); err != nil {
			return err
		}
	}
	return nil
}

func (rg *ResourceGraph) GetResource(id ResourceId) Resource {
	res, err := rg.underlying.Vertex(id)
	if err != nil {
		return nil
	}
	return res
}

// GetResource returns the resource with the given id if it exists and is of type T.
func GetResource[T Resource](rg *ResourceGraph, id ResourceId) (T, bool) {
	var zero T
	res := rg.GetResource(id)
	if res == nil {
		return zero, false
	}
	typed, ok := res.(T)
	return typed, ok
}

// ListResources returns all resources sorted by id.
func (rg *ResourceGraph) ListResources() []Resource {
	adj, err := rg.underlying.AdjacencyMap()
	if err != nil {
		// in-memory store, never errors
		panic(err)
	}
	ids := make([]ResourceId, 0, len(adj))
	for id := range adj {
		ids = append(ids, id)
	}
	sort.Sort(sortedIds(ids))
	resources := make([]Resource, 0, len(ids))
	for _, id := range ids {
		resources = append(resources, rg.GetResource(id))
	}
	return resources
}

// ListDependencies returns all edges sorted by source then target.
func (rg *ResourceGraph) ListDependencies() []Dependency {
	adj, err := rg.underlying.AdjacencyMap()
	if err != nil {
		panic(err)
	}
	var deps []Dependency
	for source, targets := range adj {
		for target := range targets {
			deps = append(deps, Dependency{Source: source, Target: target})
		}
	}
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return ResourceIdLess(deps[i].Source, deps[j].Source)
		}
		return ResourceIdLess(deps[i].Target, deps[j].Target)
	})
	return deps
}

// DownstreamDependencies returns the resources `id` directly depends on.
func (rg *ResourceGraph) DownstreamDependencies(id ResourceId) []ResourceId {
	adj, err := rg.underlying.AdjacencyMap()
	if err != nil {
		panic(err)
	}
	ids := make([]ResourceId, 0, len(adj[id]))
	for target := range adj[id] {
		ids = append(ids, target)
	}
	sort.Sort(sortedIds(ids))
	return ids
}

// UpstreamDependencies returns the resources that directly depend on `id`.
func (rg *ResourceGraph) UpstreamDependencies(id ResourceId) []ResourceId {
	pred, err := rg.underlying.PredecessorMap()
	if err != nil {
		panic(err)
	}
	ids := make([]ResourceId, 0, len(pred[id]))
	for source := range pred[id] {
		ids = append(ids, source)
	}
	sort.Sort(sortedIds(ids))
	return ids
}

// TopologicalSort returns the ids with dependencies before their dependents.
func (rg *ResourceGraph) TopologicalSort() ([]ResourceId, error) {
	return TopologicalSort(rg.underlying)
}

func (rg *ResourceGraph) Len() int {
	adj, err := rg.underlying.AdjacencyMap()
	if err != nil {
		panic(err)
	}
	return len(adj)
}
