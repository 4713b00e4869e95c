package construct

import (
	"github.com/dominikbraun/graph"
)

// sortedIds is a helper type for sorting ResourceIds by purely their content, for use when deterministic ordering
// is desired (when no other sources of ordering are available).
type sortedIds []ResourceId

func (s sortedIds) Len() int {
	return len(s)
}

func ResourceIdLess(a, b ResourceId) bool {
	if a.Provider != b.Provider {
		return a.Provider < b.Provider
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.Namespace != b.Namespace {
		return a.Namespace < b.Namespace
	}
	return a.Name < b.Name
}

func (s sortedIds) Less(i, j int) bool {
	return ResourceIdLess(s[i], s[j])
}

func (s sortedIds) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// TopologicalSort provides a stable topological ordering of resource IDs where every resource comes after
// all of its dependencies.
func TopologicalSort(g graph.Graph[ResourceId, Resource]) ([]ResourceId, error) {
	order, err := graph.StableTopologicalSort(g, ResourceIdLess)
	if err != nil {
		return nil, err
	}
	// edges point from the dependent to its dependency, so the graph order is dependents first
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}
