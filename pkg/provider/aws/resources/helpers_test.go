package resources

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
)

type testScope struct {
	name  string
	graph *construct.ResourceGraph
}

func newTestScope(name string) *testScope {
	return &testScope{name: name, graph: construct.NewResourceGraph()}
}

func (s *testScope) Name() string {
	return s.name
}

func (s *testScope) Add(res construct.Resource) error {
	return s.graph.AddDependenciesReflect(res)
}
