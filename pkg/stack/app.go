package stack

import (
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization/aws"
	"github.com/pkg/errors"
)

// App holds every stack of a deployment and the single resource graph they share, so resources can reference
// resources of other stacks.
type App struct {
	Name   string
	graph  *construct.ResourceGraph
	stacks []*Stack
}

func NewApp(name string) *App {
	return &App{
		Name:  name,
		graph: construct.NewResourceGraph(),
	}
}

// NewStack adds a stack to the app. The stack's pseudo parameters (region, account, ...) are declared immediately.
func (a *App) NewStack(name string, env config.Environment) (*Stack, error) {
	sanitized := aws.StackNameSanitizer.Apply(name)
	if sanitized == "" {
		return nil, errors.Errorf("invalid stack name '%s'", name)
	}
	if a.Stack(sanitized) != nil {
		return nil, errors.Errorf("stack %s already exists", sanitized)
	}
	s := &Stack{name: sanitized, env: env, app: a}
	a.stacks = append(a.stacks, s)

	pseudo, err := resources.CreatePseudoParameters(s, env.Account, env.Region)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create stack %s", sanitized)
	}
	s.pseudo = pseudo
	return s, nil
}

func (a *App) Graph() *construct.ResourceGraph {
	return a.graph
}

func (a *App) Stack(name string) *Stack {
	for _, s := range a.stacks {
		if s.name == name {
			return s
		}
	}
	return nil
}

// StackOf returns the stack that declared the resource.
func (a *App) StackOf(id construct.ResourceId) *Stack {
	return a.Stack(id.Namespace)
}

// Stacks returns the stacks in the order they were created.
func (a *App) Stacks() []*Stack {
	return append([]*Stack(nil), a.stacks...)
}

// StackOrder returns the stacks with every stack after the stacks it depends on. Stacks that do not depend on each
// other keep their creation order.
func (a *App) StackOrder() ([]*Stack, error) {
	g, err := a.stackGraph()
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(a.stacks))
	for i, s := range a.stacks {
		index[s.name] = i
	}
	// edges point from dependent to dependency, so sort the reverse of creation order then flip
	order, err := graph.StableTopologicalSort(g, func(x, y string) bool {
		return index[x] > index[y]
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not order stacks")
	}
	stacks := make([]*Stack, len(order))
	for i, name := range order {
		stacks[len(order)-1-i] = a.Stack(name)
	}
	return stacks, nil
}

// stackGraph builds the stack dependency graph from the resource dependencies crossing stack boundaries.
// References to pseudo parameters never cross stacks since each stack resolves its own.
func (a *App) stackGraph() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())
	for _, s := range a.stacks {
		if err := g.AddVertex(s.name); err != nil {
			return nil, err
		}
	}
	for _, dep := range a.graph.ListDependencies() {
		if dep.Source.Namespace == dep.Target.Namespace || resources.IsPseudo(dep.Target) {
			continue
		}
		err := g.AddEdge(dep.Source.Namespace, dep.Target.Namespace)
		switch {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			return nil, errors.Errorf("%s -> %s makes stack %s depend on %s, which already depends on it",
				dep.Source, dep.Target, dep.Source.Namespace, dep.Target.Namespace)
		case errors.Is(err, graph.ErrVertexNotFound):
			return nil, errors.Errorf("%s -> %s references a resource outside of any stack", dep.Source, dep.Target)
		default:
			return nil, err
		}
	}
	return g, nil
}

func targets(g graph.Graph[string, string], name string) ([]string, error) {
	adj, err := g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	deps := make([]string, 0, len(adj[name]))
	for target := range adj[name] {
		deps = append(deps, target)
	}
	sort.Strings(deps)
	return deps, nil
}
