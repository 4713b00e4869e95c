package stack

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	// Stack is a unit of deployment: every resource declared in it ends up in the same template.
	Stack struct {
		name        string
		description string
		env         config.Environment
		app         *App
		pseudo      *resources.PseudoParameters

		resources []construct.ResourceId
		outputs   []Output
	}

	// Output is a value published by a stack once deployed.
	Output struct {
		Name        string
		Description string
		// Value is a string, [construct.IaCValue] or [construct.Join].
		Value any
	}
)

func (s *Stack) Name() string {
	return s.name
}

func (s *Stack) Description() string {
	return s.description
}

func (s *Stack) SetDescription(description string) {
	s.description = description
}

// Env is the account and region the stack is pinned to. Empty fields are resolved at deploy time.
func (s *Stack) Env() config.Environment {
	return s.env
}

func (s *Stack) Pseudo() *resources.PseudoParameters {
	return s.pseudo
}

// Add declares the resource in this stack and records a dependency on every resource it references, which must
// already be declared (in this stack or another). Adding a resource again re-scans its references.
func (s *Stack) Add(res construct.Resource) error {
	id := res.Id()
	if id.Namespace != s.name {
		return errors.Errorf("resource %s cannot be declared in stack %s", id, s.name)
	}
	if err := s.app.graph.AddDependenciesReflect(res); err != nil {
		return errors.Wrapf(err, "could not add %s to stack %s", id, s.name)
	}
	for _, existing := range s.resources {
		if existing == id {
			return nil
		}
	}
	zap.L().Named("stack").Debug("declared resource", zap.String("stack", s.name), zap.Stringer("id", id))
	s.resources = append(s.resources, id)
	return nil
}

// Resources returns the stack's resources in the order they were declared.
func (s *Stack) Resources() []construct.Resource {
	res := make([]construct.Resource, len(s.resources))
	for i, id := range s.resources {
		res[i] = s.app.graph.GetResource(id)
	}
	return res
}

// AddOutput publishes a named value from the stack.
func (s *Stack) AddOutput(name, description string, value any) error {
	for _, o := range s.outputs {
		if o.Name == name {
			return errors.Errorf("stack %s already has an output named %s", s.name, name)
		}
	}
	s.outputs = append(s.outputs, Output{Name: name, Description: description, Value: value})
	return nil
}

func (s *Stack) Outputs() []Output {
	return append([]Output(nil), s.outputs...)
}

// Dependencies returns the names of the stacks this stack references, sorted.
func (s *Stack) Dependencies() ([]string, error) {
	g, err := s.app.stackGraph()
	if err != nil {
		return nil, err
	}
	return targets(g, s.name)
}
