package jenkins

import (
	"fmt"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
)

// Cluster is the ECS cluster the master and the workers run on, along with the namespace the master is
// discoverable in.
type Cluster struct {
	Stack         *stack.Stack
	Vpc           *resources.Vpc
	Cluster       *resources.EcsCluster
	Namespace     *resources.PrivateDnsNamespace
	NamespaceName string
}

func NewCluster(app *stack.App, cfg config.Application, network *Network) (*Cluster, error) {
	if network == nil || network.Vpc == nil {
		return nil, fmt.Errorf("cluster requires a network")
	}
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("cluster requires a service discovery namespace")
	}
	s, err := app.NewStack(cfg.AppName+"Init", config.Environment{})
	if err != nil {
		return nil, err
	}
	s.SetDescription(fmt.Sprintf("ECS cluster of %s", cfg.AppName))

	c := &Cluster{
		Stack:         s,
		Vpc:           network.Vpc,
		Cluster:       &resources.EcsCluster{Name: "EcsCluster", Stack: s.Name()},
		NamespaceName: cfg.Namespace,
	}
	c.Namespace = resources.NewPrivateDnsNamespace(s.Name(), "EcsClusterDefaultServiceDiscoveryNamespace", cfg.Namespace, network.Vpc)
	for _, res := range []construct.Resource{c.Cluster, c.Namespace} {
		if err := s.Add(res); err != nil {
			return nil, err
		}
	}
	logDeclared(s)
	return c, nil
}
