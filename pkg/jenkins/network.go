package jenkins

import (
	"fmt"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
	"github.com/pkg/errors"
)

// Network is the vpc every other unit is placed in.
type Network struct {
	Stack          *stack.Stack
	Vpc            *resources.Vpc
	PublicSubnets  []*resources.Subnet
	PrivateSubnets []*resources.Subnet
}

func NewNetwork(app *stack.App, cfg config.Application) (*Network, error) {
	s, err := app.NewStack(cfg.AppName+"Network", config.Environment{})
	if err != nil {
		return nil, err
	}
	s.SetDescription(fmt.Sprintf("Network of %s: vpc, subnets and gateways", cfg.AppName))

	vpc, err := resources.CreateNetwork(s, resources.NetworkCreateParams{
		Name:      "Vpc",
		CidrBlock: cfg.Network.CidrBlock,
		MaxAzs:    cfg.Network.MaxAzs,
		Azs:       s.Pseudo().AvailabilityZones,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not declare the vpc of %s", s.Name())
	}
	logDeclared(s)
	return &Network{
		Stack:          s,
		Vpc:            vpc.Vpc,
		PublicSubnets:  vpc.PublicSubnets,
		PrivateSubnets: vpc.PrivateSubnets,
	}, nil
}
