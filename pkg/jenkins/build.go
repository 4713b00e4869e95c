package jenkins

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Deployment is every unit of a Jenkins deployment.
type Deployment struct {
	Network *Network
	Cluster *Cluster
	Worker  *Worker
	Master  *Master
}

// Build declares the units in dependency order. cfg.Environment is the only source of the target account and
// region.
func Build(cfg config.Application) (*stack.App, *Deployment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid configuration")
	}
	app := stack.NewApp(cfg.AppName)
	d := &Deployment{}

	var err error
	if d.Network, err = NewNetwork(app, cfg); err != nil {
		return nil, nil, errors.Wrap(err, "network")
	}
	if d.Cluster, err = NewCluster(app, cfg, d.Network); err != nil {
		return nil, nil, errors.Wrap(err, "cluster")
	}
	if d.Worker, err = NewWorker(app, cfg, d.Cluster); err != nil {
		return nil, nil, errors.Wrap(err, "worker")
	}
	if d.Master, err = NewMaster(app, cfg, d.Network, d.Cluster, d.Worker); err != nil {
		return nil, nil, errors.Wrap(err, "master")
	}

	if _, err := app.StackOrder(); err != nil {
		return nil, nil, err
	}
	return app, d, nil
}

func logDeclared(s *stack.Stack) {
	declared, images := countDeclared(s)
	zap.L().Named("jenkins").Info("declared stack",
		zap.String("stack", s.Name()), zap.Int("resources", declared), zap.Int("images", images))
}

// countDeclared splits the stack's resources into the ones its template declares and the image assets. Pseudo
// parameters are neither.
func countDeclared(s *stack.Stack) (declared, images int) {
	for _, res := range s.Resources() {
		if resources.IsPseudo(res.Id()) {
			continue
		}
		if _, ok := res.(*resources.EcrImage); ok {
			images++
			continue
		}
		declared++
	}
	return declared, images
}
