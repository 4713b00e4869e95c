package jenkins

import (
	"fmt"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
	"github.com/pkg/errors"
)

// Worker holds what the master needs to launch worker tasks through the ECS plugin. The worker task definitions
// themselves are registered by the plugin at runtime.
type Worker struct {
	Stack         *stack.Stack
	Image         *resources.EcrImage
	SecurityGroup *resources.SecurityGroup
	// ExecutionRole is used by ECS to pull the worker image and write its logs.
	ExecutionRole *resources.IamRole
	// TaskRole is assumed by the worker itself.
	TaskRole  *resources.IamRole
	LogGroup  *resources.LogGroup
	LogStream *resources.LogStream
}

func NewWorker(app *stack.App, cfg config.Application, cluster *Cluster) (*Worker, error) {
	if cluster == nil || cluster.Vpc == nil {
		return nil, fmt.Errorf("worker requires a cluster")
	}
	s, err := app.NewStack(cfg.AppName+"Worker", config.Environment{})
	if err != nil {
		return nil, err
	}
	s.SetDescription(fmt.Sprintf("Jenkins worker resources of %s", cfg.AppName))

	w := &Worker{Stack: s, Image: &resources.EcrImage{}}
	err = w.Image.Create(s, resources.EcrImageCreateParams{
		Name:       "JenkinsWorkerDockerImage",
		Context:    cfg.ResolvePath(cfg.Worker.BuildContext),
		Repository: cfg.AssetsRepository,
		Pseudo:     s.Pseudo(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not declare the worker image")
	}

	w.SecurityGroup = resources.NewSecurityGroup(s.Name(), "WorkerSecurityGroup", "Jenkins Worker access to Jenkins Master", cluster.Vpc)

	w.ExecutionRole = resources.NewIamRole(s.Name(), "WorkerExecutionRole", resources.ECS_ASSUMER_ROLE_POLICY)
	w.ExecutionRole.AddAwsManagedPolicy(s.Pseudo().Partition, resources.ECS_TASK_EXECUTION_ROLE_POLICY)
	w.TaskRole = resources.NewIamRole(s.Name(), "WorkerTaskRole", resources.ECS_ASSUMER_ROLE_POLICY)

	w.LogGroup = &resources.LogGroup{Name: "WorkerLogGroup", Stack: s.Name(), RetentionInDays: cfg.Worker.LogRetentionDays}
	w.LogStream = &resources.LogStream{Name: "WorkerLogStream", Stack: s.Name(), LogGroup: w.LogGroup}

	for _, res := range []construct.Resource{w.SecurityGroup, w.ExecutionRole, w.TaskRole, w.LogGroup, w.LogStream} {
		if err := s.Add(res); err != nil {
			return nil, err
		}
	}
	logDeclared(s)
	return w, nil
}
