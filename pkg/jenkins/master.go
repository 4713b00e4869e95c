package jenkins

import (
	"fmt"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
	"github.com/pkg/errors"
)

// Master is the Jenkins controller: a load balanced Fargate service allowed to run and stop worker tasks on the
// cluster.
type Master struct {
	Stack       *stack.Stack
	Image       *resources.EcrImage
	Service     *resources.LoadBalancedFargateService
	Environment MasterEnvironment
	// WorkerIngress lets the workers reach the agent and web ports.
	WorkerIngress  []*resources.SecurityGroupIngress
	TaskRolePolicy *resources.IamPolicy
}

func NewMaster(app *stack.App, cfg config.Application, network *Network, cluster *Cluster, worker *Worker) (*Master, error) {
	if network == nil || cluster == nil || worker == nil {
		return nil, fmt.Errorf("master requires a network, a cluster and a worker")
	}
	s, err := app.NewStack(cfg.AppName+"JenkinsMaster", cfg.Environment)
	if err != nil {
		return nil, err
	}
	s.SetDescription(fmt.Sprintf("Jenkins master service of %s", cfg.AppName))
	pseudo := s.Pseudo()

	m := &Master{Stack: s, Image: &resources.EcrImage{}}
	err = m.Image.Create(s, resources.EcrImageCreateParams{
		Name:       "JenkinsMasterDockerImage",
		Context:    cfg.ResolvePath(cfg.Master.BuildContext),
		Repository: cfg.AssetsRepository,
		Pseudo:     pseudo,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not declare the master image")
	}

	m.Environment = MasterEnvironment{
		JavaOpts:              cfg.Master.JavaOpts,
		CascConfig:            cfg.Master.CascConfig,
		NetworkStack:          network.Stack.Name(),
		ClusterStack:          cluster.Stack.Name(),
		WorkerStack:           worker.Stack.Name(),
		ClusterArn:            cluster.Cluster.Arn(),
		AwsRegion:             pseudo.Region.Ref(),
		JenkinsUrl:            cfg.JenkinsURL(),
		SubnetIds:             construct.JoinValues(",", resources.SubnetIds(network.PrivateSubnets)...),
		SecurityGroupIds:      worker.SecurityGroup.GroupId(),
		ExecutionRoleArn:      worker.ExecutionRole.Arn(),
		TaskRoleArn:           worker.TaskRole.Arn(),
		WorkerLogGroup:        worker.LogGroup.Ref(),
		WorkerLogStreamPrefix: worker.LogStream.Ref(),
		WorkerImage:           worker.Image.ImageUri(),
	}
	if cfg.Master.PinnedRegion != "" {
		m.Environment.AwsRegion = cfg.Master.PinnedRegion
	}

	m.Service, err = resources.NewLoadBalancedFargateService(s, resources.LoadBalancedFargateServiceParams{
		Name:             "JenkinsMasterService",
		Cluster:          cluster.Cluster,
		Vpc:              network.Vpc,
		PublicSubnets:    network.PublicSubnets,
		PrivateSubnets:   network.PrivateSubnets,
		Pseudo:           pseudo,
		Image:            m.Image,
		Cpu:              cfg.Master.Cpu,
		Memory:           cfg.Master.Memory,
		DesiredCount:     cfg.Master.DesiredCount,
		ContainerPort:    cfg.Master.ContainerPort,
		ExtraPorts:       []int{cfg.Master.AgentPort},
		Environment:      m.Environment.Variables(),
		CloudMap: &resources.CloudMapOptions{
			Namespace: cluster.Namespace,
			Name:      cfg.Master.DiscoveryName,
		},
	})
	if err != nil {
		return nil, err
	}

	for _, port := range []int{cfg.Master.AgentPort, cfg.Master.ContainerPort} {
		ingress, err := resources.AllowTcpFrom(s, m.Service.ServiceSecurityGroup, worker.SecurityGroup, port)
		if err != nil {
			return nil, errors.Wrapf(err, "could not allow workers on port %d", port)
		}
		m.WorkerIngress = append(m.WorkerIngress, ingress)
	}

	if err := m.grantPlugin(cfg, cluster, worker); err != nil {
		return nil, err
	}
	m.TaskRolePolicy = m.Service.TaskDefinition.TaskRolePolicy()

	if err := s.AddOutput("LoadBalancerDNS", "", m.Service.LoadBalancer.DnsName()); err != nil {
		return nil, err
	}
	if err := s.AddOutput("ServiceURL", "", m.Service.Url()); err != nil {
		return nil, err
	}
	logDeclared(s)
	return m, nil
}

// grantPlugin gives the task role the permissions the Jenkins ECS plugin needs to manage worker tasks.
func (m *Master) grantPlugin(cfg config.Application, cluster *Cluster, worker *Worker) error {
	pseudo := m.Stack.Pseudo()
	ecsArn := func(resource ...any) construct.Join {
		parts := []any{"arn:", pseudo.Partition.Ref(), ":ecs:", pseudo.Region.Ref(), ":", pseudo.Account.Ref(), ":"}
		return construct.Interpolate(append(parts, resource...)...)
	}
	clusterArn := cluster.Cluster.Arn()

	stopTask := resources.AllowStatement([]string{"ecs:StopTask"}, ecsArn("task/*"))
	stopTask.Condition = map[string]map[string]any{
		"ForAnyValue:ArnEquals": {"ecs:cluster": clusterArn},
	}
	stmts := []resources.StatementEntry{
		resources.AllowStatement([]string{
			"ecs:RegisterTaskDefinition",
			"ecs:DeregisterTaskDefinition",
			"ecs:ListClusters",
			"ecs:DescribeContainerInstances",
			"ecs:ListTaskDefinitions",
			"ecs:DescribeTaskDefinition",
			"ecs:DescribeTasks",
		}, "*"),
		resources.AllowStatement([]string{"ecs:ListContainerInstances"}, clusterArn),
		resources.AllowStatement([]string{"ecs:RunTask"}, ecsArn("task-definition/", cfg.Worker.TaskDefinitionPrefix, "*")),
		stopTask,
		resources.AllowStatement([]string{"iam:PassRole"}, worker.TaskRole.Arn(), worker.ExecutionRole.Arn()),
	}
	for _, stmt := range stmts {
		if err := m.Service.TaskDefinition.AddToTaskRolePolicy(m.Stack, stmt); err != nil {
			return errors.Wrapf(err, "could not grant %v to the master", stmt.Action)
		}
	}
	return nil
}
