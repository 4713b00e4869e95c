package resources

import (
	"fmt"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization/aws"
)

const (
	ECS_TASK_DEFINITION_TYPE = "ecs_task_definition"
	ECS_SERVICE_TYPE         = "ecs_service"
	ECS_CLUSTER_TYPE         = "ecs_cluster"

	ECS_NETWORK_MODE_AWSVPC = "awsvpc"

	LAUNCH_TYPE_FARGATE            = "FARGATE"
	REQUIRES_COMPATIBILITY_FARGATE = "FARGATE"

	LOG_DRIVER_AWSLOGS = "awslogs"
)

type (
	EcsCluster struct {
		Name  string
		Stack string
	}

	EcsTaskDefinition struct {
		Name                    string
		Stack                   string
		Family                  string
		Cpu                     int
		Memory                  int
		NetworkMode             string
		RequiresCompatibilities []string
		ExecutionRole           *IamRole
		TaskRole                *IamRole
		Containers              []*ContainerDefinition

		taskRolePolicy      *IamPolicy
		executionRolePolicy *IamPolicy
	}

	ContainerDefinition struct {
		Name      string
		Image     construct.IaCValue
		Essential bool
		// Environment values are strings, [construct.IaCValue]s or [construct.Join]s.
		Environment      map[string]any
		PortMappings     []PortMapping
		LogConfiguration *LogConfiguration
	}

	PortMapping struct {
		ContainerPort int
		HostPort      int
		Protocol      string
	}

	LogConfiguration struct {
		LogDriver    string
		LogGroup     *LogGroup
		StreamPrefix string
		Region       *Region
	}

	EcsService struct {
		Name                          string
		Stack                         string
		Cluster                       *EcsCluster
		TaskDefinition                *EcsTaskDefinition
		DesiredCount                  int
		LaunchType                    string
		AssignPublicIp                bool
		EnableEcsManagedTags          bool
		HealthCheckGracePeriodSeconds int
		SecurityGroups                []*SecurityGroup
		Subnets                       []*Subnet
		LoadBalancers                 []EcsServiceLoadBalancerConfig
		ServiceRegistries             []*ServiceDiscoveryService
		// DependsOn orders the service after resources it does not reference, such as the listener forwarding
		// to its target group.
		DependsOn []construct.Resource
	}

	EcsServiceLoadBalancerConfig struct {
		TargetGroup   *TargetGroup
		ContainerName string
		ContainerPort int
	}
)

// ID returns the id of the cloud resource
func (c *EcsCluster) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: ECS_CLUSTER_TYPE, Namespace: c.Stack, Name: c.Name}
}

func (c *EcsCluster) Arn() construct.IaCValue {
	return construct.IaCValue{ResourceId: c.Id(), Property: ARN_PROPERTY}
}

// Ref references the cluster's name.
func (c *EcsCluster) Ref() construct.IaCValue {
	return construct.IaCValue{ResourceId: c.Id(), Property: REF_PROPERTY}
}

func NewEcsTaskDefinition(stack, name string, cpu, memory int) *EcsTaskDefinition {
	return &EcsTaskDefinition{
		Name:                    name,
		Stack:                   stack,
		Family:                  aws.EcsTaskDefinitionSanitizer.Apply(stack + name),
		Cpu:                     cpu,
		Memory:                  memory,
		NetworkMode:             ECS_NETWORK_MODE_AWSVPC,
		RequiresCompatibilities: []string{REQUIRES_COMPATIBILITY_FARGATE},
	}
}

// ID returns the id of the cloud resource
func (td *EcsTaskDefinition) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: ECS_TASK_DEFINITION_TYPE, Namespace: td.Stack, Name: td.Name}
}

// Ref references the task definition's arn.
func (td *EcsTaskDefinition) Ref() construct.IaCValue {
	return construct.IaCValue{ResourceId: td.Id(), Property: REF_PROPERTY}
}

func (td *EcsTaskDefinition) AddContainer(container *ContainerDefinition) error {
	for _, c := range td.Containers {
		if c.Name == container.Name {
			return fmt.Errorf("task definition %s already has a container named %s", td.Name, c.Name)
		}
	}
	td.Containers = append(td.Containers, container)
	return nil
}

// AddToTaskRolePolicy grants the task role the statement. The first grant declares the task role's default policy
// in scope, later grants extend it.
func (td *EcsTaskDefinition) AddToTaskRolePolicy(scope construct.Scope, stmt StatementEntry) error {
	if td.TaskRole == nil {
		return fmt.Errorf("task definition %s has no task role", td.Name)
	}
	if td.taskRolePolicy == nil {
		td.taskRolePolicy = NewIamPolicy(scope.Name(), td.TaskRole.Name+"DefaultPolicy", td.TaskRole)
	}
	td.taskRolePolicy.AddStatement(stmt)
	// re-adding is a no-op for the resource but picks up references from the new statement
	return scope.Add(td.taskRolePolicy)
}

// AddToExecutionRolePolicy grants the execution role the statement, see [EcsTaskDefinition.AddToTaskRolePolicy].
func (td *EcsTaskDefinition) AddToExecutionRolePolicy(scope construct.Scope, stmt StatementEntry) error {
	if td.ExecutionRole == nil {
		return fmt.Errorf("task definition %s has no execution role", td.Name)
	}
	if td.executionRolePolicy == nil {
		td.executionRolePolicy = NewIamPolicy(scope.Name(), td.ExecutionRole.Name+"DefaultPolicy", td.ExecutionRole)
	}
	td.executionRolePolicy.AddStatement(stmt)
	return scope.Add(td.executionRolePolicy)
}

// TaskRolePolicy returns the task role's default policy, or nil if nothing was granted yet.
func (td *EcsTaskDefinition) TaskRolePolicy() *IamPolicy {
	return td.taskRolePolicy
}

func (td *EcsTaskDefinition) ExecutionRolePolicy() *IamPolicy {
	return td.executionRolePolicy
}

// ID returns the id of the cloud resource
func (s *EcsService) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: ECS_SERVICE_TYPE, Namespace: s.Stack, Name: s.Name}
}

func (s *EcsService) ServiceName() construct.IaCValue {
	return construct.IaCValue{ResourceId: s.Id(), Property: "Name"}
}
