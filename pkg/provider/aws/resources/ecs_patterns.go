package resources

import (
	"fmt"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization/aws"
	"github.com/pkg/errors"
)

type (
	LoadBalancedFargateServiceParams struct {
		Name           string
		Cluster        *EcsCluster
		Vpc            *Vpc
		PublicSubnets  []*Subnet
		PrivateSubnets []*Subnet
		Pseudo         *PseudoParameters

		Image         *EcrImage
		Cpu           int
		Memory        int
		DesiredCount  int
		ContainerName string
		ContainerPort int
		// ExtraPorts are mapped on the container but not exposed through the load balancer.
		ExtraPorts   []int
		Environment  map[string]any
		ListenerPort int

		LogRetentionDays int
		CloudMap         *CloudMapOptions
	}

	CloudMapOptions struct {
		Namespace *PrivateDnsNamespace
		Name      string
	}

	// LoadBalancedFargateService is a Fargate service running behind an internet-facing application load balancer.
	LoadBalancedFargateService struct {
		LoadBalancer              *LoadBalancer
		LoadBalancerSecurityGroup *SecurityGroup
		Listener                  *Listener
		TargetGroup               *TargetGroup
		TaskDefinition            *EcsTaskDefinition
		Container                 *ContainerDefinition
		LogGroup                  *LogGroup
		Service                   *EcsService
		ServiceSecurityGroup      *SecurityGroup
		Discovery                 *ServiceDiscoveryService
	}
)

// NewLoadBalancedFargateService declares the load balancer (public subnets, HTTP listener forwarding to an ip target
// group), the task definition with its roles and log group, and the service (private subnets, reachable only from
// the load balancer on the container port).
func NewLoadBalancedFargateService(scope construct.Scope, params LoadBalancedFargateServiceParams) (*LoadBalancedFargateService, error) {
	if params.Cluster == nil || params.Vpc == nil {
		return nil, fmt.Errorf("fargate service %s requires a cluster and a vpc", params.Name)
	}
	if params.Image == nil {
		return nil, fmt.Errorf("fargate service %s requires an image", params.Name)
	}
	if params.ListenerPort == 0 {
		params.ListenerPort = 80
	}
	if params.ContainerName == "" {
		params.ContainerName = "web"
	}
	stack := scope.Name()
	name := params.Name
	svc := &LoadBalancedFargateService{}

	svc.LoadBalancerSecurityGroup = NewSecurityGroup(stack, name+"LBSecurityGroup",
		fmt.Sprintf("Automatically created Security Group for ELB %s%sLB", stack, name), params.Vpc)
	svc.LoadBalancerSecurityGroup.IngressRules = []SecurityGroupRule{{
		Description: fmt.Sprintf("Allow from anyone on port %d", params.ListenerPort),
		CidrBlock:   "0.0.0.0/0",
		Protocol:    PROTOCOL_TCP,
		FromPort:    params.ListenerPort,
		ToPort:      params.ListenerPort,
	}}
	svc.LoadBalancer = &LoadBalancer{
		Name:           name + "LB",
		Stack:          stack,
		Scheme:         SCHEME_INTERNET_FACING,
		Type:           LOAD_BALANCER_TYPE_APPLICATION,
		Subnets:        params.PublicSubnets,
		SecurityGroups: []*SecurityGroup{svc.LoadBalancerSecurityGroup},
	}
	svc.TargetGroup = &TargetGroup{
		Name:       name + "LBPublicListenerECSGroup",
		Stack:      stack,
		Port:       80,
		Protocol:   PROTOCOL_HTTP,
		TargetType: TARGET_TYPE_IP,
		Vpc:        params.Vpc,
	}
	svc.Listener = &Listener{
		Name:               name + "LBPublicListener",
		Stack:              stack,
		LoadBalancer:       svc.LoadBalancer,
		Port:               params.ListenerPort,
		Protocol:           PROTOCOL_HTTP,
		DefaultTargetGroup: svc.TargetGroup,
	}

	svc.LogGroup = &LogGroup{Name: name + "TaskDefWebLogGroup", Stack: stack, RetentionInDays: params.LogRetentionDays}
	svc.TaskDefinition = NewEcsTaskDefinition(stack, name+"TaskDef", params.Cpu, params.Memory)
	svc.TaskDefinition.ExecutionRole = NewIamRole(stack, name+"TaskDefExecutionRole", ECS_ASSUMER_ROLE_POLICY)
	svc.TaskDefinition.TaskRole = NewIamRole(stack, name+"TaskDefTaskRole", ECS_ASSUMER_ROLE_POLICY)

	svc.Container = &ContainerDefinition{
		Name:        aws.EcsContainerNameSanitizer.Apply(params.ContainerName),
		Image:       params.Image.ImageUri(),
		Essential:   true,
		Environment: params.Environment,
		PortMappings: []PortMapping{
			{ContainerPort: params.ContainerPort, HostPort: params.ContainerPort, Protocol: PROTOCOL_TCP},
		},
		LogConfiguration: &LogConfiguration{
			LogDriver:    LOG_DRIVER_AWSLOGS,
			LogGroup:     svc.LogGroup,
			StreamPrefix: aws.CloudwatchLogStreamPrefixSanitizer.Apply(name),
			Region:       params.Pseudo.Region,
		},
	}
	for _, port := range params.ExtraPorts {
		svc.Container.PortMappings = append(svc.Container.PortMappings,
			PortMapping{ContainerPort: port, HostPort: port, Protocol: PROTOCOL_TCP})
	}
	if err := svc.TaskDefinition.AddContainer(svc.Container); err != nil {
		return nil, err
	}

	svc.ServiceSecurityGroup = NewSecurityGroup(stack, name+"ServiceSecurityGroup", fmt.Sprintf("%s/%s/Service/SecurityGroup", stack, name), params.Vpc)
	svc.Service = &EcsService{
		Name:                          name + "Service",
		Stack:                         stack,
		Cluster:                       params.Cluster,
		TaskDefinition:                svc.TaskDefinition,
		DesiredCount:                  params.DesiredCount,
		LaunchType:                    LAUNCH_TYPE_FARGATE,
		EnableEcsManagedTags:          true,
		HealthCheckGracePeriodSeconds: 60,
		SecurityGroups:                []*SecurityGroup{svc.ServiceSecurityGroup},
		Subnets:                       params.PrivateSubnets,
		LoadBalancers: []EcsServiceLoadBalancerConfig{{
			TargetGroup:   svc.TargetGroup,
			ContainerName: svc.Container.Name,
			ContainerPort: params.ContainerPort,
		}},
		DependsOn: []construct.Resource{svc.Listener},
	}
	if params.CloudMap != nil {
		svc.Discovery = NewServiceDiscoveryService(stack, name+"CloudmapService", params.CloudMap.Name, params.CloudMap.Namespace)
		svc.Service.ServiceRegistries = []*ServiceDiscoveryService{svc.Discovery}
	}

	toAdd := []construct.Resource{
		svc.LoadBalancerSecurityGroup,
		svc.LoadBalancer,
		svc.TargetGroup,
		svc.Listener,
		svc.LogGroup,
		svc.TaskDefinition.ExecutionRole,
		svc.TaskDefinition.TaskRole,
		svc.TaskDefinition,
		svc.ServiceSecurityGroup,
	}
	if svc.Discovery != nil {
		toAdd = append(toAdd, svc.Discovery)
	}
	toAdd = append(toAdd, svc.Service)
	for _, res := range toAdd {
		if err := scope.Add(res); err != nil {
			return nil, errors.Wrapf(err, "could not declare fargate service %s", name)
		}
	}

	if _, err := AllowTcpFrom(scope, svc.ServiceSecurityGroup, svc.LoadBalancerSecurityGroup, params.ContainerPort); err != nil {
		return nil, err
	}
	if err := svc.grantExecutionRole(scope, params); err != nil {
		return nil, err
	}
	return svc, nil
}

// grantExecutionRole lets the execution role pull the image and write the container logs.
func (svc *LoadBalancedFargateService) grantExecutionRole(scope construct.Scope, params LoadBalancedFargateServiceParams) error {
	repositoryArn := construct.Interpolate(
		"arn:", params.Pseudo.Partition.Ref(), ":ecr:", params.Pseudo.Region.Ref(), ":", params.Pseudo.Account.Ref(),
		":repository/", params.Image.Repository,
	)
	stmts := []StatementEntry{
		AllowStatement([]string{
			"ecr:BatchCheckLayerAvailability",
			"ecr:GetDownloadUrlForLayer",
			"ecr:BatchGetImage",
		}, repositoryArn),
		AllowStatement([]string{"ecr:GetAuthorizationToken"}, "*"),
		AllowStatement([]string{"logs:CreateLogStream", "logs:PutLogEvents"}, svc.LogGroup.Arn()),
	}
	for _, stmt := range stmts {
		if err := svc.TaskDefinition.AddToExecutionRolePolicy(scope, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Url references `http://<load balancer dns name>`.
func (svc *LoadBalancedFargateService) Url() construct.Join {
	return construct.Interpolate("http://", svc.LoadBalancer.DnsName())
}
