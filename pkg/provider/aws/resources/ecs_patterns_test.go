package resources

import (
	"testing"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFargateParams(t *testing.T, scope *testScope) LoadBalancedFargateServiceParams {
	require := require.New(t)
	pseudo, err := CreatePseudoParameters(scope, "123456789012", "us-east-1")
	require.NoError(err)
	net, err := CreateNetwork(scope, NetworkCreateParams{Name: "Vpc", CidrBlock: "10.0.0.0/16", MaxAzs: 2, Azs: pseudo.AvailabilityZones})
	require.NoError(err)
	cluster := &EcsCluster{Name: "Cluster", Stack: scope.Name()}
	require.NoError(scope.Add(cluster))
	namespace := NewPrivateDnsNamespace(scope.Name(), "Namespace", "jenkins", net.Vpc)
	require.NoError(scope.Add(namespace))
	image := &EcrImage{}
	require.NoError(image.Create(scope, EcrImageCreateParams{Name: "Image", Context: "/tmp/master", Repository: "assets", Pseudo: pseudo}))

	return LoadBalancedFargateServiceParams{
		Name:             "Service",
		Cluster:          cluster,
		Vpc:              net.Vpc,
		PublicSubnets:    net.PublicSubnets,
		PrivateSubnets:   net.PrivateSubnets,
		Pseudo:           pseudo,
		Image:            image,
		Cpu:              512,
		Memory:           1024,
		DesiredCount:     1,
		ContainerPort:    8080,
		ExtraPorts:       []int{50000},
		Environment:      map[string]any{"JAVA_OPTS": "-Dfoo"},
		LogRetentionDays: 1,
		CloudMap:         &CloudMapOptions{Namespace: namespace, Name: "master"},
	}
}

func Test_NewLoadBalancedFargateService(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	scope := newTestScope("JenkinsJenkinsMaster")
	params := newTestFargateParams(t, scope)

	svc, err := NewLoadBalancedFargateService(scope, params)
	require.NoError(err)

	assert.Equal(SCHEME_INTERNET_FACING, svc.LoadBalancer.Scheme)
	assert.Equal(params.PublicSubnets, svc.LoadBalancer.Subnets)
	assert.Equal(80, svc.Listener.Port)
	assert.Equal(TARGET_TYPE_IP, svc.TargetGroup.TargetType)
	require.Len(svc.LoadBalancerSecurityGroup.IngressRules, 1)
	assert.Equal("0.0.0.0/0", svc.LoadBalancerSecurityGroup.IngressRules[0].CidrBlock)
	assert.Equal(80, svc.LoadBalancerSecurityGroup.IngressRules[0].FromPort)

	assert.Equal(512, svc.TaskDefinition.Cpu)
	assert.Equal(1024, svc.TaskDefinition.Memory)
	assert.Equal("web", svc.Container.Name)
	assert.Equal(params.Image.ImageUri(), svc.Container.Image)
	assert.Equal([]PortMapping{
		{ContainerPort: 8080, HostPort: 8080, Protocol: PROTOCOL_TCP},
		{ContainerPort: 50000, HostPort: 50000, Protocol: PROTOCOL_TCP},
	}, svc.Container.PortMappings)
	assert.Equal(LOG_DRIVER_AWSLOGS, svc.Container.LogConfiguration.LogDriver)
	assert.Same(svc.LogGroup, svc.Container.LogConfiguration.LogGroup)

	assert.Equal(params.PrivateSubnets, svc.Service.Subnets)
	assert.Equal(1, svc.Service.DesiredCount)
	assert.True(svc.Service.EnableEcsManagedTags)
	assert.False(svc.Service.AssignPublicIp)
	require.NotNil(svc.Discovery)
	assert.Equal("master", svc.Discovery.DnsName)
	assert.Equal("A", svc.Discovery.DnsRecordType)

	// the service only accepts traffic from the load balancer
	var ingresses []*SecurityGroupIngress
	for _, res := range scope.graph.ListResources() {
		if ingress, ok := res.(*SecurityGroupIngress); ok {
			ingresses = append(ingresses, ingress)
		}
	}
	require.Len(ingresses, 1)
	assert.Same(svc.ServiceSecurityGroup, ingresses[0].SecurityGroup)
	assert.Same(svc.LoadBalancerSecurityGroup, ingresses[0].Source)
	assert.Equal(8080, ingresses[0].FromPort)

	execPolicy := svc.TaskDefinition.ExecutionRolePolicy()
	require.NotNil(execPolicy)
	assert.Len(execPolicy.Policy.Statement, 3)
	assert.Nil(svc.TaskDefinition.TaskRolePolicy())

	assert.Contains(scope.graph.DownstreamDependencies(svc.Service.Id()), svc.Listener.Id())
	assert.Equal(construct.Interpolate("http://", svc.LoadBalancer.DnsName()), svc.Url())
}

func Test_NewLoadBalancedFargateService_Invalid(t *testing.T) {
	scope := newTestScope("JenkinsJenkinsMaster")
	params := newTestFargateParams(t, scope)
	params.Image = nil
	_, err := NewLoadBalancedFargateService(scope, params)
	assert.Error(t, err)

	params = newTestFargateParams(t, newTestScope("Other"))
	params.Cluster = nil
	_, err = NewLoadBalancedFargateService(scope, params)
	assert.Error(t, err)
}
