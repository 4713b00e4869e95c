package resources

import (
	"testing"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SplitCidr(t *testing.T) {
	tests := []struct {
		name    string
		cidr    string
		count   int
		want    []string
		wantErr bool
	}{
		{
			name:  "four subnets",
			cidr:  "10.0.0.0/16",
			count: 4,
			want:  []string{"10.0.0.0/18", "10.0.64.0/18", "10.0.128.0/18", "10.0.192.0/18"},
		},
		{
			name:  "rounds up to a power of two",
			cidr:  "10.0.0.0/16",
			count: 3,
			want:  []string{"10.0.0.0/18", "10.0.64.0/18", "10.0.128.0/18"},
		},
		{
			name:  "single block",
			cidr:  "192.168.0.0/24",
			count: 1,
			want:  []string{"192.168.0.0/24"},
		},
		{
			name:  "unmasked input",
			cidr:  "10.1.2.3/16",
			count: 2,
			want:  []string{"10.1.0.0/17", "10.1.128.0/17"},
		},
		{
			name:  "smallest subnets",
			cidr:  "10.0.0.0/27",
			count: 2,
			want:  []string{"10.0.0.0/28", "10.0.0.16/28"},
		},
		{
			name:    "too small",
			cidr:    "10.0.0.0/28",
			count:   2,
			wantErr: true,
		},
		{
			name:    "invalid",
			cidr:    "not-a-cidr",
			count:   2,
			wantErr: true,
		},
		{
			name:    "ipv6",
			cidr:    "fd00::/56",
			count:   2,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			got, err := SplitCidr(tt.cidr, tt.count)
			if tt.wantErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tt.want, got)
		})
	}
}

func Test_CreateNetwork(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	scope := newTestScope("JenkinsNetwork")
	pseudo, err := CreatePseudoParameters(scope, "", "")
	require.NoError(err)

	net, err := CreateNetwork(scope, NetworkCreateParams{Name: "Vpc", CidrBlock: "10.0.0.0/16", MaxAzs: 2, Azs: pseudo.AvailabilityZones})
	require.NoError(err)

	assert.Equal("10.0.0.0/16", net.Vpc.CidrBlock)
	assert.True(net.Vpc.EnableDnsHostnames)
	assert.True(net.Vpc.EnableDnsSupport)
	require.Len(net.PublicSubnets, 2)
	require.Len(net.PrivateSubnets, 2)
	assert.Equal("10.0.0.0/18", net.PublicSubnets[0].CidrBlock)
	assert.Equal("10.0.64.0/18", net.PublicSubnets[1].CidrBlock)
	assert.Equal("10.0.128.0/18", net.PrivateSubnets[0].CidrBlock)
	assert.Equal("10.0.192.0/18", net.PrivateSubnets[1].CidrBlock)
	for i, s := range net.PublicSubnets {
		assert.Equal(PublicSubnet, s.Type)
		assert.True(s.MapPublicIpOnLaunch)
		assert.Equal(pseudo.AvailabilityZones.Zone(i), s.AvailabilityZone)
	}
	for i, s := range net.PrivateSubnets {
		assert.Equal(PrivateSubnet, s.Type)
		assert.False(s.MapPublicIpOnLaunch)
		assert.Equal(pseudo.AvailabilityZones.Zone(i), s.AvailabilityZone)
	}

	var natGateways []*NatGateway
	var routes []*Route
	for _, res := range scope.graph.ListResources() {
		switch res := res.(type) {
		case *NatGateway:
			natGateways = append(natGateways, res)
		case *Route:
			routes = append(routes, res)
		}
	}
	assert.Len(natGateways, 2)
	require.Len(routes, 4)
	for _, route := range routes {
		assert.Equal("0.0.0.0/0", route.DestinationCidrBlock)
		if route.NatGateway != nil {
			assert.Nil(route.InternetGateway)
			// private routes go through the NAT gateway of the same zone
			for i, private := range net.PrivateSubnets {
				if route.RouteTable.Name == private.Name+"RouteTable" {
					assert.Equal(net.PublicSubnets[i], route.NatGateway.Subnet)
				}
			}
		} else {
			assert.NotNil(route.InternetGateway)
			assert.NotNil(route.GatewayAttachment)
		}
	}

	assert.Contains(
		scope.graph.DownstreamDependencies(net.PrivateSubnets[0].Id()),
		net.Vpc.Id(),
	)
	for _, res := range scope.graph.ListResources() {
		assert.Equal("JenkinsNetwork", res.Id().Namespace, res.Id().String())
	}
}

func Test_CreateNetwork_Invalid(t *testing.T) {
	scope := newTestScope("JenkinsNetwork")
	pseudo, err := CreatePseudoParameters(scope, "", "")
	require.NoError(t, err)

	_, err = CreateNetwork(scope, NetworkCreateParams{Name: "Vpc", CidrBlock: "10.0.0.0/16", MaxAzs: 0, Azs: pseudo.AvailabilityZones})
	assert.Error(t, err)

	_, err = CreateNetwork(scope, NetworkCreateParams{Name: "Vpc", CidrBlock: "10.0.0.0/30", MaxAzs: 2, Azs: pseudo.AvailabilityZones})
	assert.Error(t, err)

	// two zones need four subnets, and a /27 only holds two /28 blocks
	_, err = CreateNetwork(scope, NetworkCreateParams{Name: "Vpc", CidrBlock: "10.0.0.0/27", MaxAzs: 2, Azs: pseudo.AvailabilityZones})
	assert.ErrorContains(t, err, "too small for 4 subnets")
	assert.Nil(t, scope.graph.GetResource(construct.ResourceId{Provider: AWS_PROVIDER, Type: VPC_TYPE, Namespace: "JenkinsNetwork", Name: "Vpc"}))
}
