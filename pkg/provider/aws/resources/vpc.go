package resources

import (
	"fmt"
	"math/bits"
	"net/netip"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/pkg/errors"
)

const (
	PrivateSubnet = "private"
	PublicSubnet  = "public"

	VPC_TYPE                            = "vpc"
	VPC_SUBNET_TYPE                     = "vpc_subnet"
	INTERNET_GATEWAY_TYPE               = "internet_gateway"
	VPC_GATEWAY_ATTACHMENT_TYPE         = "vpc_gateway_attachment"
	ELASTIC_IP_TYPE                     = "elastic_ip"
	NAT_GATEWAY_TYPE                    = "nat_gateway"
	ROUTE_TABLE_TYPE                    = "route_table"
	ROUTE_TYPE                          = "route"
	SUBNET_ROUTE_TABLE_ASSOCIATION_TYPE = "subnet_route_table_association"

	ALLOCATION_ID_PROPERTY = "AllocationId"
)

type (
	Vpc struct {
		Name               string
		Stack              string
		CidrBlock          string
		EnableDnsSupport   bool
		EnableDnsHostnames bool
	}

	Subnet struct {
		Name             string
		Stack            string
		Vpc              *Vpc
		CidrBlock        string
		Type             string
		AvailabilityZone construct.IaCValue
		// MapPublicIpOnLaunch is set for public subnets.
		MapPublicIpOnLaunch bool
	}

	InternetGateway struct {
		Name  string
		Stack string
	}

	VpcGatewayAttachment struct {
		Name            string
		Stack           string
		Vpc             *Vpc
		InternetGateway *InternetGateway
	}

	ElasticIp struct {
		Name  string
		Stack string
	}

	NatGateway struct {
		Name      string
		Stack     string
		ElasticIp *ElasticIp
		Subnet    *Subnet
	}

	RouteTable struct {
		Name  string
		Stack string
		Vpc   *Vpc
	}

	Route struct {
		Name                 string
		Stack                string
		RouteTable           *RouteTable
		DestinationCidrBlock string
		InternetGateway      *InternetGateway
		NatGateway           *NatGateway
		// GatewayAttachment orders an internet route after the gateway is attached to the vpc.
		GatewayAttachment *VpcGatewayAttachment
	}

	SubnetRouteTableAssociation struct {
		Name       string
		Stack      string
		Subnet     *Subnet
		RouteTable *RouteTable
	}

	NetworkCreateParams struct {
		Name      string
		CidrBlock string
		MaxAzs    int
		Azs       *AvailabilityZones
	}

	// VpcNetwork is the result of [CreateNetwork]: a vpc with one public and one private subnet per availability zone.
	VpcNetwork struct {
		Vpc            *Vpc
		PublicSubnets  []*Subnet
		PrivateSubnets []*Subnet
	}
)

// CreateNetwork declares a vpc spread over params.MaxAzs availability zones. Each zone gets a public subnet (routed
// through an internet gateway) holding a NAT gateway, and a private subnet routed through that NAT gateway.
func CreateNetwork(scope construct.Scope, params NetworkCreateParams) (*VpcNetwork, error) {
	if params.MaxAzs < 1 {
		return nil, fmt.Errorf("vpc %s needs at least one availability zone", params.Name)
	}
	cidrs, err := SplitCidr(params.CidrBlock, 2*params.MaxAzs)
	if err != nil {
		return nil, errors.Wrapf(err, "could not plan subnets for vpc %s", params.Name)
	}

	stack := scope.Name()
	net := &VpcNetwork{
		Vpc: &Vpc{
			Name:               params.Name,
			Stack:              stack,
			CidrBlock:          params.CidrBlock,
			EnableDnsSupport:   true,
			EnableDnsHostnames: true,
		},
	}
	igw := &InternetGateway{Name: params.Name + "IGW", Stack: stack}
	attachment := &VpcGatewayAttachment{
		Name:            params.Name + "VPCGW",
		Stack:           stack,
		Vpc:             net.Vpc,
		InternetGateway: igw,
	}
	var toAdd []construct.Resource
	toAdd = append(toAdd, net.Vpc, igw, attachment)

	natGateways := make([]*NatGateway, params.MaxAzs)
	for i := 0; i < params.MaxAzs; i++ {
		name := fmt.Sprintf("%sPublicSubnet%d", params.Name, i+1)
		subnet := &Subnet{
			Name:                name,
			Stack:               stack,
			Vpc:                 net.Vpc,
			CidrBlock:           cidrs[i],
			Type:                PublicSubnet,
			AvailabilityZone:    params.Azs.Zone(i),
			MapPublicIpOnLaunch: true,
		}
		net.PublicSubnets = append(net.PublicSubnets, subnet)

		rt := &RouteTable{Name: name + "RouteTable", Stack: stack, Vpc: net.Vpc}
		eip := &ElasticIp{Name: name + "EIP", Stack: stack}
		natGateways[i] = &NatGateway{Name: name + "NATGateway", Stack: stack, ElasticIp: eip, Subnet: subnet}
		toAdd = append(toAdd,
			subnet,
			rt,
			&SubnetRouteTableAssociation{Name: name + "RouteTableAssociation", Stack: stack, Subnet: subnet, RouteTable: rt},
			&Route{
				Name:                 name + "DefaultRoute",
				Stack:                stack,
				RouteTable:           rt,
				DestinationCidrBlock: "0.0.0.0/0",
				InternetGateway:      igw,
				GatewayAttachment:    attachment,
			},
			eip,
			natGateways[i],
		)
	}
	for i := 0; i < params.MaxAzs; i++ {
		name := fmt.Sprintf("%sPrivateSubnet%d", params.Name, i+1)
		subnet := &Subnet{
			Name:             name,
			Stack:            stack,
			Vpc:              net.Vpc,
			CidrBlock:        cidrs[params.MaxAzs+i],
			Type:             PrivateSubnet,
			AvailabilityZone: params.Azs.Zone(i),
		}
		net.PrivateSubnets = append(net.PrivateSubnets, subnet)

		rt := &RouteTable{Name: name + "RouteTable", Stack: stack, Vpc: net.Vpc}
		toAdd = append(toAdd,
			subnet,
			rt,
			&SubnetRouteTableAssociation{Name: name + "RouteTableAssociation", Stack: stack, Subnet: subnet, RouteTable: rt},
			&Route{
				Name:                 name + "DefaultRoute",
				Stack:                stack,
				RouteTable:           rt,
				DestinationCidrBlock: "0.0.0.0/0",
				NatGateway:           natGateways[i],
			},
		)
	}

	for _, res := range toAdd {
		if err := scope.Add(res); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// SplitCidr divides an IPv4 block into count equally sized blocks, rounding count up to a power of two.
func SplitCidr(cidr string, count int) ([]string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, err
	}
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("only IPv4 blocks can be split, got %s", cidr)
	}
	if count < 1 {
		return nil, fmt.Errorf("cannot split %s into %d blocks", cidr, count)
	}
	prefix = prefix.Masked()

	newBits := bits.Len(uint(count - 1))
	size := prefix.Bits() + newBits
	if size > 28 {
		return nil, fmt.Errorf("%s is too small for %d subnets", cidr, count)
	}

	base := prefix.Addr().As4()
	start := uint32(base[0])<<24 | uint32(base[1])<<16 | uint32(base[2])<<8 | uint32(base[3])
	step := uint32(1) << (32 - size)

	blocks := make([]string, count)
	for i := range blocks {
		v := start + uint32(i)*step
		addr := netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		blocks[i] = netip.PrefixFrom(addr, size).String()
	}
	return blocks, nil
}

// ID returns the id of the cloud resource
func (vpc *Vpc) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: VPC_TYPE, Namespace: vpc.Stack, Name: vpc.Name}
}

func (vpc *Vpc) VpcId() construct.IaCValue {
	return construct.IaCValue{ResourceId: vpc.Id(), Property: REF_PROPERTY}
}

// ID returns the id of the cloud resource
func (subnet *Subnet) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: VPC_SUBNET_TYPE, Namespace: subnet.Stack, Name: subnet.Name}
}

func (subnet *Subnet) SubnetId() construct.IaCValue {
	return construct.IaCValue{ResourceId: subnet.Id(), Property: REF_PROPERTY}
}

// SubnetIds references the ids of each subnet, in order.
func SubnetIds(subnets []*Subnet) []any {
	ids := make([]any, len(subnets))
	for i, s := range subnets {
		ids[i] = s.SubnetId()
	}
	return ids
}

// ID returns the id of the cloud resource
func (igw *InternetGateway) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: INTERNET_GATEWAY_TYPE, Namespace: igw.Stack, Name: igw.Name}
}

// ID returns the id of the cloud resource
func (a *VpcGatewayAttachment) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: VPC_GATEWAY_ATTACHMENT_TYPE, Namespace: a.Stack, Name: a.Name}
}

// ID returns the id of the cloud resource
func (eip *ElasticIp) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: ELASTIC_IP_TYPE, Namespace: eip.Stack, Name: eip.Name}
}

func (eip *ElasticIp) AllocationId() construct.IaCValue {
	return construct.IaCValue{ResourceId: eip.Id(), Property: ALLOCATION_ID_PROPERTY}
}

// ID returns the id of the cloud resource
func (nat *NatGateway) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: NAT_GATEWAY_TYPE, Namespace: nat.Stack, Name: nat.Name}
}

// ID returns the id of the cloud resource
func (rt *RouteTable) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: ROUTE_TABLE_TYPE, Namespace: rt.Stack, Name: rt.Name}
}

// ID returns the id of the cloud resource
func (r *Route) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: ROUTE_TYPE, Namespace: r.Stack, Name: r.Name}
}

// ID returns the id of the cloud resource
func (a *SubnetRouteTableAssociation) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: SUBNET_ROUTE_TABLE_ASSOCIATION_TYPE, Namespace: a.Stack, Name: a.Name}
}
