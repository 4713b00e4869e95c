package resources

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
)

const (
	LOAD_BALANCER_TYPE = "load_balancer"
	TARGET_GROUP_TYPE  = "target_group"
	LISTENER_TYPE      = "load_balancer_listener"

	DNS_NAME_PROPERTY = "DNSName"

	LOAD_BALANCER_TYPE_APPLICATION = "application"
	SCHEME_INTERNET_FACING         = "internet-facing"
	TARGET_TYPE_IP                 = "ip"
	PROTOCOL_HTTP                  = "HTTP"
)

type (
	LoadBalancer struct {
		Name           string
		Stack          string
		Scheme         string
		Type           string
		Subnets        []*Subnet
		SecurityGroups []*SecurityGroup
	}

	TargetGroup struct {
		Name       string
		Stack      string
		Port       int
		Protocol   string
		TargetType string
		Vpc        *Vpc
	}

	Listener struct {
		Name               string
		Stack              string
		LoadBalancer       *LoadBalancer
		Port               int
		Protocol           string
		DefaultTargetGroup *TargetGroup
	}
)

// ID returns the id of the cloud resource
func (lb *LoadBalancer) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: LOAD_BALANCER_TYPE, Namespace: lb.Stack, Name: lb.Name}
}

// Ref references the load balancer's arn.
func (lb *LoadBalancer) Ref() construct.IaCValue {
	return construct.IaCValue{ResourceId: lb.Id(), Property: REF_PROPERTY}
}

func (lb *LoadBalancer) DnsName() construct.IaCValue {
	return construct.IaCValue{ResourceId: lb.Id(), Property: DNS_NAME_PROPERTY}
}

// ID returns the id of the cloud resource
func (tg *TargetGroup) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: TARGET_GROUP_TYPE, Namespace: tg.Stack, Name: tg.Name}
}

// Ref references the target group's arn.
func (tg *TargetGroup) Ref() construct.IaCValue {
	return construct.IaCValue{ResourceId: tg.Id(), Property: REF_PROPERTY}
}

// ID returns the id of the cloud resource
func (l *Listener) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: LISTENER_TYPE, Namespace: l.Stack, Name: l.Name}
}
