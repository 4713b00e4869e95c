package resources

import (
	"fmt"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
)

const (
	SECURITY_GROUP_TYPE         = "security_group"
	SECURITY_GROUP_INGRESS_TYPE = "security_group_ingress"

	GROUP_ID_PROPERTY = "GroupId"

	PROTOCOL_TCP = "tcp"
	PROTOCOL_ALL = "-1"
)

type (
	SecurityGroup struct {
		Name         string
		Stack        string
		Description  string
		Vpc          *Vpc
		IngressRules []SecurityGroupRule
		// AllowAllOutbound adds a single rule allowing all egress traffic.
		AllowAllOutbound bool
	}

	SecurityGroupRule struct {
		Description string
		CidrBlock   string
		Protocol    string
		FromPort    int
		ToPort      int
	}

	// SecurityGroupIngress is a standalone ingress rule allowing traffic from one group into another. Declaring it
	// separately from either group lets the two groups live in different stacks.
	SecurityGroupIngress struct {
		Name          string
		Stack         string
		Description   string
		SecurityGroup *SecurityGroup
		Source        *SecurityGroup
		Protocol      string
		FromPort      int
		ToPort        int
	}
)

func NewSecurityGroup(stack, name, description string, vpc *Vpc) *SecurityGroup {
	return &SecurityGroup{
		Name:             name,
		Stack:            stack,
		Description:      description,
		Vpc:              vpc,
		AllowAllOutbound: true,
	}
}

// AllowTcpFrom declares an ingress rule into target from every member of source on a single tcp port.
func AllowTcpFrom(scope construct.Scope, target, source *SecurityGroup, port int) (*SecurityGroupIngress, error) {
	ingress := &SecurityGroupIngress{
		Name:          fmt.Sprintf("%sFrom%s%d", target.Name, source.Name, port),
		Stack:         scope.Name(),
		Description:   fmt.Sprintf("from %s:%d", source.Name, port),
		SecurityGroup: target,
		Source:        source,
		Protocol:      PROTOCOL_TCP,
		FromPort:      port,
		ToPort:        port,
	}
	return ingress, scope.Add(ingress)
}

// ID returns the id of the cloud resource
func (sg *SecurityGroup) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: SECURITY_GROUP_TYPE, Namespace: sg.Stack, Name: sg.Name}
}

func (sg *SecurityGroup) GroupId() construct.IaCValue {
	return construct.IaCValue{ResourceId: sg.Id(), Property: GROUP_ID_PROPERTY}
}

// GroupIds references the ids of each group, in order.
func GroupIds(groups []*SecurityGroup) []any {
	ids := make([]any, len(groups))
	for i, sg := range groups {
		ids[i] = sg.GroupId()
	}
	return ids
}

// ID returns the id of the cloud resource
func (ingress *SecurityGroupIngress) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: SECURITY_GROUP_INGRESS_TYPE, Namespace: ingress.Stack, Name: ingress.Name}
}
