package resources

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization/aws"
)

const (
	PRIVATE_DNS_NAMESPACE_TYPE     = "private_dns_namespace"
	SERVICE_DISCOVERY_SERVICE_TYPE = "service_discovery_service"

	ID_PROPERTY = "Id"
)

type (
	PrivateDnsNamespace struct {
		Name    string
		Stack   string
		DnsName string
		Vpc     *Vpc
	}

	// ServiceDiscoveryService registers the tasks of an ecs service as `<DnsName>.<namespace>` records.
	ServiceDiscoveryService struct {
		Name          string
		Stack         string
		DnsName       string
		DnsNamespace  *PrivateDnsNamespace
		DnsRecordType string
		DnsTtl        int
	}
)

func NewPrivateDnsNamespace(stack, name, dnsName string, vpc *Vpc) *PrivateDnsNamespace {
	return &PrivateDnsNamespace{
		Name:    name,
		Stack:   stack,
		DnsName: aws.PrivateDnsNamespaceSanitizer.Apply(dnsName),
		Vpc:     vpc,
	}
}

// ID returns the id of the cloud resource
func (ns *PrivateDnsNamespace) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: PRIVATE_DNS_NAMESPACE_TYPE, Namespace: ns.Stack, Name: ns.Name}
}

func (ns *PrivateDnsNamespace) NamespaceId() construct.IaCValue {
	return construct.IaCValue{ResourceId: ns.Id(), Property: ID_PROPERTY}
}

func (ns *PrivateDnsNamespace) Arn() construct.IaCValue {
	return construct.IaCValue{ResourceId: ns.Id(), Property: ARN_PROPERTY}
}

func NewServiceDiscoveryService(stack, name, dnsName string, namespace *PrivateDnsNamespace) *ServiceDiscoveryService {
	return &ServiceDiscoveryService{
		Name:          name,
		Stack:         stack,
		DnsName:       aws.ServiceDiscoveryNameSanitizer.Apply(dnsName),
		DnsNamespace:  namespace,
		DnsRecordType: "A",
		DnsTtl:        60,
	}
}

// ID returns the id of the cloud resource
func (sd *ServiceDiscoveryService) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: SERVICE_DISCOVERY_SERVICE_TYPE, Namespace: sd.Stack, Name: sd.Name}
}

func (sd *ServiceDiscoveryService) Arn() construct.IaCValue {
	return construct.IaCValue{ResourceId: sd.Id(), Property: ARN_PROPERTY}
}
