package resources

import (
	"strconv"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
)

const (
	REGION_TYPE             = "region"
	ACCOUNT_ID_TYPE         = "account_id"
	PARTITION_TYPE          = "partition"
	AVAILABILITY_ZONES_TYPE = "availability_zones"

	VALUE_PROPERTY = "Value"
)

// Pseudo resources are not declared in a template. They resolve to a literal when the stack's environment pins
// them, or to the matching deploy-time pseudo parameter otherwise.
type (
	Region struct {
		Stack string
		Value string
	}

	AccountId struct {
		Stack string
		Value string
	}

	Partition struct {
		Stack string
		Value string
	}

	AvailabilityZones struct {
		Stack string
	}

	PseudoParameters struct {
		Region            *Region
		Account           *AccountId
		Partition         *Partition
		AvailabilityZones *AvailabilityZones
	}
)

// CreatePseudoParameters declares the pseudo resources of a scope. account and region may be empty.
func CreatePseudoParameters(scope construct.Scope, account, region string) (*PseudoParameters, error) {
	p := &PseudoParameters{
		Region:            &Region{Stack: scope.Name(), Value: region},
		Account:           &AccountId{Stack: scope.Name(), Value: account},
		Partition:         &Partition{Stack: scope.Name()},
		AvailabilityZones: &AvailabilityZones{Stack: scope.Name()},
	}
	for _, res := range []construct.Resource{p.Region, p.Account, p.Partition, p.AvailabilityZones} {
		if err := scope.Add(res); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *Region) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: REGION_TYPE, Namespace: r.Stack, Name: "region"}
}

func (r *Region) Ref() construct.IaCValue {
	return construct.IaCValue{ResourceId: r.Id(), Property: VALUE_PROPERTY}
}

func (a *AccountId) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: ACCOUNT_ID_TYPE, Namespace: a.Stack, Name: "account"}
}

func (a *AccountId) Ref() construct.IaCValue {
	return construct.IaCValue{ResourceId: a.Id(), Property: VALUE_PROPERTY}
}

func (p *Partition) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: PARTITION_TYPE, Namespace: p.Stack, Name: "partition"}
}

func (p *Partition) Ref() construct.IaCValue {
	return construct.IaCValue{ResourceId: p.Id(), Property: VALUE_PROPERTY}
}

func (azs *AvailabilityZones) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: AVAILABILITY_ZONES_TYPE, Namespace: azs.Stack, Name: "AvailabilityZones"}
}

// Zone references the index-th availability zone of the region.
func (azs *AvailabilityZones) Zone(index int) construct.IaCValue {
	return construct.IaCValue{ResourceId: azs.Id(), Property: strconv.Itoa(index)}
}

// IsPseudo reports whether id is one of the pseudo resources, which each stack resolves for itself.
func IsPseudo(id construct.ResourceId) bool {
	if id.Provider != AWS_PROVIDER {
		return false
	}
	switch id.Type {
	case REGION_TYPE, ACCOUNT_ID_TYPE, PARTITION_TYPE, AVAILABILITY_ZONES_TYPE:
		return true
	}
	return false
}
