package resources

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
)

const (
	ECR_IMAGE_TYPE = "ecr_image"

	IMAGE_URI_PROPERTY = "ImageUri"
)

type (
	// EcrImage is a container image built from a local directory and published to the assets repository before
	// deployment. It is not declared in any template: references to it resolve to the published image uri.
	EcrImage struct {
		Name       string
		Stack      string
		Context    string
		Dockerfile string
		Repository string
		Account    *AccountId
		Region     *Region
	}

	EcrImageCreateParams struct {
		Name       string
		Context    string
		Dockerfile string
		Repository string
		Pseudo     *PseudoParameters
	}
)

func (image *EcrImage) Create(scope construct.Scope, params EcrImageCreateParams) error {
	image.Name = params.Name
	image.Stack = scope.Name()
	image.Context = params.Context
	image.Dockerfile = params.Dockerfile
	if image.Dockerfile == "" {
		image.Dockerfile = "Dockerfile"
	}
	image.Repository = params.Repository
	image.Account = params.Pseudo.Account
	image.Region = params.Pseudo.Region
	return scope.Add(image)
}

// ID returns the id of the cloud resource
func (image *EcrImage) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: ECR_IMAGE_TYPE, Namespace: image.Stack, Name: image.Name}
}

// ImageUri references `<account>.dkr.ecr.<region>.amazonaws.com/<repository>:<content hash>`.
func (image *EcrImage) ImageUri() construct.IaCValue {
	return construct.IaCValue{ResourceId: image.Id(), Property: IMAGE_URI_PROPERTY}
}
