package aws

import (
	"regexp"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization"
)

// EcsTaskDefinitionSanitizer returns a sanitized ECS TaskDefinition family when applied.
var EcsTaskDefinitionSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		// strip any characters not matching [a-zA-Z0-9-_]
		{
			Pattern:     regexp.MustCompile(`[^\w-]+`),
			Replacement: "",
		},
	}, 255)

// EcsContainerNameSanitizer returns a sanitized container name when applied.
var EcsContainerNameSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w-]+`),
			Replacement: "",
		},
	}, 255)
