package aws

import (
	"regexp"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization"
)

// PrivateDnsNamespaceSanitizer returns a sanitized private dns namespace when applied.
var PrivateDnsNamespaceSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^a-zA-Z0-9.-]+`),
			Replacement: "-",
		},
	}, 253)

// ServiceDiscoveryNameSanitizer returns a sanitized DNS label when applied.
var ServiceDiscoveryNameSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^a-zA-Z0-9-]+`),
			Replacement: "-",
		},
	}, 63)
