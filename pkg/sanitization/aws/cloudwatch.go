package aws

import (
	"regexp"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization"
)

// CloudwatchLogStreamPrefixSanitizer returns a sanitized awslogs stream prefix when applied.
var CloudwatchLogStreamPrefixSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^-._/#A-Za-z\d]`),
			Replacement: "_",
		},
	}, 512)
