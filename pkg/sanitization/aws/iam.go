package aws

import (
	"regexp"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization"
)

var IamPolicySanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w+=,.@-]`),
			Replacement: "_",
		},
	}, 128)
