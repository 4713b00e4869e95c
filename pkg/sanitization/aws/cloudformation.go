package aws

import (
	"regexp"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization"
)

// LogicalIdSanitizer returns a valid template logical id (alphanumeric only) when applied.
var LogicalIdSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^A-Za-z0-9]+`),
			Replacement: "",
		},
	}, 255)

// StackNameSanitizer returns a valid stack name when applied.
var StackNameSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		// strip any leading non alpha characters
		{
			Pattern:     regexp.MustCompile(`^[^A-Za-z]+`),
			Replacement: "",
		},
		{
			Pattern:     regexp.MustCompile(`[^A-Za-z0-9-]+`),
			Replacement: "-",
		},
	}, 128)

// ExportNameSanitizer returns a valid cross-stack export name when applied.
var ExportNameSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^A-Za-z0-9:-]+`),
			Replacement: "",
		},
	}, 255)
