package cfn

const (
	TemplateFormatVersion = "2010-09-09"

	DeletionPolicyRetain = "Retain"
)

type (
	// Template is a single stack's template. Maps are marshalled with sorted keys, which keeps the output stable.
	Template struct {
		AWSTemplateFormatVersion string               `json:"AWSTemplateFormatVersion"`
		Description              string               `json:"Description,omitempty"`
		Resources                map[string]*Resource `json:"Resources"`
		Outputs                  map[string]*Output   `json:"Outputs,omitempty"`
	}

	Resource struct {
		Type                string         `json:"Type"`
		Properties          map[string]any `json:"Properties,omitempty"`
		DependsOn           []string       `json:"DependsOn,omitempty"`
		DeletionPolicy      string         `json:"DeletionPolicy,omitempty"`
		UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty"`
	}

	Output struct {
		Description string  `json:"Description,omitempty"`
		Value       any     `json:"Value"`
		Export      *Export `json:"Export,omitempty"`
	}

	Export struct {
		Name string `json:"Name"`
	}
)

func NewTemplate(description string) *Template {
	return &Template{
		AWSTemplateFormatVersion: TemplateFormatVersion,
		Description:              description,
		Resources:                make(map[string]*Resource),
		Outputs:                  make(map[string]*Output),
	}
}
