package cfn

import (
	"github.com/coreos/go-semver/semver"
	"github.com/pkg/errors"
)

const (
	// ManifestVersion is bumped on a major version when the assembly layout changes incompatibly.
	ManifestVersion = "1.0.0"

	ManifestFile   = "manifest.json"
	DeployScript   = "deploy.sh"
	templateSuffix = ".template"
	assetsSuffix   = ".assets.json"
)

type (
	Manifest struct {
		Version string          `json:"version"`
		App     string          `json:"app"`
		Format  string          `json:"format"`
		Stacks  []ManifestStack `json:"stacks"`
	}

	// ManifestStack describes one stack. Stacks are listed in deployment order.
	ManifestStack struct {
		Name         string   `json:"name"`
		Template     string   `json:"template"`
		Assets       string   `json:"assets,omitempty"`
		Environment  string   `json:"environment"`
		Dependencies []string `json:"dependencies,omitempty"`
	}

	AssetManifest struct {
		Version string       `json:"version"`
		Images  []ImageAsset `json:"images"`
	}

	// ImageAsset is a docker image to build and push to `<account>.dkr.ecr.<region>.amazonaws.com/<Repository>:<Tag>`
	// before the stack is deployed.
	ImageAsset struct {
		Id         string `json:"id"`
		Directory  string `json:"directory"`
		Dockerfile string `json:"dockerfile"`
		Repository string `json:"repository"`
		Tag        string `json:"tag"`
	}
)

func (m *Manifest) Stack(name string) *ManifestStack {
	for i := range m.Stacks {
		if m.Stacks[i].Name == name {
			return &m.Stacks[i]
		}
	}
	return nil
}

// CheckVersion verifies a manifest written by another version of this tool can be read.
func (m *Manifest) CheckVersion() error {
	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return errors.Wrapf(err, "invalid manifest version '%s'", m.Version)
	}
	current := semver.New(ManifestVersion)
	if v.Major != current.Major {
		return errors.Errorf("manifest version %s is not compatible with %s", v, current)
	}
	return nil
}
