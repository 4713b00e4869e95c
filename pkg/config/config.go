package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type (
	Application struct {
		AppName   string `json:"app" yaml:"app" toml:"app" mapstructure:"app"`
		Namespace string `json:"namespace" yaml:"namespace" toml:"namespace" mapstructure:"namespace"`

		// Path is the directory relative build contexts are resolved against.
		Path   string `json:"path" yaml:"path" toml:"path" mapstructure:"path"`
		OutDir string `json:"out_dir" yaml:"out_dir" toml:"out_dir" mapstructure:"out_dir"`
		// Format of the synthesized templates, "json" or "yaml".
		Format           string `json:"format" yaml:"format" toml:"format" mapstructure:"format"`
		AssetsRepository string `json:"assets_repository" yaml:"assets_repository" toml:"assets_repository" mapstructure:"assets_repository"`

		Environment Environment   `json:"environment" yaml:"environment" toml:"environment" mapstructure:"environment"`
		Network     NetworkConfig `json:"network" yaml:"network" toml:"network" mapstructure:"network"`
		Worker      WorkerConfig  `json:"worker" yaml:"worker" toml:"worker" mapstructure:"worker"`
		Master      MasterConfig  `json:"master" yaml:"master" toml:"master" mapstructure:"master"`
	}

	NetworkConfig struct {
		CidrBlock string `json:"cidr_block" yaml:"cidr_block" toml:"cidr_block" mapstructure:"cidr_block"`
		MaxAzs    int    `json:"max_azs" yaml:"max_azs" toml:"max_azs" mapstructure:"max_azs"`
	}

	WorkerConfig struct {
		BuildContext     string `json:"build_context" yaml:"build_context" toml:"build_context" mapstructure:"build_context"`
		LogRetentionDays int    `json:"log_retention_days" yaml:"log_retention_days" toml:"log_retention_days" mapstructure:"log_retention_days"`
		// TaskDefinitionPrefix is the family prefix of the worker task definitions the master may run.
		TaskDefinitionPrefix string `json:"task_definition_prefix" yaml:"task_definition_prefix" toml:"task_definition_prefix" mapstructure:"task_definition_prefix"`
	}

	MasterConfig struct {
		BuildContext  string `json:"build_context" yaml:"build_context" toml:"build_context" mapstructure:"build_context"`
		Cpu           int    `json:"cpu" yaml:"cpu" toml:"cpu" mapstructure:"cpu"`
		Memory        int    `json:"memory" yaml:"memory" toml:"memory" mapstructure:"memory"`
		DesiredCount  int    `json:"desired_count" yaml:"desired_count" toml:"desired_count" mapstructure:"desired_count"`
		ContainerPort int    `json:"container_port" yaml:"container_port" toml:"container_port" mapstructure:"container_port"`
		AgentPort     int    `json:"agent_port" yaml:"agent_port" toml:"agent_port" mapstructure:"agent_port"`
		DiscoveryName string `json:"discovery_name" yaml:"discovery_name" toml:"discovery_name" mapstructure:"discovery_name"`
		JavaOpts      string `json:"java_opts" yaml:"java_opts" toml:"java_opts" mapstructure:"java_opts"`
		CascConfig    string `json:"casc_config" yaml:"casc_config" toml:"casc_config" mapstructure:"casc_config"`
		// PinnedRegion, when set, is handed to Jenkins as `aws_region` instead of the deployment region.
		PinnedRegion string `json:"pinned_region,omitempty" yaml:"pinned_region,omitempty" toml:"pinned_region,omitempty" mapstructure:"pinned_region"`
	}
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func Default() Application {
	return Application{
		AppName:          "Jenkins",
		Namespace:        "jenkins",
		Path:             ".",
		OutDir:           "cdk.out",
		Format:           FormatJSON,
		AssetsRepository: "jenkins-container-assets",
		Network: NetworkConfig{
			CidrBlock: "10.0.0.0/16",
			MaxAzs:    2,
		},
		Worker: WorkerConfig{
			BuildContext:         "../docker/worker/",
			LogRetentionDays:     1,
			TaskDefinitionPrefix: "fargate-workers",
		},
		Master: MasterConfig{
			BuildContext:  "../docker/master/",
			Cpu:           512,
			Memory:        1024,
			DesiredCount:  1,
			ContainerPort: 8080,
			AgentPort:     50000,
			DiscoveryName: "master",
			JavaOpts:      "-Djenkins.install.runSetupWizard=false",
			CascConfig:    "/config-as-code.yaml",
		},
	}
}

// ReadConfig reads the file at fpath on top of [Default]. The decoder is picked from the file extension.
func ReadConfig(fpath string) (Application, error) {
	appCfg := Default()

	f, err := os.Open(fpath)
	if err != nil {
		return appCfg, err
	}
	defer f.Close() // nolint:errcheck

	switch filepath.Ext(fpath) {
	case ".json":
		err = json.NewDecoder(f).Decode(&appCfg)

	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&appCfg)

	case ".toml":
		err = toml.NewDecoder(f).Decode(&appCfg)

	default:
		return appCfg, fmt.Errorf("unsupported config file extension %q", filepath.Ext(fpath))
	}
	if err != nil {
		return appCfg, errors.Wrapf(err, "could not decode %s", fpath)
	}
	if appCfg.Path == "" || appCfg.Path == "." {
		appCfg.Path = filepath.Dir(fpath)
	} else if !filepath.IsAbs(appCfg.Path) {
		appCfg.Path = filepath.Join(filepath.Dir(fpath), appCfg.Path)
	}
	return appCfg, nil
}

// ResolvePath resolves a build context against the config's Path.
func (a Application) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(a.Path, p)
}

// JenkinsURL is the URL the master is reachable at from inside the namespace, eg. `http://master.jenkins:8080`.
func (a Application) JenkinsURL() string {
	return fmt.Sprintf("http://%s.%s:%d", a.Master.DiscoveryName, a.Namespace, a.Master.ContainerPort)
}
