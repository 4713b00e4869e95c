package config

import "fmt"

const (
	AccountEnvVar = "CDK_DEFAULT_ACCOUNT"
	RegionEnvVar  = "CDK_DEFAULT_REGION"
)

// Environment is the target account and region. Either may be empty, in which case the templates resolve
// them at deploy time.
type Environment struct {
	Account string `json:"account,omitempty" yaml:"account,omitempty" toml:"account,omitempty" mapstructure:"account"`
	Region  string `json:"region,omitempty" yaml:"region,omitempty" toml:"region,omitempty" mapstructure:"region"`
}

// FromEnv reads the account and region from the process environment through lookup (eg. [os.LookupEnv]).
func FromEnv(lookup func(string) (string, bool)) Environment {
	var env Environment
	if v, ok := lookup(AccountEnvVar); ok {
		env.Account = v
	}
	if v, ok := lookup(RegionEnvVar); ok {
		env.Region = v
	}
	return env
}

// Merge fills any empty field of env from other.
func (env Environment) Merge(other Environment) Environment {
	if env.Account == "" {
		env.Account = other.Account
	}
	if env.Region == "" {
		env.Region = other.Region
	}
	return env
}

func (env Environment) IsAgnostic() bool {
	return env.Account == "" && env.Region == ""
}

func (env Environment) String() string {
	account, region := env.Account, env.Region
	if account == "" {
		account = "unknown-account"
	}
	if region == "" {
		region = "unknown-region"
	}
	return fmt.Sprintf("aws://%s/%s", account, region)
}
