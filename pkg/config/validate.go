package config

import (
	"fmt"
	"net/netip"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/multierr"
)

// fargateMemory lists the memory values (MiB) Fargate accepts for each cpu value.
var fargateMemory = map[int][]int{
	256:  {512, 1024, 2048},
	512:  {1024, 2048, 3072, 4096},
	1024: steps(2048, 8192),
	2048: steps(4096, 16384),
	4096: steps(8192, 30720),
}

func steps(from, to int) []int {
	var out []int
	for m := from; m <= to; m += 1024 {
		out = append(out, m)
	}
	return out
}

func (a Application) Validate() error {
	var errs multierr.Error
	if a.AppName == "" {
		errs.Append(fmt.Errorf("app name must not be empty"))
	}
	if a.Namespace == "" {
		errs.Append(fmt.Errorf("namespace must not be empty"))
	}
	if a.Format != FormatJSON && a.Format != FormatYAML {
		errs.Append(fmt.Errorf("format must be %q or %q, got %q", FormatJSON, FormatYAML, a.Format))
	}
	if a.AssetsRepository == "" {
		errs.Append(fmt.Errorf("assets repository must not be empty"))
	}

	if prefix, err := netip.ParsePrefix(a.Network.CidrBlock); err != nil {
		errs.Append(fmt.Errorf("network.cidr_block: %w", err))
	} else if !prefix.Addr().Is4() {
		errs.Append(fmt.Errorf("network.cidr_block must be an IPv4 block"))
	}
	if a.Network.MaxAzs < 1 || a.Network.MaxAzs > 3 {
		errs.Append(fmt.Errorf("network.max_azs must be between 1 and 3, got %d", a.Network.MaxAzs))
	}

	if a.Worker.BuildContext == "" {
		errs.Append(fmt.Errorf("worker.build_context must not be empty"))
	}
	if a.Worker.LogRetentionDays <= 0 {
		errs.Append(fmt.Errorf("worker.log_retention_days must be positive"))
	}
	if a.Worker.TaskDefinitionPrefix == "" {
		errs.Append(fmt.Errorf("worker.task_definition_prefix must not be empty"))
	}

	m := a.Master
	if m.BuildContext == "" {
		errs.Append(fmt.Errorf("master.build_context must not be empty"))
	}
	if allowed, ok := fargateMemory[m.Cpu]; !ok {
		errs.Append(fmt.Errorf("master.cpu %d is not a valid Fargate cpu value", m.Cpu))
	} else if !contains(allowed, m.Memory) {
		errs.Append(fmt.Errorf("master.memory %d is not valid for cpu %d (allowed: %v)", m.Memory, m.Cpu, allowed))
	}
	if m.DesiredCount < 0 {
		errs.Append(fmt.Errorf("master.desired_count must not be negative"))
	}
	if m.ContainerPort <= 0 || m.ContainerPort > 65535 {
		errs.Append(fmt.Errorf("master.container_port %d out of range", m.ContainerPort))
	}
	if m.AgentPort <= 0 || m.AgentPort > 65535 {
		errs.Append(fmt.Errorf("master.agent_port %d out of range", m.AgentPort))
	}
	if m.ContainerPort == m.AgentPort {
		errs.Append(fmt.Errorf("master.container_port and master.agent_port must differ"))
	}
	if m.DiscoveryName == "" {
		errs.Append(fmt.Errorf("master.discovery_name must not be empty"))
	}
	return errs.ErrOrNil()
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
