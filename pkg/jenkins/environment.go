package jenkins

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
)

// MasterEnvironment is everything the master's configuration-as-code needs to know about the other units. It
// reaches the container as environment variables, see [MasterEnvironment.Variables].
type MasterEnvironment struct {
	JavaOpts   string
	CascConfig string

	NetworkStack string
	ClusterStack string
	WorkerStack  string

	ClusterArn construct.IaCValue
	// AwsRegion is either a literal region or a reference to the deployment region.
	AwsRegion  any
	JenkinsUrl string

	SubnetIds             construct.Join
	SecurityGroupIds      construct.IaCValue
	ExecutionRoleArn      construct.IaCValue
	TaskRoleArn           construct.IaCValue
	WorkerLogGroup        construct.IaCValue
	WorkerLogStreamPrefix construct.IaCValue
	WorkerImage           construct.IaCValue
}

// Variables returns the container environment.
func (env MasterEnvironment) Variables() map[string]any {
	return map[string]any{
		// https://github.com/jenkinsci/docker/blob/master/README.md#passing-jvm-parameters
		"JAVA_OPTS": env.JavaOpts,
		// https://github.com/jenkinsci/configuration-as-code-plugin/blob/master/README.md#getting-started
		"CASC_JENKINS_CONFIG":      env.CascConfig,
		"network_stack":            env.NetworkStack,
		"cluster_stack":            env.ClusterStack,
		"worker_stack":             env.WorkerStack,
		"cluster_arn":              env.ClusterArn,
		"aws_region":               env.AwsRegion,
		"jenkins_url":              env.JenkinsUrl,
		"subnet_ids":               env.SubnetIds,
		"security_group_ids":       env.SecurityGroupIds,
		"execution_role_arn":       env.ExecutionRoleArn,
		"task_role_arn":            env.TaskRoleArn,
		"worker_log_group":         env.WorkerLogGroup,
		"worker_log_stream_prefix": env.WorkerLogStreamPrefix,
		"worker_image":             env.WorkerImage,
	}
}
