package resources

import (
	"testing"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AddToTaskRolePolicy(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	scope := newTestScope("JenkinsJenkinsMaster")
	cluster := &EcsCluster{Name: "Cluster", Stack: "JenkinsJenkinsMaster"}
	td := NewEcsTaskDefinition(scope.Name(), "TaskDef", 512, 1024)
	td.TaskRole = NewIamRole(scope.Name(), "TaskRole", ECS_ASSUMER_ROLE_POLICY)
	require.NoError(scope.Add(cluster))
	require.NoError(scope.Add(td.TaskRole))
	require.NoError(scope.Add(td))

	require.NoError(td.AddToTaskRolePolicy(scope, AllowStatement([]string{"ecs:ListClusters"}, "*")))
	policy := td.TaskRolePolicy()
	require.NotNil(policy)
	assert.Equal("TaskRoleDefaultPolicy", policy.Name)
	assert.Equal([]*IamRole{td.TaskRole}, policy.Roles)
	assert.NotContains(scope.graph.DownstreamDependencies(policy.Id()), cluster.Id())

	require.NoError(td.AddToTaskRolePolicy(scope, AllowStatement([]string{"ecs:ListContainerInstances"}, cluster.Arn())))
	require.NoError(td.AddToTaskRolePolicy(scope, AllowStatement([]string{"ecs:ListClusters"}, "*")))

	assert.Same(policy, td.TaskRolePolicy())
	assert.Len(policy.Policy.Statement, 2)
	assert.ElementsMatch(
		scope.graph.DownstreamDependencies(policy.Id()),
		[]construct.ResourceId{td.TaskRole.Id(), cluster.Id()},
	)
}

func Test_AddToTaskRolePolicy_NoRole(t *testing.T) {
	scope := newTestScope("JenkinsJenkinsMaster")
	td := NewEcsTaskDefinition(scope.Name(), "TaskDef", 512, 1024)
	assert.Error(t, td.AddToTaskRolePolicy(scope, AllowStatement([]string{"ecs:ListClusters"}, "*")))
	assert.Error(t, td.AddToExecutionRolePolicy(scope, AllowStatement([]string{"ecs:ListClusters"}, "*")))
}

func Test_AddContainer(t *testing.T) {
	td := NewEcsTaskDefinition("JenkinsJenkinsMaster", "TaskDef", 512, 1024)
	assert.Equal(t, "JenkinsJenkinsMasterTaskDef", td.Family)
	assert.NoError(t, td.AddContainer(&ContainerDefinition{Name: "web"}))
	assert.Error(t, td.AddContainer(&ContainerDefinition{Name: "web"}))
}
