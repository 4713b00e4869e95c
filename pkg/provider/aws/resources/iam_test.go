package resources

import (
	"testing"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/stretchr/testify/assert"
)

func Test_AddAwsManagedPolicy(t *testing.T) {
	assert := assert.New(t)
	partition := &Partition{Stack: "JenkinsWorker"}
	role := NewIamRole("JenkinsWorker", "ExecutionRole", ECS_ASSUMER_ROLE_POLICY)

	role.AddAwsManagedPolicy(partition, ECS_TASK_EXECUTION_ROLE_POLICY)
	role.AddAwsManagedPolicy(partition, ECS_TASK_EXECUTION_ROLE_POLICY)

	assert.Equal([]any{
		construct.Interpolate("arn:", partition.Ref(), ":iam::aws:policy/", ECS_TASK_EXECUTION_ROLE_POLICY),
	}, role.ManagedPolicies)
	assert.Equal([]construct.ResourceId{partition.Id()}, construct.DirectDependencies(role))
}

func Test_PolicyDocument_Deduplicate(t *testing.T) {
	tests := []struct {
		name string
		in   []StatementEntry
		want []StatementEntry
	}{
		{
			name: "no duplicates",
			in: []StatementEntry{
				AllowStatement([]string{"ecs:ListClusters"}, "*"),
				AllowStatement([]string{"ecs:RunTask"}, "*"),
			},
			want: []StatementEntry{
				AllowStatement([]string{"ecs:ListClusters"}, "*"),
				AllowStatement([]string{"ecs:RunTask"}, "*"),
			},
		},
		{
			name: "keeps first occurrence",
			in: []StatementEntry{
				AllowStatement([]string{"ecs:RunTask"}, "*"),
				AllowStatement([]string{"ecs:ListClusters"}, "*"),
				AllowStatement([]string{"ecs:RunTask"}, "*"),
			},
			want: []StatementEntry{
				AllowStatement([]string{"ecs:RunTask"}, "*"),
				AllowStatement([]string{"ecs:ListClusters"}, "*"),
			},
		},
		{
			name: "different resources are distinct",
			in: []StatementEntry{
				AllowStatement([]string{"ecs:RunTask"}, "*"),
				AllowStatement([]string{"ecs:RunTask"}, "arn:aws:ecs:::task/*"),
			},
			want: []StatementEntry{
				AllowStatement([]string{"ecs:RunTask"}, "*"),
				AllowStatement([]string{"ecs:RunTask"}, "arn:aws:ecs:::task/*"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &PolicyDocument{Version: VERSION, Statement: tt.in}
			doc.Deduplicate()
			assert.Equal(t, tt.want, doc.Statement)
		})
	}
}
