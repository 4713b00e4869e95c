package jenkins

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/infra/cfn"
	kio "github.com/jenkins-ecs/jenkins-ecs/pkg/io"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Application {
	dir := t.TempDir()
	for _, context := range []string{"worker", "master"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, context), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, context, "Dockerfile"), []byte("FROM jenkins/"+context+"\n"), 0o644))
	}
	cfg := config.Default()
	cfg.Path = dir
	cfg.Worker.BuildContext = "worker"
	cfg.Master.BuildContext = "master"
	cfg.Environment = config.Environment{Account: "123456789012", Region: "us-east-1"}
	return cfg
}

func build(t *testing.T, cfg config.Application) (*stack.App, *Deployment) {
	app, d, err := Build(cfg)
	require.NoError(t, err)
	return app, d
}

func resourcesOf[T construct.Resource](s *stack.Stack) []T {
	var out []T
	for _, res := range s.Resources() {
		if typed, ok := res.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func TestBuild_StackOrder(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	app, d := build(t, testConfig(t))

	order, err := app.StackOrder()
	require.NoError(err)
	var names []string
	for _, s := range order {
		names = append(names, s.Name())
	}
	assert.Equal([]string{"JenkinsNetwork", "JenkinsInit", "JenkinsWorker", "JenkinsJenkinsMaster"}, names)

	deps, err := d.Master.Stack.Dependencies()
	require.NoError(err)
	assert.Equal([]string{"JenkinsInit", "JenkinsNetwork", "JenkinsWorker"}, deps)

	deps, err = d.Cluster.Stack.Dependencies()
	require.NoError(err)
	assert.Equal([]string{"JenkinsNetwork"}, deps)

	// the worker only references the cluster's vpc; creation order still places it after the cluster
	deps, err = d.Worker.Stack.Dependencies()
	require.NoError(err)
	assert.Equal([]string{"JenkinsNetwork"}, deps)

	assert.Equal(config.Environment{Account: "123456789012", Region: "us-east-1"}, d.Master.Stack.Env())
	assert.True(d.Network.Stack.Env().IsAgnostic())
}

func TestBuild_MasterEnvironment(t *testing.T) {
	assert := assert.New(t)
	_, d := build(t, testConfig(t))
	env := d.Master.Environment

	vars := env.Variables()
	var keys []string
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal([]string{
		"CASC_JENKINS_CONFIG", "JAVA_OPTS", "aws_region", "cluster_arn", "cluster_stack", "execution_role_arn",
		"jenkins_url", "network_stack", "security_group_ids", "subnet_ids", "task_role_arn", "worker_image",
		"worker_log_group", "worker_log_stream_prefix", "worker_stack",
	}, keys)

	assert.Equal("JenkinsNetwork", vars["network_stack"])
	assert.Equal("JenkinsInit", vars["cluster_stack"])
	assert.Equal("JenkinsWorker", vars["worker_stack"])
	assert.Equal("http://master.jenkins:8080", vars["jenkins_url"])
	assert.Equal(d.Cluster.Cluster.Arn(), vars["cluster_arn"])
	assert.Equal(d.Worker.SecurityGroup.GroupId(), vars["security_group_ids"])
	assert.Equal(d.Worker.ExecutionRole.Arn(), vars["execution_role_arn"])
	assert.Equal(d.Worker.TaskRole.Arn(), vars["task_role_arn"])
	assert.Equal(d.Worker.LogGroup.Ref(), vars["worker_log_group"])
	assert.Equal(d.Worker.LogStream.Ref(), vars["worker_log_stream_prefix"])
	assert.Equal(d.Worker.Image.ImageUri(), vars["worker_image"])
	assert.Equal(d.Master.Stack.Pseudo().Region.Ref(), vars["aws_region"])

	require.Len(t, d.Network.PrivateSubnets, 2)
	assert.Equal(construct.JoinValues(",", d.Network.PrivateSubnets[0].SubnetId(), d.Network.PrivateSubnets[1].SubnetId()),
		vars["subnet_ids"])

	assert.Equal(vars, d.Master.Service.Container.Environment)
}

func TestBuild_PinnedRegion(t *testing.T) {
	cfg := testConfig(t)
	cfg.Master.PinnedRegion = "ap-northeast-1"
	_, d := build(t, cfg)
	assert.Equal(t, "ap-northeast-1", d.Master.Environment.Variables()["aws_region"])
}

func TestBuild_WorkerIngress(t *testing.T) {
	assert := assert.New(t)
	_, d := build(t, testConfig(t))

	var fromWorker []*resources.SecurityGroupIngress
	for _, ingress := range resourcesOf[*resources.SecurityGroupIngress](d.Master.Stack) {
		if ingress.Source == d.Worker.SecurityGroup {
			fromWorker = append(fromWorker, ingress)
		}
	}
	require.Len(t, fromWorker, 2)
	assert.Equal(d.Master.WorkerIngress, fromWorker)

	var ports []int
	for _, ingress := range fromWorker {
		assert.Equal(resources.PROTOCOL_TCP, ingress.Protocol)
		assert.Equal(ingress.FromPort, ingress.ToPort)
		assert.Equal(d.Master.Service.ServiceSecurityGroup, ingress.SecurityGroup)
		ports = append(ports, ingress.FromPort)
	}
	assert.ElementsMatch([]int{50000, 8080}, ports)
}

func TestBuild_WorkerRoles(t *testing.T) {
	assert := assert.New(t)
	app, d := build(t, testConfig(t))

	require.Len(t, d.Worker.ExecutionRole.ManagedPolicies, 1)
	assert.Equal(
		construct.Interpolate("arn:", d.Worker.Stack.Pseudo().Partition.Ref(), ":iam::aws:policy/", "service-role/AmazonECSTaskExecutionRolePolicy"),
		d.Worker.ExecutionRole.ManagedPolicies[0],
	)
	assert.Empty(d.Worker.TaskRole.ManagedPolicies)
	assert.Len(resourcesOf[*resources.IamRole](d.Worker.Stack), 2)

	for _, s := range app.Stacks() {
		for _, policy := range resourcesOf[*resources.IamPolicy](s) {
			for _, role := range policy.Roles {
				assert.NotEqual(d.Worker.TaskRole, role, "policy %s", policy.Name)
				assert.NotEqual(d.Worker.ExecutionRole, role, "policy %s", policy.Name)
			}
		}
	}
	assert.Equal(1, d.Worker.LogGroup.RetentionInDays)
	assert.Equal(d.Worker.LogGroup, d.Worker.LogStream.LogGroup)
}

func TestBuild_MasterGrants(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	app, d := build(t, testConfig(t))

	policy := d.Master.TaskRolePolicy
	require.NotNil(policy)
	require.Equal([]*resources.IamRole{d.Master.Service.TaskDefinition.TaskRole}, policy.Roles)
	require.Len(policy.Policy.Statement, 5)

	actions := make(map[string]resources.StatementEntry)
	for _, stmt := range policy.Policy.Statement {
		for _, action := range stmt.Action {
			actions[action] = stmt
		}
		if len(stmt.Resource) == 1 && stmt.Resource[0] == "*" {
			for _, action := range stmt.Action {
				assert.NotContains([]string{"ecs:RunTask", "ecs:StopTask", "iam:PassRole", "ecs:ListContainerInstances"}, action)
			}
		}
	}
	assert.Equal([]any{d.Cluster.Cluster.Arn()}, actions["ecs:ListContainerInstances"].Resource)
	assert.Equal([]any{d.Worker.TaskRole.Arn(), d.Worker.ExecutionRole.Arn()}, actions["iam:PassRole"].Resource)
	assert.Equal(map[string]map[string]any{
		"ForAnyValue:ArnEquals": {"ecs:cluster": d.Cluster.Cluster.Arn()},
	}, actions["ecs:StopTask"].Condition)

	assembly, err := cfn.Compile(app, cfn.Options{})
	require.NoError(err)
	master := assembly.Templates["JenkinsJenkinsMaster"]
	require.Contains(master.Resources, "JenkinsMasterServiceTaskDefTaskRoleDefaultPolicy")
	doc := master.Resources["JenkinsMasterServiceTaskDefTaskRoleDefaultPolicy"].Properties["PolicyDocument"].(map[string]any)
	rendered := make(map[string]map[string]any)
	for _, stmt := range doc["Statement"].([]any) {
		stmt := stmt.(map[string]any)
		if action, ok := stmt["Action"].(string); ok {
			rendered[action] = stmt
		}
	}
	assert.Equal(cfn.JoinFn("", []any{
		"arn:", cfn.Ref(cfn.PseudoPartition), ":ecs:us-east-1:123456789012:task-definition/fargate-workers*",
	}), rendered["ecs:RunTask"]["Resource"])
	assert.Equal(cfn.JoinFn("", []any{
		"arn:", cfn.Ref(cfn.PseudoPartition), ":ecs:us-east-1:123456789012:task/*",
	}), rendered["ecs:StopTask"]["Resource"])
	assert.Equal(map[string]any{
		"ForAnyValue:ArnEquals": map[string]any{"ecs:cluster": cfn.ImportValue("JenkinsInit:EcsClusterArn")},
	}, rendered["ecs:StopTask"]["Condition"])

	assert.Contains(master.Outputs, "LoadBalancerDNS")
	assert.Contains(master.Outputs, "ServiceURL")
}

func TestBuild_Deterministic(t *testing.T) {
	cfg := testConfig(t)
	synth := func() []kio.File {
		app, _ := build(t, cfg)
		assembly, err := cfn.Compile(app, cfn.Options{OutDir: filepath.Join(cfg.Path, "cdk.out")})
		require.NoError(t, err)
		return assembly.Files
	}
	first, second := synth(), synth()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Path(), second[i].Path())
		assert.Equal(t, string(first[i].(*kio.RawFile).Content), string(second[i].(*kio.RawFile).Content), first[i].Path())
	}

	dir := t.TempDir()
	require.NoError(t, kio.OutputTo(first, dir))
	app, _ := build(t, cfg)
	assembly, err := cfn.Compile(app, cfn.Options{OutDir: filepath.Join(cfg.Path, "cdk.out")})
	require.NoError(t, err)
	diffs, err := cfn.Diff(dir, assembly)
	require.NoError(t, err)
	require.Len(t, diffs, 4)
	for _, d := range diffs {
		assert.Equal(t, cfn.StackUnchanged, d.Status, d.Stack)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(app *stack.App, cfg config.Application) error
	}{
		{
			name: "invalid config",
			build: func(app *stack.App, cfg config.Application) error {
				cfg.Master.Memory = 3
				_, _, err := Build(cfg)
				return err
			},
		},
		{
			name: "cluster without network",
			build: func(app *stack.App, cfg config.Application) error {
				_, err := NewCluster(app, cfg, nil)
				return err
			},
		},
		{
			name: "cluster without namespace",
			build: func(app *stack.App, cfg config.Application) error {
				network := &Network{Vpc: &resources.Vpc{Name: "Vpc", Stack: "JenkinsNetwork"}}
				cfg.Namespace = ""
				_, err := NewCluster(app, cfg, network)
				return err
			},
		},
		{
			name: "worker without cluster",
			build: func(app *stack.App, cfg config.Application) error {
				_, err := NewWorker(app, cfg, nil)
				return err
			},
		},
		{
			name: "master without worker",
			build: func(app *stack.App, cfg config.Application) error {
				_, err := NewMaster(app, cfg, &Network{}, &Cluster{}, nil)
				return err
			},
		},
		{
			name: "network declared twice",
			build: func(app *stack.App, cfg config.Application) error {
				_, err := NewNetwork(app, cfg)
				if err == nil {
					_, err = NewNetwork(app, cfg)
				}
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			assert.Error(t, tt.build(stack.NewApp(cfg.AppName), cfg))
		})
	}
}

func TestBuild_MissingBuildContext(t *testing.T) {
	cfg := testConfig(t)
	cfg.Worker.BuildContext = "nope"
	app, _ := build(t, cfg)

	_, err := cfn.Compile(app, cfn.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCountDeclared(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	app, d := build(t, testConfig(t))
	assembly, err := cfn.Compile(app, cfn.Options{})
	require.NoError(err)

	wantImages := map[string]int{d.Worker.Stack.Name(): 1, d.Master.Stack.Name(): 1}
	for _, s := range app.Stacks() {
		declared, images := countDeclared(s)
		assert.Equal(len(assembly.Templates[s.Name()].Resources), declared, s.Name())
		assert.Equal(wantImages[s.Name()], images, s.Name())
	}
	declared, _ := countDeclared(d.Cluster.Stack)
	assert.Equal(2, declared)
}

func TestBuild_DiffNetworkOnly(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	cfg := testConfig(t)
	outDir := filepath.Join(cfg.Path, "cdk.out")

	app, _ := build(t, cfg)
	prev, err := cfn.Compile(app, cfn.Options{OutDir: outDir})
	require.NoError(err)
	require.NoError(kio.OutputTo(prev.Files, outDir))

	cfg.Network.CidrBlock = "10.1.0.0/16"
	app, d := build(t, cfg)
	next, err := cfn.Compile(app, cfn.Options{OutDir: outDir})
	require.NoError(err)

	diffs, err := cfn.Diff(outDir, next)
	require.NoError(err)
	require.Len(diffs, 4)
	for _, diff := range diffs {
		if diff.Stack == d.Network.Stack.Name() {
			assert.Equal(cfn.StackModified, diff.Status)
			assert.NotEmpty(diff.Changes)
			continue
		}
		assert.Equal(cfn.StackUnchanged, diff.Status, diff.Stack)
		assert.Empty(diff.Changes, diff.Stack)
	}
}
