package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/infra/cfn"
	"github.com/lithammer/dedent"
	"github.com/r3labs/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T) string {
	dir := t.TempDir()
	for _, context := range []string{"worker", "master"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "docker", context), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "docker", context, "Dockerfile"), []byte("FROM scratch\n"), 0o644))
	}
	cfgPath := filepath.Join(dir, "jenkins.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(dedent.Dedent(`
		out_dir: out
		worker:
		  build_context: docker/worker
		master:
		  build_context: docker/master
		`)), 0o644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	jm := JenkinsMain{
		Version: "test",
		LookupEnv: func(key string) (string, bool) {
			switch key {
			case "CDK_DEFAULT_ACCOUNT":
				return "123456789012", true
			case "CDK_DEFAULT_REGION":
				return "us-east-1", true
			}
			return "", false
		},
	}
	root := jm.NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append(args, "--color", "never"))
	err := root.Execute()
	return out.String(), err
}

func TestSynthDiffList(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	cfgPath := writeProject(t)
	outDir := filepath.Join(filepath.Dir(cfgPath), "out")

	out, err := run(t, "diff", "--config", cfgPath)
	require.NoError(err)
	assert.Contains(out, "+ JenkinsNetwork (new stack)")
	assert.Contains(out, "+ JenkinsJenkinsMaster (new stack)")

	_, err = run(t, "synth", "--config", cfgPath)
	require.NoError(err)
	for _, f := range []string{cfn.ManifestFile, cfn.DeployScript, "JenkinsNetwork.template.json", "JenkinsJenkinsMaster.assets.json"} {
		assert.FileExists(filepath.Join(outDir, f))
	}
	manifest, err := cfn.ReadManifest(outDir)
	require.NoError(err)
	assert.Equal("aws://123456789012/us-east-1", manifest.Stack("JenkinsJenkinsMaster").Environment)

	out, err = run(t, "diff", "--config", cfgPath)
	require.NoError(err)
	assert.Equal("No changes\n", out)

	out, err = run(t, "diff", "--config", cfgPath, "--set", "master.cpu=1024", "--set", "master.memory=2048")
	require.NoError(err)
	assert.Contains(out, "~ JenkinsJenkinsMaster\n")
	assert.Contains(out, "    ~ Resources.JenkinsMasterServiceTaskDef.Properties.Cpu: 512 -> 1024\n")

	out, err = run(t, "list", "--config", cfgPath)
	require.NoError(err)
	assert.Equal(dedent.Dedent(`
		1. JenkinsNetwork
		2. JenkinsInit (depends on JenkinsNetwork)
		3. JenkinsWorker (depends on JenkinsNetwork)
		4. JenkinsJenkinsMaster (depends on JenkinsInit, JenkinsNetwork, JenkinsWorker)
		`)[1:], out)
}

func TestSynth_Errors(t *testing.T) {
	cfgPath := writeProject(t)
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing config", args: []string{"synth", "--config", filepath.Join(t.TempDir(), "none.yaml")}},
		{name: "bad override", args: []string{"synth", "--config", cfgPath, "--set", "master.nope=1"}},
		{name: "bad format", args: []string{"synth", "--config", cfgPath, "--format", "xml"}},
		{name: "missing build context", args: []string{"synth", "--config", cfgPath, "--set", "worker.build_context=missing"}},
		{name: "unexpected argument", args: []string{"synth", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestPrintDiffs(t *testing.T) {
	color.NoColor = true
	buf := new(bytes.Buffer)
	err := PrintDiffs(buf, []cfn.StackDiff{
		{Stack: "A", Status: cfn.StackUnchanged},
		{Stack: "B", Status: cfn.StackModified, Changes: diff.Changelog{
			{Type: diff.CREATE, Path: []string{"Resources", "Log"}, To: map[string]any{"Type": "AWS::Logs::LogGroup"}},
			{Type: diff.DELETE, Path: []string{"Outputs", "Url"}, From: "x"},
		}},
		{Stack: "C", Status: cfn.StackRemoved},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, dedent.Dedent(`
		  A (no changes)
		~ B
		    + Resources.Log: {"Type":"AWS::Logs::LogGroup"}
		    - Outputs.Url: x
		- C (removed)
		`)[1:], buf.String())
}
