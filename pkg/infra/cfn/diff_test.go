package cfn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	kio "github.com/jenkins-ecs/jenkins-ecs/pkg/io"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statuses(diffs []StackDiff) map[string]string {
	m := make(map[string]string)
	for _, d := range diffs {
		m[d.Stack] = d.Status
	}
	return m
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name   string
		format string
		modify func(t *testing.T, ta *testApp)
		want   map[string]string
	}{
		{
			name: "unchanged",
			want: map[string]string{"Net": StackUnchanged, "Svc": StackUnchanged},
		},
		{
			name:   "unchanged yaml",
			format: config.FormatYAML,
			want:   map[string]string{"Net": StackUnchanged, "Svc": StackUnchanged},
		},
		{
			name: "modified",
			modify: func(t *testing.T, ta *testApp) {
				ta.vpc.CidrBlock = "10.1.0.0/16"
			},
			want: map[string]string{"Net": StackModified, "Svc": StackUnchanged},
		},
		{
			name: "added stack",
			modify: func(t *testing.T, ta *testApp) {
				_, err := ta.app.NewStack("Extra", config.Environment{})
				require.NoError(t, err)
			},
			want: map[string]string{"Net": StackUnchanged, "Svc": StackUnchanged, "Extra": StackAdded},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			outDir := t.TempDir()

			prev, err := Compile(newTestApp(t, config.Environment{}).app, Options{Format: tt.format})
			require.NoError(err)
			require.NoError(kio.OutputTo(prev.Files, outDir))

			ta := newTestApp(t, config.Environment{})
			if tt.modify != nil {
				tt.modify(t, ta)
			}
			next, err := Compile(ta.app, Options{Format: tt.format})
			require.NoError(err)

			diffs, err := Diff(outDir, next)
			require.NoError(err)
			assert.Equal(tt.want, statuses(diffs))
			for _, d := range diffs {
				if d.Status != StackModified {
					assert.Empty(d.Changes, d.Stack)
				}
			}
		})
	}
}

func TestDiff_ModifiedChanges(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	outDir := t.TempDir()

	prev, err := Compile(newTestApp(t, config.Environment{}).app, Options{})
	require.NoError(err)
	require.NoError(kio.OutputTo(prev.Files, outDir))

	ta := newTestApp(t, config.Environment{})
	ta.vpc.CidrBlock = "10.1.0.0/16"
	next, err := Compile(ta.app, Options{})
	require.NoError(err)

	diffs, err := Diff(outDir, next)
	require.NoError(err)
	require.Equal("Net", diffs[0].Stack)
	require.Len(diffs[0].Changes, 1)
	change := diffs[0].Changes[0]
	assert.Equal([]string{"Resources", "Vpc", "Properties", "CidrBlock"}, change.Path)
	assert.Equal("10.0.0.0/16", change.From)
	assert.Equal("10.1.0.0/16", change.To)

	require.Len(diffs, 2)
	assert.Equal("Svc", diffs[1].Stack)
	assert.Equal(StackUnchanged, diffs[1].Status)
	assert.Empty(diffs[1].Changes)
}

func TestDiff_RemovedStack(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	outDir := t.TempDir()

	ta := newTestApp(t, config.Environment{})
	_, err := ta.app.NewStack("Old", config.Environment{})
	require.NoError(err)
	prev, err := Compile(ta.app, Options{})
	require.NoError(err)
	require.NoError(kio.OutputTo(prev.Files, outDir))

	next, err := Compile(newTestApp(t, config.Environment{}).app, Options{})
	require.NoError(err)

	diffs, err := Diff(outDir, next)
	require.NoError(err)
	require.Len(diffs, 3)
	assert.Equal(StackDiff{Stack: "Old", Status: StackRemoved}, diffs[2])
}

func TestDiff_NoPreviousAssembly(t *testing.T) {
	require := require.New(t)
	app := stack.NewApp("Test")
	s, err := app.NewStack("Net", config.Environment{})
	require.NoError(err)
	require.NoError(s.Add(&resources.Vpc{Name: "Vpc", Stack: "Net", CidrBlock: "10.0.0.0/16"}))
	next, err := Compile(app, Options{})
	require.NoError(err)

	diffs, err := Diff(filepath.Join(t.TempDir(), "missing"), next)
	require.NoError(err)
	require.Equal([]StackDiff{{Stack: "Net", Status: StackAdded}}, diffs)
}

func TestDiff_IncompatibleManifest(t *testing.T) {
	require := require.New(t)
	outDir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(outDir, ManifestFile), []byte(`{"version": "2.0.0"}`), 0o644))

	next, err := Compile(newTestApp(t, config.Environment{}).app, Options{})
	require.NoError(err)
	_, err = Diff(outDir, next)
	require.Error(err)
}
