package cfn

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/r3labs/diff"
	"sigs.k8s.io/yaml"
)

const (
	StackAdded     = "added"
	StackRemoved   = "removed"
	StackModified  = "modified"
	StackUnchanged = "unchanged"
)

// StackDiff is the difference between the deployed (previously synthesized) template of a stack and the new one.
type StackDiff struct {
	Stack   string
	Status  string
	Changes diff.Changelog
}

// Diff compares the assembly with the one previously written to outDir. Stacks are reported in the new
// assembly's order, followed by the removed stacks. A missing outDir manifest reports every stack as added.
func Diff(outDir string, next *Assembly) ([]StackDiff, error) {
	prev, err := ReadManifest(outDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if prev == nil {
		prev = &Manifest{}
	}

	var diffs []StackDiff
	for _, ms := range next.Manifest.Stacks {
		old := prev.Stack(ms.Name)
		if old == nil {
			diffs = append(diffs, StackDiff{Stack: ms.Name, Status: StackAdded})
			continue
		}
		before, err := readTemplate(filepath.Join(outDir, old.Template))
		if err != nil {
			return nil, err
		}
		after, err := toGeneric(next.Templates[ms.Name])
		if err != nil {
			return nil, err
		}
		// a Differ accumulates its changelog across calls, so each stack gets its own
		differ, err := diff.NewDiffer(diff.SliceOrdering(true))
		if err != nil {
			return nil, err
		}
		changes, err := differ.Diff(before, after)
		if err != nil {
			return nil, errors.Wrapf(err, "could not diff stack %s", ms.Name)
		}
		status := StackUnchanged
		if len(changes) > 0 {
			status = StackModified
		}
		sort.SliceStable(changes, func(i, j int) bool {
			return pathLess(changes[i].Path, changes[j].Path)
		})
		diffs = append(diffs, StackDiff{Stack: ms.Name, Status: status, Changes: changes})
	}
	for _, ms := range prev.Stacks {
		if next.Manifest.Stack(ms.Name) == nil {
			diffs = append(diffs, StackDiff{Stack: ms.Name, Status: StackRemoved})
		}
	}
	return diffs, nil
}

// ReadManifest reads the manifest of a previously written assembly.
func ReadManifest(outDir string) (*Manifest, error) {
	content, err := os.ReadFile(filepath.Join(outDir, ManifestFile))
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := json.Unmarshal(content, m); err != nil {
		return nil, errors.Wrapf(err, "could not read %s", ManifestFile)
	}
	if err := m.CheckVersion(); err != nil {
		return nil, err
	}
	return m, nil
}

// readTemplate reads a json or yaml template into generic maps.
func readTemplate(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read template")
	}
	// yaml is a superset of json, so this handles both formats
	jsonContent, err := yaml.YAMLToJSON(content)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", path)
	}
	var t map[string]any
	if err := json.Unmarshal(jsonContent, &t); err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", path)
	}
	return t, nil
}

func toGeneric(t *Template) (map[string]any, error) {
	content, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	err = json.Unmarshal(content, &m)
	return m, err
}

func pathLess(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
