package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/infra/cfn"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
	"github.com/r3labs/diff"
)

var (
	addColour    = color.New(color.FgGreen)
	removeColour = color.New(color.FgRed)
	changeColour = color.New(color.FgYellow)
	stackColour  = color.New(color.Bold)
)

// PrintDiffs writes one block per stack. Unchanged stacks are skipped unless showAll.
func PrintDiffs(w io.Writer, diffs []cfn.StackDiff, showAll bool) error {
	changed := 0
	for _, d := range diffs {
		var err error
		switch d.Status {
		case cfn.StackAdded:
			_, err = addColour.Fprintf(w, "+ %s (new stack)\n", d.Stack)
		case cfn.StackRemoved:
			_, err = removeColour.Fprintf(w, "- %s (removed)\n", d.Stack)
		case cfn.StackUnchanged:
			if showAll {
				_, err = fmt.Fprintf(w, "  %s (no changes)\n", d.Stack)
			}
		case cfn.StackModified:
			err = printChanges(w, d)
		}
		if err != nil {
			return err
		}
		if d.Status != cfn.StackUnchanged {
			changed++
		}
	}
	if changed == 0 {
		_, err := fmt.Fprintln(w, "No changes")
		return err
	}
	return nil
}

func printChanges(w io.Writer, d cfn.StackDiff) error {
	if _, err := stackColour.Fprintf(w, "~ %s\n", d.Stack); err != nil {
		return err
	}
	for _, change := range d.Changes {
		path := strings.Join(change.Path, ".")
		var err error
		switch change.Type {
		case diff.CREATE:
			_, err = addColour.Fprintf(w, "    + %s: %s\n", path, formatValue(change.To))
		case diff.DELETE:
			_, err = removeColour.Fprintf(w, "    - %s: %s\n", path, formatValue(change.From))
		default:
			_, err = changeColour.Fprintf(w, "    ~ %s: %s -> %s\n", path, formatValue(change.From), formatValue(change.To))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	content, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(content)
}

// PrintStacks lists the stacks in deployment order with the stacks each depends on.
func PrintStacks(w io.Writer, app *stack.App) error {
	order, err := app.StackOrder()
	if err != nil {
		return err
	}
	for i, s := range order {
		deps, err := s.Dependencies()
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%d. %s", i+1, stackColour.Sprint(s.Name()))
		if len(deps) > 0 {
			line += " (depends on " + strings.Join(deps, ", ") + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
