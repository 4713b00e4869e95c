package cfn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization/aws"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
	"go.uber.org/zap"
)

// renderContext resolves values as seen from a single stack.
type renderContext struct {
	*compiler
	stack *stack.Stack
}

// value converts a resource field to its template form. Strings, numbers and booleans are kept, references
// become intrinsic functions.
func (ctx renderContext) value(v any) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int, int32, int64, float64:
		return v, nil
	case []string:
		return v, nil
	case construct.IaCValue:
		return ctx.iacValue(v)
	case construct.Join:
		return ctx.join(v)
	case []any:
		list := make([]any, len(v))
		for i, item := range v {
			resolved, err := ctx.value(item)
			if err != nil {
				return nil, err
			}
			list[i] = resolved
		}
		return list, nil
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := ctx.value(item)
			if err != nil {
				return nil, err
			}
			m[k] = resolved
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

func (ctx renderContext) iacValue(v construct.IaCValue) (any, error) {
	if v.IsLiteral() {
		return v.Property, nil
	}
	res := ctx.app.Graph().GetResource(v.ResourceId)
	if res == nil {
		return nil, fmt.Errorf("reference to undeclared resource %s", v.ResourceId)
	}
	env := ctx.stack.Env()
	switch res := res.(type) {
	case *resources.Region:
		if env.Region != "" {
			return env.Region, nil
		}
		return Ref(PseudoRegion), nil

	case *resources.AccountId:
		if env.Account != "" {
			return env.Account, nil
		}
		return Ref(PseudoAccountId), nil

	case *resources.Partition:
		return Ref(PseudoPartition), nil

	case *resources.AvailabilityZones:
		index, err := strconv.Atoi(v.Property)
		if err != nil {
			return nil, fmt.Errorf("invalid availability zone index '%s'", v.Property)
		}
		return Select(index, GetAZs("")), nil

	case *resources.EcrImage:
		if v.Property != resources.IMAGE_URI_PROPERTY {
			return nil, fmt.Errorf("unsupported property %s of image %s", v.Property, v.ResourceId)
		}
		hash, ok := ctx.imageHashes[v.ResourceId]
		if !ok {
			return nil, fmt.Errorf("image %s was not fingerprinted", v.ResourceId)
		}
		return ctx.join(construct.Interpolate(
			res.Account.Ref(), ".dkr.ecr.", res.Region.Ref(), ".amazonaws.com/", res.Repository, ":", hash,
		))
	}

	logicalId, ok := ctx.logicalIds[v.ResourceId]
	if !ok {
		return nil, fmt.Errorf("%s has no logical id", v.ResourceId)
	}
	local := localRef(logicalId, v.Property)
	if v.ResourceId.Namespace == ctx.stack.Name() {
		return local, nil
	}
	return ImportValue(ctx.export(v.ResourceId.Namespace, logicalId, v.Property, local)), nil
}

func localRef(logicalId, property string) map[string]any {
	if property == resources.REF_PROPERTY {
		return Ref(logicalId)
	}
	return GetAtt(logicalId, property)
}

// export publishes a value from its owning stack so other stacks can import it, returning the export name.
func (c *compiler) export(owner, logicalId, property string, value any) string {
	suffix := ""
	if property != resources.REF_PROPERTY {
		suffix = property
	}
	name := aws.ExportNameSanitizer.Apply(fmt.Sprintf("%s:%s%s", owner, logicalId, suffix))
	outputId := aws.LogicalIdSanitizer.Apply("Export" + logicalId + suffix)
	tmpl := c.templates[owner]
	if _, ok := tmpl.Outputs[outputId]; !ok {
		tmpl.Outputs[outputId] = &Output{Value: value, Export: &Export{Name: name}}
		c.log.Debug("exporting value", zap.String("stack", owner), zap.String("export", name))
	}
	return name
}

// join collapses to a plain string when every part is known at synthesis time.
func (ctx renderContext) join(j construct.Join) (any, error) {
	var parts []any
	for _, v := range j.Values {
		resolved, err := ctx.value(v)
		if err != nil {
			return nil, err
		}
		if s, ok := resolved.(string); ok && j.Delimiter == "" && len(parts) > 0 {
			if prev, ok := parts[len(parts)-1].(string); ok {
				parts[len(parts)-1] = prev + s
				continue
			}
		}
		parts = append(parts, resolved)
	}
	strs := make([]string, 0, len(parts))
	for _, p := range parts {
		s, ok := p.(string)
		if !ok {
			return JoinFn(j.Delimiter, parts), nil
		}
		strs = append(strs, s)
	}
	return strings.Join(strs, j.Delimiter), nil
}

// dependsOn lists the logical ids of the resources declared in this stack, sorted. Resources of other stacks are
// already deployed by the time this stack is.
func (ctx renderContext) dependsOn(deps ...construct.Resource) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, dep := range deps {
		id := dep.Id()
		if id.Namespace != ctx.stack.Name() {
			continue
		}
		logicalId, ok := ctx.logicalIds[id]
		if !ok {
			continue
		}
		if _, ok := seen[logicalId]; ok {
			continue
		}
		seen[logicalId] = struct{}{}
		ids = append(ids, logicalId)
	}
	sort.Strings(ids)
	return ids
}
