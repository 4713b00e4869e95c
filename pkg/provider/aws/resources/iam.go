package resources

import (
	"reflect"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization/aws"
)

const (
	IAM_ROLE_TYPE   = "iam_role"
	IAM_POLICY_TYPE = "iam_policy"
	VERSION         = "2012-10-17"

	ECS_TASK_EXECUTION_ROLE_POLICY = "service-role/AmazonECSTaskExecutionRolePolicy"
)

var policySanitizer = aws.IamPolicySanitizer

var ECS_ASSUMER_ROLE_POLICY = &PolicyDocument{
	Version: VERSION,
	Statement: []StatementEntry{
		{
			Action: []string{"sts:AssumeRole"},
			Principal: &Principal{
				Service: ECS_TASKS_SERVICE_PRINCIPAL,
			},
			Effect: "Allow",
		},
	},
}

type (
	IamRole struct {
		Name                string
		Stack               string
		AssumeRolePolicyDoc *PolicyDocument
		// ManagedPolicies holds policy arns, either literal strings or joins built by [IamRole.AddAwsManagedPolicy].
		ManagedPolicies []any
	}

	// IamPolicy is an inline policy attached to each of its roles.
	IamPolicy struct {
		Name       string
		Stack      string
		PolicyName string
		Roles      []*IamRole
		Policy     *PolicyDocument
	}

	PolicyDocument struct {
		Version   string
		Statement []StatementEntry
	}

	StatementEntry struct {
		Effect string
		Action []string
		// Resource entries are strings, [construct.IaCValue]s or [construct.Join]s.
		Resource  []any
		Principal *Principal
		// Condition maps an operator (eg. `ForAnyValue:ArnEquals`) to its key/value pairs.
		Condition map[string]map[string]any
	}

	Principal struct {
		Service string
	}
)

func NewIamRole(stack, name string, assumeRolePolicy *PolicyDocument) *IamRole {
	return &IamRole{
		Name:                name,
		Stack:               stack,
		AssumeRolePolicyDoc: assumeRolePolicy,
	}
}

// AddAwsManagedPolicy attaches the AWS managed policy `policy` (eg. `service-role/AmazonECSTaskExecutionRolePolicy`).
// Adding the same policy twice has no effect.
func (role *IamRole) AddAwsManagedPolicy(partition *Partition, policy string) {
	arn := construct.Interpolate("arn:", partition.Ref(), ":iam::aws:policy/", policy)
	for _, existing := range role.ManagedPolicies {
		if reflect.DeepEqual(existing, arn) {
			return
		}
	}
	role.ManagedPolicies = append(role.ManagedPolicies, arn)
}

// ID returns the id of the cloud resource
func (role *IamRole) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: IAM_ROLE_TYPE, Namespace: role.Stack, Name: role.Name}
}

func (role *IamRole) Arn() construct.IaCValue {
	return construct.IaCValue{ResourceId: role.Id(), Property: ARN_PROPERTY}
}

func NewIamPolicy(stack, name string, roles ...*IamRole) *IamPolicy {
	return &IamPolicy{
		Name:       name,
		Stack:      stack,
		PolicyName: policySanitizer.Apply(name),
		Roles:      roles,
		Policy:     &PolicyDocument{Version: VERSION},
	}
}

// AddStatement appends stmt to the policy unless an identical statement is already present.
func (policy *IamPolicy) AddStatement(stmt StatementEntry) {
	if policy.Policy == nil {
		policy.Policy = &PolicyDocument{Version: VERSION}
	}
	policy.Policy.Statement = append(policy.Policy.Statement, stmt)
	policy.Policy.Deduplicate()
}

// ID returns the id of the cloud resource
func (policy *IamPolicy) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: IAM_POLICY_TYPE, Namespace: policy.Stack, Name: policy.Name}
}

// Deduplicate removes repeated statements, keeping the first occurrence.
func (doc *PolicyDocument) Deduplicate() {
	var unique []StatementEntry
outer:
	for _, stmt := range doc.Statement {
		for _, u := range unique {
			if reflect.DeepEqual(u, stmt) {
				continue outer
			}
		}
		unique = append(unique, stmt)
	}
	doc.Statement = unique
}

func AllowStatement(actions []string, resources ...any) StatementEntry {
	return StatementEntry{
		Effect:   "Allow",
		Action:   actions,
		Resource: resources,
	}
}
