package resources

const (
	AWS_PROVIDER = "aws"

	// REF_PROPERTY resolves to the resource's default identifier (a template `Ref`). Any other property is
	// resolved as an attribute of the resource (a `Fn::GetAtt`).
	REF_PROPERTY = "Ref"

	ARN_PROPERTY = "Arn"

	ECS_TASKS_SERVICE_PRINCIPAL = "ecs-tasks.amazonaws.com"
)
