package resources

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
)

const (
	LOG_GROUP_TYPE  = "log_group"
	LOG_STREAM_TYPE = "log_stream"
)

type (
	LogGroup struct {
		Name            string
		Stack           string
		LogGroupName    string
		RetentionInDays int
	}

	LogStream struct {
		Name          string
		Stack         string
		LogGroup      *LogGroup
		LogStreamName string
	}
)

// ID returns the id of the cloud resource
func (lg *LogGroup) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: LOG_GROUP_TYPE, Namespace: lg.Stack, Name: lg.Name}
}

// Ref references the log group's name.
func (lg *LogGroup) Ref() construct.IaCValue {
	return construct.IaCValue{ResourceId: lg.Id(), Property: REF_PROPERTY}
}

func (lg *LogGroup) Arn() construct.IaCValue {
	return construct.IaCValue{ResourceId: lg.Id(), Property: ARN_PROPERTY}
}

// ID returns the id of the cloud resource
func (ls *LogStream) Id() construct.ResourceId {
	return construct.ResourceId{Provider: AWS_PROVIDER, Type: LOG_STREAM_TYPE, Namespace: ls.Stack, Name: ls.Name}
}

// Ref references the log stream's name.
func (ls *LogStream) Ref() construct.IaCValue {
	return construct.IaCValue{ResourceId: ls.Id(), Property: REF_PROPERTY}
}
