package construct

type (
	// Resource is a single declared cloud resource. Implementations are plain structs whose exported
	// fields may point at other resources or hold [IaCValue] references; those become graph dependencies.
	Resource interface {
		Id() ResourceId
	}

	// Scope is where resources get declared. A stack is the only scope in practice.
	Scope interface {
		Name() string
		Add(res Resource) error
	}

	// IaCValue references a property of another resource which is only known once deployed (an ARN, an id).
	// A zero ResourceId makes the value a literal: Property holds the literal string.
	IaCValue struct {
		ResourceId ResourceId
		Property   string
	}

	// Join concatenates strings and IaCValues (or nested Joins) with Delimiter between each value.
	Join struct {
		Delimiter string
		Values    []any
	}
)

func Literal(value string) IaCValue {
	return IaCValue{Property: value}
}

func (v IaCValue) IsLiteral() bool {
	return v.ResourceId.IsZero()
}

func (v IaCValue) String() string {
	if v.IsLiteral() {
		return v.Property
	}
	return v.ResourceId.String() + "#" + v.Property
}

// Interpolate joins the parts with no delimiter, eg. `Interpolate("arn:", partition, ":ecs:*")`.
func Interpolate(parts ...any) Join {
	return Join{Values: parts}
}

func JoinValues(delimiter string, values ...any) Join {
	return Join{Delimiter: delimiter, Values: values}
}
