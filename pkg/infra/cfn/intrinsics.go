package cfn

// Intrinsic functions, rendered as the single-key objects the template format expects.

func Ref(logicalId string) map[string]any {
	return map[string]any{"Ref": logicalId}
}

func GetAtt(logicalId, attribute string) map[string]any {
	return map[string]any{"Fn::GetAtt": []any{logicalId, attribute}}
}

func ImportValue(exportName string) map[string]any {
	return map[string]any{"Fn::ImportValue": exportName}
}

func JoinFn(delimiter string, values []any) map[string]any {
	return map[string]any{"Fn::Join": []any{delimiter, values}}
}

func Select(index int, list any) map[string]any {
	return map[string]any{"Fn::Select": []any{index, list}}
}

func GetAZs(region string) map[string]any {
	return map[string]any{"Fn::GetAZs": region}
}

const (
	PseudoRegion    = "AWS::Region"
	PseudoAccountId = "AWS::AccountId"
	PseudoPartition = "AWS::Partition"
	PseudoUrlSuffix = "AWS::URLSuffix"
)
