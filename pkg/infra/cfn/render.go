package cfn

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/pkg/errors"
)

// props is built by the renderers with unresolved values; render resolves it in one pass.
type props map[string]any

// isTemplateResource reports whether the resource is declared in a template. Pseudo parameters and image
// assets only exist as references.
func isTemplateResource(res construct.Resource) bool {
	if resources.IsPseudo(res.Id()) {
		return false
	}
	_, isImage := res.(*resources.EcrImage)
	return !isImage
}

func (ctx renderContext) render(res construct.Resource) (*Resource, error) {
	out, p, err := ctx.describe(res)
	if err != nil {
		return nil, err
	}
	resolved, err := ctx.value(map[string]any(p))
	if err != nil {
		return nil, errors.Wrapf(err, "could not render %s", res.Id())
	}
	out.Properties = resolved.(map[string]any)
	return out, nil
}

func (ctx renderContext) nameTags(res construct.Resource) []any {
	return []any{
		map[string]any{"Key": "Name", "Value": ctx.stack.Name() + "/" + res.Id().Name},
	}
}

func (ctx renderContext) describe(res construct.Resource) (*Resource, props, error) {
	switch r := res.(type) {
	case *resources.Vpc:
		return &Resource{Type: "AWS::EC2::VPC"}, props{
			"CidrBlock":          r.CidrBlock,
			"EnableDnsHostnames": r.EnableDnsHostnames,
			"EnableDnsSupport":   r.EnableDnsSupport,
			"InstanceTenancy":    "default",
			"Tags":               ctx.nameTags(r),
		}, nil

	case *resources.Subnet:
		subnetType := "Private"
		if r.Type == resources.PublicSubnet {
			subnetType = "Public"
		}
		return &Resource{Type: "AWS::EC2::Subnet"}, props{
			"VpcId":               r.Vpc.VpcId(),
			"CidrBlock":           r.CidrBlock,
			"AvailabilityZone":    r.AvailabilityZone,
			"MapPublicIpOnLaunch": r.MapPublicIpOnLaunch,
			"Tags": append(ctx.nameTags(r),
				map[string]any{"Key": "subnet-type", "Value": subnetType},
			),
		}, nil

	case *resources.InternetGateway:
		return &Resource{Type: "AWS::EC2::InternetGateway"}, props{"Tags": ctx.nameTags(r)}, nil

	case *resources.VpcGatewayAttachment:
		return &Resource{Type: "AWS::EC2::VPCGatewayAttachment"}, props{
			"VpcId":             r.Vpc.VpcId(),
			"InternetGatewayId": construct.IaCValue{ResourceId: r.InternetGateway.Id(), Property: resources.REF_PROPERTY},
		}, nil

	case *resources.ElasticIp:
		return &Resource{Type: "AWS::EC2::EIP"}, props{"Domain": "vpc", "Tags": ctx.nameTags(r)}, nil

	case *resources.NatGateway:
		return &Resource{Type: "AWS::EC2::NatGateway"}, props{
			"AllocationId": r.ElasticIp.AllocationId(),
			"SubnetId":     r.Subnet.SubnetId(),
			"Tags":         ctx.nameTags(r),
		}, nil

	case *resources.RouteTable:
		return &Resource{Type: "AWS::EC2::RouteTable"}, props{
			"VpcId": r.Vpc.VpcId(),
			"Tags":  ctx.nameTags(r),
		}, nil

	case *resources.Route:
		out := &Resource{Type: "AWS::EC2::Route"}
		p := props{
			"RouteTableId":         construct.IaCValue{ResourceId: r.RouteTable.Id(), Property: resources.REF_PROPERTY},
			"DestinationCidrBlock": r.DestinationCidrBlock,
		}
		switch {
		case r.InternetGateway != nil:
			p["GatewayId"] = construct.IaCValue{ResourceId: r.InternetGateway.Id(), Property: resources.REF_PROPERTY}
		case r.NatGateway != nil:
			p["NatGatewayId"] = construct.IaCValue{ResourceId: r.NatGateway.Id(), Property: resources.REF_PROPERTY}
		default:
			return nil, nil, fmt.Errorf("route %s has no target", r.Id())
		}
		if r.GatewayAttachment != nil {
			out.DependsOn = ctx.dependsOn(r.GatewayAttachment)
		}
		return out, p, nil

	case *resources.SubnetRouteTableAssociation:
		return &Resource{Type: "AWS::EC2::SubnetRouteTableAssociation"}, props{
			"RouteTableId": construct.IaCValue{ResourceId: r.RouteTable.Id(), Property: resources.REF_PROPERTY},
			"SubnetId":     r.Subnet.SubnetId(),
		}, nil

	case *resources.SecurityGroup:
		p := props{
			"GroupDescription": r.Description,
			"VpcId":            r.Vpc.VpcId(),
		}
		if len(r.IngressRules) > 0 {
			var ingress []any
			for _, rule := range r.IngressRules {
				ingress = append(ingress, map[string]any{
					"CidrIp":      rule.CidrBlock,
					"Description": rule.Description,
					"FromPort":    rule.FromPort,
					"IpProtocol":  rule.Protocol,
					"ToPort":      rule.ToPort,
				})
			}
			p["SecurityGroupIngress"] = ingress
		}
		if r.AllowAllOutbound {
			p["SecurityGroupEgress"] = []any{map[string]any{
				"CidrIp":      "0.0.0.0/0",
				"Description": "Allow all outbound traffic by default",
				"IpProtocol":  resources.PROTOCOL_ALL,
			}}
		}
		return &Resource{Type: "AWS::EC2::SecurityGroup"}, p, nil

	case *resources.SecurityGroupIngress:
		return &Resource{Type: "AWS::EC2::SecurityGroupIngress"}, props{
			"GroupId":               r.SecurityGroup.GroupId(),
			"SourceSecurityGroupId": r.Source.GroupId(),
			"IpProtocol":            r.Protocol,
			"FromPort":              r.FromPort,
			"ToPort":                r.ToPort,
			"Description":           r.Description,
		}, nil

	case *resources.EcsCluster:
		return &Resource{Type: "AWS::ECS::Cluster"}, props{}, nil

	case *resources.PrivateDnsNamespace:
		return &Resource{Type: "AWS::ServiceDiscovery::PrivateDnsNamespace"}, props{
			"Name": r.DnsName,
			"Vpc":  r.Vpc.VpcId(),
		}, nil

	case *resources.ServiceDiscoveryService:
		return &Resource{Type: "AWS::ServiceDiscovery::Service"}, props{
			"Name":        r.DnsName,
			"NamespaceId": r.DnsNamespace.NamespaceId(),
			"DnsConfig": map[string]any{
				"DnsRecords":    []any{map[string]any{"TTL": r.DnsTtl, "Type": r.DnsRecordType}},
				"NamespaceId":   r.DnsNamespace.NamespaceId(),
				"RoutingPolicy": "MULTIVALUE",
			},
			"HealthCheckCustomConfig": map[string]any{"FailureThreshold": 1},
		}, nil

	case *resources.IamRole:
		p := props{"AssumeRolePolicyDocument": policyDocument(r.AssumeRolePolicyDoc)}
		if len(r.ManagedPolicies) > 0 {
			p["ManagedPolicyArns"] = r.ManagedPolicies
		}
		return &Resource{Type: "AWS::IAM::Role"}, p, nil

	case *resources.IamPolicy:
		var roles []any
		for _, role := range r.Roles {
			roles = append(roles, construct.IaCValue{ResourceId: role.Id(), Property: resources.REF_PROPERTY})
		}
		return &Resource{Type: "AWS::IAM::Policy"}, props{
			"PolicyName":     r.PolicyName,
			"PolicyDocument": policyDocument(r.Policy),
			"Roles":          roles,
		}, nil

	case *resources.LogGroup:
		p := props{}
		if r.LogGroupName != "" {
			p["LogGroupName"] = r.LogGroupName
		}
		if r.RetentionInDays > 0 {
			p["RetentionInDays"] = r.RetentionInDays
		}
		return &Resource{
			Type:                "AWS::Logs::LogGroup",
			DeletionPolicy:      DeletionPolicyRetain,
			UpdateReplacePolicy: DeletionPolicyRetain,
		}, p, nil

	case *resources.LogStream:
		p := props{"LogGroupName": r.LogGroup.Ref()}
		if r.LogStreamName != "" {
			p["LogStreamName"] = r.LogStreamName
		}
		return &Resource{
			Type:                "AWS::Logs::LogStream",
			DeletionPolicy:      DeletionPolicyRetain,
			UpdateReplacePolicy: DeletionPolicyRetain,
		}, p, nil

	case *resources.EcsTaskDefinition:
		var containers []any
		for _, c := range r.Containers {
			containers = append(containers, containerDefinition(c))
		}
		p := props{
			"Family":                  r.Family,
			"Cpu":                     strconv.Itoa(r.Cpu),
			"Memory":                  strconv.Itoa(r.Memory),
			"NetworkMode":             r.NetworkMode,
			"RequiresCompatibilities": r.RequiresCompatibilities,
			"ContainerDefinitions":    containers,
		}
		if r.ExecutionRole != nil {
			p["ExecutionRoleArn"] = r.ExecutionRole.Arn()
		}
		if r.TaskRole != nil {
			p["TaskRoleArn"] = r.TaskRole.Arn()
		}
		return &Resource{Type: "AWS::ECS::TaskDefinition"}, p, nil

	case *resources.EcsService:
		assignPublicIp := "DISABLED"
		if r.AssignPublicIp {
			assignPublicIp = "ENABLED"
		}
		var lbs []any
		for _, lb := range r.LoadBalancers {
			lbs = append(lbs, map[string]any{
				"ContainerName":  lb.ContainerName,
				"ContainerPort":  lb.ContainerPort,
				"TargetGroupArn": lb.TargetGroup.Ref(),
			})
		}
		var registries []any
		for _, sd := range r.ServiceRegistries {
			registries = append(registries, map[string]any{"RegistryArn": sd.Arn()})
		}
		p := props{
			"Cluster":              r.Cluster.Ref(),
			"TaskDefinition":       r.TaskDefinition.Ref(),
			"DesiredCount":         r.DesiredCount,
			"LaunchType":           r.LaunchType,
			"EnableECSManagedTags": r.EnableEcsManagedTags,
			"DeploymentConfiguration": map[string]any{
				"MaximumPercent":        200,
				"MinimumHealthyPercent": 50,
			},
			"NetworkConfiguration": map[string]any{
				"AwsvpcConfiguration": map[string]any{
					"AssignPublicIp": assignPublicIp,
					"SecurityGroups": resources.GroupIds(r.SecurityGroups),
					"Subnets":        resources.SubnetIds(r.Subnets),
				},
			},
		}
		if len(lbs) > 0 {
			p["LoadBalancers"] = lbs
			p["HealthCheckGracePeriodSeconds"] = r.HealthCheckGracePeriodSeconds
		}
		if len(registries) > 0 {
			p["ServiceRegistries"] = registries
		}
		deps := append([]construct.Resource(nil), r.DependsOn...)
		// the task must be able to use its roles' policies as soon as it starts
		if policy := r.TaskDefinition.TaskRolePolicy(); policy != nil {
			deps = append(deps, policy)
		}
		if policy := r.TaskDefinition.ExecutionRolePolicy(); policy != nil {
			deps = append(deps, policy)
		}
		return &Resource{Type: "AWS::ECS::Service", DependsOn: ctx.dependsOn(deps...)}, p, nil

	case *resources.LoadBalancer:
		return &Resource{Type: "AWS::ElasticLoadBalancingV2::LoadBalancer"}, props{
			"Scheme":         r.Scheme,
			"Type":           r.Type,
			"Subnets":        resources.SubnetIds(r.Subnets),
			"SecurityGroups": resources.GroupIds(r.SecurityGroups),
			"LoadBalancerAttributes": []any{
				map[string]any{"Key": "deletion_protection.enabled", "Value": "false"},
			},
		}, nil

	case *resources.TargetGroup:
		return &Resource{Type: "AWS::ElasticLoadBalancingV2::TargetGroup"}, props{
			"Port":       r.Port,
			"Protocol":   r.Protocol,
			"TargetType": r.TargetType,
			"VpcId":      r.Vpc.VpcId(),
			"TargetGroupAttributes": []any{
				map[string]any{"Key": "stickiness.enabled", "Value": "false"},
			},
		}, nil

	case *resources.Listener:
		return &Resource{Type: "AWS::ElasticLoadBalancingV2::Listener"}, props{
			"LoadBalancerArn": r.LoadBalancer.Ref(),
			"Port":            r.Port,
			"Protocol":        r.Protocol,
			"DefaultActions": []any{map[string]any{
				"Type":           "forward",
				"TargetGroupArn": r.DefaultTargetGroup.Ref(),
			}},
		}, nil
	}
	return nil, nil, fmt.Errorf("no template mapping for %s (%T)", res.Id(), res)
}

func containerDefinition(c *resources.ContainerDefinition) map[string]any {
	def := map[string]any{
		"Name":      c.Name,
		"Image":     c.Image,
		"Essential": c.Essential,
	}
	if len(c.Environment) > 0 {
		names := make([]string, 0, len(c.Environment))
		for name := range c.Environment {
			names = append(names, name)
		}
		sort.Strings(names)
		env := make([]any, len(names))
		for i, name := range names {
			env[i] = map[string]any{"Name": name, "Value": c.Environment[name]}
		}
		def["Environment"] = env
	}
	if len(c.PortMappings) > 0 {
		var mappings []any
		for _, pm := range c.PortMappings {
			mappings = append(mappings, map[string]any{
				"ContainerPort": pm.ContainerPort,
				"HostPort":      pm.HostPort,
				"Protocol":      pm.Protocol,
			})
		}
		def["PortMappings"] = mappings
	}
	if lc := c.LogConfiguration; lc != nil {
		def["LogConfiguration"] = map[string]any{
			"LogDriver": lc.LogDriver,
			"Options": map[string]any{
				"awslogs-group":         lc.LogGroup.Ref(),
				"awslogs-stream-prefix": lc.StreamPrefix,
				"awslogs-region":        lc.Region.Ref(),
			},
		}
	}
	return def
}

func policyDocument(doc *resources.PolicyDocument) map[string]any {
	if doc == nil {
		return nil
	}
	var statements []any
	for _, stmt := range doc.Statement {
		s := map[string]any{
			"Effect": stmt.Effect,
			"Action": actionValue(stmt.Action),
		}
		if len(stmt.Resource) == 1 {
			s["Resource"] = stmt.Resource[0]
		} else if len(stmt.Resource) > 1 {
			s["Resource"] = stmt.Resource
		}
		if stmt.Principal != nil {
			s["Principal"] = map[string]any{"Service": stmt.Principal.Service}
		}
		if len(stmt.Condition) > 0 {
			cond := make(map[string]any, len(stmt.Condition))
			for op, kv := range stmt.Condition {
				inner := make(map[string]any, len(kv))
				for k, v := range kv {
					inner[k] = v
				}
				cond[op] = inner
			}
			s["Condition"] = cond
		}
		statements = append(statements, s)
	}
	return map[string]any{
		"Version":   doc.Version,
		"Statement": statements,
	}
}

// actionValue renders a single action as a plain string, like the console does.
func actionValue(actions []string) any {
	if len(actions) == 1 {
		return actions[0]
	}
	return actions
}
