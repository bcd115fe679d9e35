// Package phcdknetwork provides the VPC construct the PhaserAI backend runs in.
//
// The network is deliberately small: two AZs, a single NAT gateway for Lambda
// egress, an isolated subnet group for the database, and an interface endpoint
// for Secrets Manager so credential fetches stay inside the VPC.
package phcdknetwork

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// Network provides access to the application VPC.
type Network interface {
	// Vpc returns the application VPC.
	Vpc() awsec2.IVpc

	// LambdaSecurityGroup returns the security group shared by all Lambda
	// functions that need database access.
	LambdaSecurityGroup() awsec2.ISecurityGroup
}

// Props configures the Network construct.
type Props struct {
	// MaxAzs overrides the number of availability zones. Defaults to 2.
	MaxAzs *float64
}

type network struct {
	vpc      awsec2.IVpc
	lambdaSG awsec2.ISecurityGroup
}

// New creates the Network construct.
func New(scope constructs.Construct, props Props) Network {
	scope = constructs.NewConstruct(scope, jsii.String("Network"))
	con := &network{}

	maxAzs := props.MaxAzs
	if maxAzs == nil {
		maxAzs = jsii.Number(2)
	}

	con.vpc = awsec2.NewVpc(scope, jsii.String("Vpc"), &awsec2.VpcProps{
		MaxAzs:      maxAzs,
		NatGateways: jsii.Number(1),
		SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
			{
				Name:       jsii.String("public"),
				SubnetType: awsec2.SubnetType_PUBLIC,
				CidrMask:   jsii.Number(24),
			},
			{
				Name:       jsii.String("lambda"),
				SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS,
				CidrMask:   jsii.Number(24),
			},
			{
				Name:       jsii.String("database"),
				SubnetType: awsec2.SubnetType_PRIVATE_ISOLATED,
				CidrMask:   jsii.Number(24),
			},
		},
	})

	con.lambdaSG = awsec2.NewSecurityGroup(scope, jsii.String("LambdaSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              con.vpc,
		Description:      jsii.String("Shared security group for PhaserAI Lambda functions"),
		AllowAllOutbound: jsii.Bool(true),
	})

	con.vpc.AddInterfaceEndpoint(jsii.String("SecretsManagerEndpoint"), &awsec2.InterfaceVpcEndpointOptions{
		Service: awsec2.InterfaceVpcEndpointAwsService_SECRETS_MANAGER(),
		Subnets: &awsec2.SubnetSelection{
			SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS,
		},
	})

	return con
}

func (n *network) Vpc() awsec2.IVpc {
	return n.vpc
}

func (n *network) LambdaSecurityGroup() awsec2.ISecurityGroup {
	return n.lambdaSG
}
