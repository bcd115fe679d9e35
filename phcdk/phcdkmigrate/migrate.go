// Package phcdkmigrate wires the schema migration Lambda into CloudFormation
// as a custom resource, so pending migrations run on every stack deploy.
//
// The custom resource properties include a hash over the embedded migration
// set: a new migration changes the hash, which triggers an Update event and
// re-runs the migration Lambda. Delete events are a no-op in the handler so
// stack deletion never touches data.
package phcdkmigrate

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	awslambdago "github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/phaserai/infra/phcdk/phcdkdb"
	"github.com/phaserai/infra/phcdk/phcdknetwork"
	"github.com/phaserai/infra/phmigrate"
)

// Migrations provides access to the migration runner wiring.
type Migrations interface {
	// Function returns the migration Lambda, also invocable directly with
	// {"action": "up"} or {"action": "status"}.
	Function() awslambda.IFunction
}

// Props configures the Migrations construct.
type Props struct {
	// Network is the VPC the function runs in. Required.
	Network phcdknetwork.Network

	// Database provides the credentials secret. Required.
	Database phcdkdb.Database
}

type migrations struct {
	fn awslambda.IFunction
}

// New creates the Migrations construct.
func New(scope constructs.Construct, props Props) Migrations {
	scope = constructs.NewConstruct(scope, jsii.String("Migrations"))
	con := &migrations{}

	fn := awslambdago.NewGoFunction(scope, jsii.String("Runner"), &awslambdago.GoFunctionProps{
		Entry:        jsii.String("cmd/lambda/migrate"),
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		MemorySize:   jsii.Number(256),
		Timeout:      awscdk.Duration_Minutes(jsii.Number(5)),
		Vpc:          props.Network.Vpc(),
		VpcSubnets: &awsec2.SubnetSelection{
			SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS,
		},
		SecurityGroups: &[]awsec2.ISecurityGroup{props.Network.LambdaSecurityGroup()},
		Environment: &map[string]*string{
			"SECRET_ARN": props.Database.Secret().SecretArn(),
		},
	})
	props.Database.Secret().GrantRead(fn, nil)
	con.fn = fn

	provider := customresources.NewProvider(scope, jsii.String("Provider"), &customresources.ProviderProps{
		OnEventHandler: fn,
	})

	resource := awscdk.NewCustomResource(scope, jsii.String("SchemaMigrations"), &awscdk.CustomResourceProps{
		ServiceToken: provider.ServiceToken(),
		Properties: &map[string]any{
			// Changes whenever the embedded migration set changes.
			"MigrationsHash": phmigrate.SetHash(),
		},
	})
	resource.Node().AddDependency(props.Database.Instance())

	return con
}

func (m *migrations) Function() awslambda.IFunction {
	return m.fn
}
