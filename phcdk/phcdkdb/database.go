// Package phcdkdb provides the RDS Postgres construct for PhaserAI.
//
// The instance lives in the isolated subnet group and only accepts
// connections from the shared Lambda security group. Credentials are
// generated into a Secrets Manager secret that the Lambda functions read at
// runtime via the SECRET_ARN environment variable.
package phcdkdb

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/phaserai/infra/phcdk/phcdknetwork"
	"github.com/phaserai/infra/phcdkutil"
)

const defaultAllocatedStorageGiB = 20

// Database provides access to the Postgres instance and its credentials.
type Database interface {
	// Instance returns the RDS database instance.
	Instance() awsrds.IDatabaseInstance

	// Secret returns the generated credentials secret. The secret JSON
	// carries host, port, dbname, username and password keys.
	Secret() awssecretsmanager.ISecret
}

// Props configures the Database construct.
type Props struct {
	// Network is the VPC the instance is placed in. Required.
	Network phcdknetwork.Network

	// AllocatedStorageGiB overrides the allocated storage. Defaults to 20.
	AllocatedStorageGiB *float64
}

type database struct {
	instance awsrds.DatabaseInstance
	secret   awssecretsmanager.ISecret
}

// New creates the Database construct.
func New(scope constructs.Construct, props Props) Database {
	scope = constructs.NewConstruct(scope, jsii.String("Database"))
	cfg := phcdkutil.ConfigFromScope(scope)
	con := &database{}

	storage := props.AllocatedStorageGiB
	if storage == nil {
		storage = jsii.Number(defaultAllocatedStorageGiB)
	}

	dbSG := awsec2.NewSecurityGroup(scope, jsii.String("DatabaseSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              props.Network.Vpc(),
		Description:      jsii.String("PhaserAI database access"),
		AllowAllOutbound: jsii.Bool(false),
	})
	dbSG.AddIngressRule(
		awsec2.Peer_SecurityGroupId(props.Network.LambdaSecurityGroup().SecurityGroupId(), nil),
		awsec2.Port_Tcp(jsii.Number(5432)),
		jsii.String("Postgres from Lambda functions"),
		jsii.Bool(false),
	)

	con.instance = awsrds.NewDatabaseInstance(scope, jsii.String("Instance"), &awsrds.DatabaseInstanceProps{
		Engine: awsrds.DatabaseInstanceEngine_Postgres(&awsrds.PostgresInstanceEngineProps{
			Version: awsrds.PostgresEngineVersion_VER_16_4(),
		}),
		Vpc: props.Network.Vpc(),
		VpcSubnets: &awsec2.SubnetSelection{
			SubnetType: awsec2.SubnetType_PRIVATE_ISOLATED,
		},
		SecurityGroups: &[]awsec2.ISecurityGroup{dbSG},
		InstanceType: awsec2.InstanceType_Of(
			awsec2.InstanceClass_BURSTABLE4_GRAVITON, awsec2.InstanceSize_MICRO),
		Credentials:          awsrds.Credentials_FromGeneratedSecret(jsii.String("phaserai"), nil),
		DatabaseName:         jsii.String(cfg.DatabaseName),
		AllocatedStorage:     storage,
		MultiAz:              jsii.Bool(false),
		StorageEncrypted:     jsii.Bool(true),
		DeletionProtection:   jsii.Bool(false),
		RemovalPolicy:        awscdk.RemovalPolicy_SNAPSHOT,
		BackupRetention:      awscdk.Duration_Days(jsii.Number(7)),
		AutoMinorVersionUpgrade: jsii.Bool(true),
	})

	con.secret = con.instance.Secret()
	if con.secret == nil {
		panic("database instance did not generate a credentials secret")
	}

	awscdk.NewCfnOutput(awscdk.Stack_Of(scope), jsii.String("DatabaseSecretArn"), &awscdk.CfnOutputProps{
		Value:       con.secret.SecretArn(),
		Description: jsii.String("ARN of the database credentials secret"),
	})

	return con
}

func (d *database) Instance() awsrds.IDatabaseInstance {
	return d.instance
}

func (d *database) Secret() awssecretsmanager.ISecret {
	return d.secret
}
