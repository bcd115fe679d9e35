// Package phcdkapi provides the REST API construct: an API Gateway fronting
// the Go Lambda handlers for users, languages, words and health, plus the
// Python phonology function that consumes the binary dependency layer.
package phcdkapi

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscognito"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	awslambdago "github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/phaserai/infra/phcdk/phcdkauth"
	"github.com/phaserai/infra/phcdk/phcdkdb"
	"github.com/phaserai/infra/phcdk/phcdklayer"
	"github.com/phaserai/infra/phcdk/phcdknetwork"
	"github.com/phaserai/infra/phcdkutil"
)

// Api provides access to the REST API.
type Api interface {
	// RestApi returns the API Gateway REST API.
	RestApi() awsapigateway.RestApi
}

// Props configures the Api construct.
type Props struct {
	// Network is the VPC the handlers run in. Required.
	Network phcdknetwork.Network

	// Database provides the credentials secret. Required.
	Database phcdkdb.Database

	// Auth provides the Cognito user pool for the API authorizer. Required.
	Auth phcdkauth.Auth

	// Layer is the binary dependency layer for Python functions. Required.
	Layer phcdklayer.Layer
}

type api struct {
	restAPI awsapigateway.RestApi
}

// New creates the Api construct with all routes of the PhaserAI backend.
func New(scope constructs.Construct, props Props) Api {
	scope = constructs.NewConstruct(scope, jsii.String("Api"))
	cfg := phcdkutil.ConfigFromScope(scope)
	con := &api{}

	con.restAPI = awsapigateway.NewRestApi(scope, jsii.String("RestApi"), &awsapigateway.RestApiProps{
		RestApiName: jsii.String(cfg.Qualifier + "-api"),
		DeployOptions: &awsapigateway.StageOptions{
			StageName: jsii.String(cfg.ApiStageName),
		},
		DefaultCorsPreflightOptions: &awsapigateway.CorsOptions{
			AllowOrigins: awsapigateway.Cors_ALL_ORIGINS(),
			AllowMethods: awsapigateway.Cors_ALL_METHODS(),
			AllowHeaders: jsii.Strings("Content-Type", "Authorization"),
		},
	})

	authorizer := awsapigateway.NewCognitoUserPoolsAuthorizer(scope, jsii.String("Authorizer"),
		&awsapigateway.CognitoUserPoolsAuthorizerProps{
			CognitoUserPools: &[]awscognito.IUserPool{props.Auth.UserPool()},
		})

	authorized := &awsapigateway.MethodOptions{
		Authorizer:        authorizer,
		AuthorizationType: awsapigateway.AuthorizationType_COGNITO,
	}

	users := newHandler(scope, props, "Users", "cmd/lambda/users")
	languages := newHandler(scope, props, "Languages", "cmd/lambda/languages")
	words := newHandler(scope, props, "Words", "cmd/lambda/words")
	health := newHandler(scope, props, "Health", "cmd/lambda/health")

	root := con.restAPI.Root()

	// Health stays unauthenticated so uptime checks work without a token.
	root.AddResource(jsii.String("health"), nil).
		AddMethod(jsii.String("GET"), awsapigateway.NewLambdaIntegration(health, nil), nil)

	usersRes := root.AddResource(jsii.String("users"), nil)
	usersRes.AddMethod(jsii.String("POST"), awsapigateway.NewLambdaIntegration(users, nil), authorized)
	userRes := usersRes.AddResource(jsii.String("{userId}"), nil)
	userRes.AddMethod(jsii.String("GET"), awsapigateway.NewLambdaIntegration(users, nil), authorized)
	userRes.AddMethod(jsii.String("PUT"), awsapigateway.NewLambdaIntegration(users, nil), authorized)
	userRes.AddResource(jsii.String("languages"), nil).
		AddMethod(jsii.String("GET"), awsapigateway.NewLambdaIntegration(languages, nil), authorized)

	languagesRes := root.AddResource(jsii.String("languages"), nil)
	languagesRes.AddMethod(jsii.String("GET"), awsapigateway.NewLambdaIntegration(languages, nil), authorized)
	languagesRes.AddMethod(jsii.String("POST"), awsapigateway.NewLambdaIntegration(languages, nil), authorized)
	languageRes := languagesRes.AddResource(jsii.String("{languageId}"), nil)
	languageRes.AddMethod(jsii.String("GET"), awsapigateway.NewLambdaIntegration(languages, nil), authorized)
	languageRes.AddMethod(jsii.String("PUT"), awsapigateway.NewLambdaIntegration(languages, nil), authorized)
	languageRes.AddMethod(jsii.String("DELETE"), awsapigateway.NewLambdaIntegration(languages, nil), authorized)
	languageRes.AddResource(jsii.String("words"), nil).
		AddMethod(jsii.String("GET"), awsapigateway.NewLambdaIntegration(words, nil), authorized)

	wordsRes := root.AddResource(jsii.String("words"), nil)
	wordsRes.AddMethod(jsii.String("GET"), awsapigateway.NewLambdaIntegration(words, nil), authorized)
	wordsRes.AddMethod(jsii.String("POST"), awsapigateway.NewLambdaIntegration(words, nil), authorized)
	wordRes := wordsRes.AddResource(jsii.String("{wordId}"), nil)
	wordRes.AddMethod(jsii.String("GET"), awsapigateway.NewLambdaIntegration(words, nil), authorized)
	wordRes.AddMethod(jsii.String("PUT"), awsapigateway.NewLambdaIntegration(words, nil), authorized)
	wordRes.AddMethod(jsii.String("DELETE"), awsapigateway.NewLambdaIntegration(words, nil), authorized)

	phonology := newPhonologyFunction(scope, props)
	root.AddResource(jsii.String("phonology"), nil).
		AddResource(jsii.String("validate"), nil).
		AddMethod(jsii.String("POST"), awsapigateway.NewLambdaIntegration(phonology, nil), authorized)

	awscdk.NewCfnOutput(awscdk.Stack_Of(scope), jsii.String("ApiUrl"), &awscdk.CfnOutputProps{
		Value: con.restAPI.Url(),
	})

	return con
}

func newHandler(scope constructs.Construct, props Props, ident, entry string) awslambda.IFunction {
	fn := awslambdago.NewGoFunction(scope, jsii.String(ident), &awslambdago.GoFunctionProps{
		Entry:        jsii.String(entry),
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		MemorySize:   jsii.Number(256),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(30)),
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
	return fn
}

// newPhonologyFunction creates the one remaining Python function. It depends
// on binary wheels (psycopg2, regex) that come from the dependency layer
// built by "phai layer build".
func newPhonologyFunction(scope constructs.Construct, props Props) awslambda.IFunction {
	fn := awslambda.NewFunction(scope, jsii.String("Phonology"), &awslambda.FunctionProps{
		Runtime:    awslambda.Runtime_PYTHON_3_12(),
		Handler:    jsii.String("index.handler"),
		Code:       awslambda.Code_FromInline(jsii.String(phonologyHandlerSource)),
		MemorySize: jsii.Number(512),
		Timeout:    awscdk.Duration_Seconds(jsii.Number(30)),
		Layers:     &[]awslambda.ILayerVersion{props.Layer.LayerVersion()},
		Vpc:        props.Network.Vpc(),
		VpcSubnets: &awsec2.SubnetSelection{
			SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS,
		},
		SecurityGroups: &[]awsec2.ISecurityGroup{props.Network.LambdaSecurityGroup()},
		Environment: &map[string]*string{
			"SECRET_ARN": props.Database.Secret().SecretArn(),
		},
	})
	props.Database.Secret().GrantRead(fn, nil)
	return fn
}

func (a *api) RestApi() awsapigateway.RestApi {
	return a.restAPI
}
