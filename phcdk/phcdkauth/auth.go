// Package phcdkauth provides the Cognito user pool construct for PhaserAI.
package phcdkauth

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscognito"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/phaserai/infra/phcdkutil"
)

// Auth provides access to the user pool and its app client.
type Auth interface {
	// UserPool returns the Cognito user pool.
	UserPool() awscognito.IUserPool

	// Client returns the web app client.
	Client() awscognito.IUserPoolClient
}

// Props configures the Auth construct.
type Props struct{}

type auth struct {
	pool   awscognito.IUserPool
	client awscognito.IUserPoolClient
}

// New creates the Auth construct.
func New(scope constructs.Construct, _ Props) Auth {
	scope = constructs.NewConstruct(scope, jsii.String("Auth"))
	cfg := phcdkutil.ConfigFromScope(scope)
	con := &auth{}

	con.pool = awscognito.NewUserPool(scope, jsii.String("UserPool"), &awscognito.UserPoolProps{
		UserPoolName:      jsii.String(cfg.Qualifier + "-users"),
		SelfSignUpEnabled: jsii.Bool(true),
		SignInAliases: &awscognito.SignInAliases{
			Email: jsii.Bool(true),
		},
		AutoVerify: &awscognito.AutoVerifiedAttrs{
			Email: jsii.Bool(true),
		},
		StandardAttributes: &awscognito.StandardAttributes{
			Email: &awscognito.StandardAttribute{
				Required: jsii.Bool(true),
				Mutable:  jsii.Bool(true),
			},
			PreferredUsername: &awscognito.StandardAttribute{
				Required: jsii.Bool(false),
				Mutable:  jsii.Bool(true),
			},
		},
		PasswordPolicy: &awscognito.PasswordPolicy{
			MinLength:        jsii.Number(12),
			RequireDigits:    jsii.Bool(true),
			RequireLowercase: jsii.Bool(true),
			RequireUppercase: jsii.Bool(true),
		},
		AccountRecovery: awscognito.AccountRecovery_EMAIL_ONLY,
		RemovalPolicy:   awscdk.RemovalPolicy_RETAIN,
	})

	con.client = con.pool.AddClient(jsii.String("WebClient"), &awscognito.UserPoolClientOptions{
		AuthFlows: &awscognito.AuthFlow{
			UserSrp: jsii.Bool(true),
		},
		GenerateSecret: jsii.Bool(false),
	})

	stack := awscdk.Stack_Of(scope)
	awscdk.NewCfnOutput(stack, jsii.String("UserPoolId"), &awscdk.CfnOutputProps{
		Value: con.pool.UserPoolId(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("UserPoolClientId"), &awscdk.CfnOutputProps{
		Value: con.client.UserPoolClientId(),
	})

	return con
}

func (a *auth) UserPool() awscognito.IUserPool {
	return a.pool
}

func (a *auth) Client() awscognito.IUserPoolClient {
	return a.client
}
