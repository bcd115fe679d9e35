package phcdkutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/iancoleman/strcase"
)

// NewStackFromConfig creates a CDK stack named "<qualifier><Ident>" using a
// validated Config. The ident must start with an upper-case letter so stack
// names stay consistently PascalCase in CloudFormation.
func NewStackFromConfig(scope constructs.Construct, cfg *Config, ident string) awscdk.Stack {
	if ident == "" {
		panic("stack ident must not be empty")
	}
	if strings.ToUpper(string(ident[0])) != string(ident[0]) {
		panic("stack ident must start with an upper-case letter, got: " + ident)
	}

	qualifier := strcase.ToLowerCamel(cfg.Qualifier)
	stackName := jsii.Sprintf("%s%s", qualifier, ident)

	return awscdk.NewStack(scope, stackName, &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: jsii.String(os.Getenv("CDK_DEFAULT_ACCOUNT")),
			Region:  jsii.String(cfg.Region),
		},
		Description: jsii.String(fmt.Sprintf("%s %s stack (region: %s)",
			qualifier, ident, cfg.Region)),
		Synthesizer: awscdk.NewDefaultStackSynthesizer(&awscdk.DefaultStackSynthesizerProps{
			Qualifier: jsii.String(cfg.Qualifier),
		}),
	})
}
