// Command phai-cdk is the CDK app for the PhaserAI infrastructure. It is not
// run directly: the CDK CLI synthesizes it via "phai cdk deploy".
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/phaserai/infra/phcdk/phcdkapp"
	"github.com/phaserai/infra/phcdkutil"
)

const contextPrefix = "phaserai-"

func main() {
	defer jsii.Close()

	app := awscdk.NewApp(nil)

	cfg, err := phcdkutil.NewConfig(app, contextPrefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	phcdkapp.SetupApp(app, cfg)

	app.Synth(nil)
}
