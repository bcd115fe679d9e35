// Package phcdklayer provides the Lambda dependency layer construct.
//
// The layer archive is built outside the CDK app by "phai layer build" and
// referenced here as a file asset. Synthesis fails early with a clear message
// when the archive is missing so a deploy never ships an empty layer.
package phcdklayer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/phaserai/infra/phcdkutil"
)

// Layer provides access to the dependency layer.
type Layer interface {
	// LayerVersion returns the published layer version.
	LayerVersion() awslambda.ILayerVersion
}

// Props configures the Layer construct.
type Props struct {
	// ZipPath overrides the archive path from config.
	ZipPath string
}

type layer struct {
	version awslambda.ILayerVersion
}

// New creates the Layer construct from the built archive.
func New(scope constructs.Construct, props Props) Layer {
	scope = constructs.NewConstruct(scope, jsii.String("DependencyLayer"))
	cfg := phcdkutil.ConfigFromScope(scope)
	con := &layer{}

	zipPath := props.ZipPath
	if zipPath == "" {
		zipPath = cfg.LayerZipPath
	}

	if _, err := os.Stat(zipPath); err != nil {
		panic(fmt.Sprintf(
			"dependency layer archive %q not found - run 'phai layer build' first: %v",
			filepath.Clean(zipPath), err))
	}

	con.version = awslambda.NewLayerVersion(scope, jsii.String("Dependencies"), &awslambda.LayerVersionProps{
		LayerVersionName: jsii.String(cfg.Qualifier + "-dependencies"),
		Code:             awslambda.Code_FromAsset(jsii.String(zipPath), nil),
		CompatibleRuntimes: &[]awslambda.Runtime{
			awslambda.Runtime_PYTHON_3_12(),
		},
		Description: jsii.String("Binary dependencies for PhaserAI Python functions"),
	})

	return con
}

func (l *layer) LayerVersion() awslambda.ILayerVersion {
	return l.version
}
