// Package phcdkweb provides the static frontend construct: a private S3
// bucket served through CloudFront.
package phcdkweb

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/phaserai/infra/phcdkutil"
)

// Web provides access to the frontend distribution.
type Web interface {
	// Bucket returns the site bucket.
	Bucket() awss3.IBucket

	// Distribution returns the CloudFront distribution.
	Distribution() awscloudfront.IDistribution
}

// Props configures the Web construct.
type Props struct{}

type web struct {
	bucket       awss3.IBucket
	distribution awscloudfront.IDistribution
}

// New creates the Web construct.
func New(scope constructs.Construct, _ Props) Web {
	scope = constructs.NewConstruct(scope, jsii.String("Web"))
	cfg := phcdkutil.ConfigFromScope(scope)
	con := &web{}

	con.bucket = awss3.NewBucket(scope, jsii.String("SiteBucket"), &awss3.BucketProps{
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
		AutoDeleteObjects: jsii.Bool(true),
	})

	con.distribution = awscloudfront.NewDistribution(scope, jsii.String("Distribution"), &awscloudfront.DistributionProps{
		DefaultBehavior: &awscloudfront.BehaviorOptions{
			Origin:               awscloudfrontorigins.S3BucketOrigin_WithOriginAccessControl(con.bucket, nil),
			ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
		},
		DefaultRootObject: jsii.String("index.html"),
		ErrorResponses: &[]*awscloudfront.ErrorResponse{{
			// Single-page app: route unknown paths to the client router.
			HttpStatus:         jsii.Number(404),
			ResponseHttpStatus: jsii.Number(200),
			ResponsePagePath:   jsii.String("/index.html"),
		}},
	})

	stack := awscdk.Stack_Of(scope)
	awscdk.NewCfnOutput(stack, jsii.String("DistributionDomainName"), &awscdk.CfnOutputProps{
		Value: con.distribution.DistributionDomainName(),
	})
	if cfg.HasDomain() {
		awscdk.NewCfnOutput(stack, jsii.String("SiteDomainName"), &awscdk.CfnOutputProps{
			Value: jsii.String(cfg.DomainName),
		})
	}

	return con
}

func (w *web) Bucket() awss3.IBucket {
	return w.bucket
}

func (w *web) Distribution() awscloudfront.IDistribution {
	return w.distribution
}
