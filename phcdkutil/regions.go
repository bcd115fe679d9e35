package phcdkutil

// AllKnownRegions lists the AWS regions a project can deploy to. Regions
// without full RDS and Cognito coverage are left out.
func AllKnownRegions() []string {
	return []string{
		"us-east-1",
		"us-east-2",
		"us-west-2",
		"eu-west-1",
		"eu-central-1",
		"eu-north-1",
		"ap-southeast-1",
		"ap-southeast-2",
		"ap-northeast-1",
	}
}
