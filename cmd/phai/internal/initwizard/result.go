package initwizard

// Result holds the answers collected by the project setup wizard.
type Result struct {
	Qualifier    string
	Region       string
	DatabaseName string
	APIStage     string
	DomainName   string
}

func DefaultResult(defaultQualifier string) Result {
	return Result{
		Qualifier:    defaultQualifier,
		Region:       "us-east-1",
		DatabaseName: "phaserai",
		APIStage:     "prod",
	}
}
