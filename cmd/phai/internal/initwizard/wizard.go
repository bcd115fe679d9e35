// Package initwizard collects the project settings `phai init` needs: the
// CDK qualifier, region, database name, API stage, and optional web domain.
package initwizard

// Wizard pairs a form builder with a runner. The split keeps form content
// testable without driving a terminal.
type Wizard struct {
	builder FormBuilder
	runner  FormRunner
}

func New(builder FormBuilder, runner FormRunner) *Wizard {
	return &Wizard{
		builder: builder,
		runner:  runner,
	}
}

// Run collects a Result, seeding the qualifier prompt with defaultQualifier
// (typically the project directory name).
func (w *Wizard) Run(defaultQualifier string) (Result, error) {
	var result Result
	form := w.builder.Build(defaultQualifier, &result)

	if err := w.runner.Run(form); err != nil {
		return Result{}, err
	}

	return result, nil
}
