package initwizard

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
	"github.com/phaserai/infra/phcdkutil"
)

type FormBuilder interface {
	Build(defaultQualifier string, result *Result) *huh.Form
}

type formBuilder struct{}

func NewFormBuilder() FormBuilder {
	return &formBuilder{}
}

func (b *formBuilder) Build(defaultQualifier string, result *Result) *huh.Form {
	*result = DefaultResult(defaultQualifier)
	return huh.NewForm(
		huh.NewGroup(
			b.qualifierInput(&result.Qualifier),
			b.regionSelect(&result.Region),
			b.databaseNameInput(&result.DatabaseName),
			b.apiStageInput(&result.APIStage),
			b.domainNameInput(&result.DomainName),
		),
	)
}

func (b *formBuilder) qualifierInput(value *string) *huh.Input {
	return huh.NewInput().
		Title("Project qualifier").
		Description("Used for the CDK bootstrap qualifier and as stack name prefix").
		Value(value).
		Validate(ValidateQualifier)
}

func (b *formBuilder) regionSelect(value *string) *huh.Select[string] {
	regions := phcdkutil.AllKnownRegions()
	return huh.NewSelect[string]().
		Title("AWS region").
		Description("Region all stacks deploy to").
		Options(huh.NewOptions(regions...)...).
		Value(value)
}

func (b *formBuilder) databaseNameInput(value *string) *huh.Input {
	return huh.NewInput().
		Title("Database name").
		Description("Initial database created on the Postgres instance").
		Value(value).
		Validate(ValidateDatabaseName)
}

func (b *formBuilder) apiStageInput(value *string) *huh.Input {
	return huh.NewInput().
		Title("API stage name").
		Description("Deployment stage of the REST API (e.g. prod)").
		Value(value)
}

func (b *formBuilder) domainNameInput(value *string) *huh.Input {
	return huh.NewInput().
		Title("Domain name").
		Description("Custom domain for the web frontend (optional)").
		Value(value)
}

// ValidateQualifier enforces the CDK bootstrap qualifier constraints. The
// synthesizer embeds it in role and bucket names, so it is limited to ten
// lowercase alphanumeric characters.
func ValidateQualifier(s string) error {
	if s == "" {
		return errors.New("qualifier is required")
	}
	if len(s) > 10 {
		return errors.New("qualifier must be 10 characters or less")
	}
	for _, c := range s {
		if !isLowerAlnum(c) {
			return errors.Newf("invalid character %q: use lowercase letters and numbers only", c)
		}
	}
	return nil
}

// ValidateDatabaseName enforces the Postgres identifier shape used without
// quoting in the database stack.
func ValidateDatabaseName(s string) error {
	if s == "" {
		return errors.New("database name is required")
	}
	if len(s) > 63 {
		return errors.New("database name must be 63 characters or less")
	}
	first := rune(s[0])
	if first >= '0' && first <= '9' {
		return errors.New("database name cannot start with a number")
	}
	for _, c := range strings.ToLower(s) {
		if !isLowerAlnum(c) && c != '_' {
			return errors.Newf("invalid character %q: use letters, numbers, and underscores only", c)
		}
	}
	return nil
}

func isLowerAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
