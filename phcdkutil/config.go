package phcdkutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/go-playground/validator/v10"
)

// Config holds all CDK context values validated upfront.
// It centralizes context reading and validation to provide clear error
// messages before any stack is synthesized.
type Config struct {
	// Prefix for context keys (e.g. "phaserai-" for "phaserai-qualifier").
	Prefix string `validate:"required"`

	// Qualifier is used in stack names and the CDK synthesizer.
	// AWS limits it to 10 characters.
	Qualifier string `validate:"required,max=10"`

	// Region the app deploys to. PhaserAI is a single-region app.
	Region string `validate:"required"`

	// DatabaseName is the initial database created on the RDS instance.
	DatabaseName string `validate:"required,alphanum"`

	// DomainName is the public domain the web distribution serves.
	// Optional: when empty the CloudFront default domain is used.
	DomainName string `validate:"omitempty,fqdn"`

	// ApiStageName is the API Gateway deployment stage.
	ApiStageName string `validate:"required,lowercase,alphanum"`

	// LayerZipPath is the path (relative to the CDK app) of the built
	// dependency layer archive.
	LayerZipPath string `validate:"required"`
}

// QualifierPtr returns the qualifier as a jsii string pointer.
func (c *Config) QualifierPtr() *string {
	return jsii.String(c.Qualifier)
}

// HasDomain reports whether a custom domain is configured.
func (c *Config) HasDomain() bool {
	return c.DomainName != ""
}

// configContextKey is the well-known key used to store validated Config in the construct tree.
const configContextKey = "__phcdkutil_config"

// StoreConfig stores a validated Config in the app's context so it can be
// retrieved anywhere in the construct tree via ConfigFromScope.
func StoreConfig(scope constructs.Construct, cfg *Config) {
	scope.Node().SetContext(jsii.String(configContextKey), cfg)
}

// ConfigFromScope retrieves the validated Config from the construct tree.
// It panics if Config was not stored (i.e., SetupApp was not called).
func ConfigFromScope(scope constructs.Construct) *Config {
	val := scope.Node().TryGetContext(jsii.String(configContextKey))
	if val == nil {
		panic("phcdkutil.Config not found in construct tree - was SetupApp or StoreConfig called?")
	}
	cfg, ok := val.(*Config)
	if !ok {
		panic(fmt.Sprintf("phcdkutil.Config has unexpected type %T", val))
	}
	return cfg
}

// NewConfig reads and validates all CDK context values.
// Returns an error if any required value is missing or invalid.
func NewConfig(scope constructs.Construct, prefix string) (*Config, error) {
	var readErrs []string

	c := &Config{Prefix: prefix}

	c.Qualifier, readErrs = readContextString(scope, prefix+"qualifier", readErrs)
	c.Region, readErrs = readContextString(scope, prefix+"region", readErrs)
	c.DatabaseName, readErrs = readContextString(scope, prefix+"db-name", readErrs)
	c.ApiStageName, readErrs = readContextString(scope, prefix+"api-stage", readErrs)
	c.LayerZipPath, readErrs = readContextString(scope, prefix+"layer-zip", readErrs)
	c.DomainName = readOptionalContextString(scope, prefix+"domain-name")

	if len(readErrs) > 0 {
		return nil, fmt.Errorf("CDK context read errors:\n  - %s", strings.Join(readErrs, "\n  - "))
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			msgs := make([]string, 0, len(validationErrs))
			for _, e := range validationErrs {
				msgs = append(msgs, formatValidationError(e))
			}
			return nil, fmt.Errorf("CDK context validation errors:\n  - %s", strings.Join(msgs, "\n  - "))
		}
		return nil, fmt.Errorf("CDK context validation failed: %w", err)
	}

	return c, nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s exceeds maximum length of %s (got %q)", e.Field(), e.Param(), e.Value())
	case "fqdn":
		return fmt.Sprintf("%s must be a valid domain name (got %q)", e.Field(), e.Value())
	case "alphanum":
		return fmt.Sprintf("%s must contain only letters and numbers (got %q)", e.Field(), e.Value())
	case "lowercase":
		return fmt.Sprintf("%s must be lowercase (got %q)", e.Field(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation %q", e.Field(), e.Tag())
	}
}

func readContextString(scope constructs.Construct, key string, errs []string) (string, []string) {
	val := scope.Node().TryGetContext(jsii.String(key))
	if val == nil {
		return "", append(errs, fmt.Sprintf("context key %q is not set", key))
	}
	s, ok := val.(string)
	if !ok {
		return "", append(errs, fmt.Sprintf("context key %q must be a string, got %T", key, val))
	}
	return s, errs
}

func readOptionalContextString(scope constructs.Construct, key string) string {
	val := scope.Node().TryGetContext(jsii.String(key))
	if val == nil {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		return ""
	}
	return s
}
