package initwizard

import (
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
)

type stubBuilder struct {
	gotQualifier string
	fill         Result
}

func (b *stubBuilder) Build(defaultQualifier string, result *Result) *huh.Form {
	b.gotQualifier = defaultQualifier
	*result = b.fill
	return huh.NewForm(huh.NewGroup(huh.NewNote()))
}

type stubRunner struct {
	err error
}

func (r *stubRunner) Run(form *huh.Form) error {
	return r.err
}

func TestWizardRun(t *testing.T) {
	t.Parallel()

	t.Run("returns the collected result", func(t *testing.T) {
		t.Parallel()
		builder := &stubBuilder{fill: Result{
			Qualifier:    "phaserai",
			Region:       "eu-west-1",
			DatabaseName: "phaserai",
			APIStage:     "prod",
		}}
		wizard := New(builder, &stubRunner{})

		result, err := wizard.Run("myproj")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if builder.gotQualifier != "myproj" {
			t.Errorf("expected default qualifier to reach the builder, got %q", builder.gotQualifier)
		}
		if result != builder.fill {
			t.Errorf("expected %+v, got %+v", builder.fill, result)
		}
	})

	t.Run("propagates runner errors", func(t *testing.T) {
		t.Parallel()
		wizard := New(&stubBuilder{}, &stubRunner{err: errors.New("cancelled")})

		if _, err := wizard.Run("myproj"); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestDefaultResult(t *testing.T) {
	t.Parallel()
	result := DefaultResult("demo")
	if result.Qualifier != "demo" {
		t.Errorf("expected qualifier %q, got %q", "demo", result.Qualifier)
	}
	if result.Region != "us-east-1" {
		t.Errorf("unexpected default region %q", result.Region)
	}
	if result.DomainName != "" {
		t.Errorf("expected empty default domain, got %q", result.DomainName)
	}
}

func TestValidateQualifier(t *testing.T) {
	t.Parallel()
	for _, tt := range []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "phaserai"},
		{name: "valid with digits", input: "phai2"},
		{name: "empty", input: "", wantErr: true},
		{name: "too long", input: "phaseraidev", wantErr: true},
		{name: "uppercase", input: "PhaserAI", wantErr: true},
		{name: "hyphen", input: "phaser-ai", wantErr: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateQualifier(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q, got nil", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.input, err)
			}
		})
	}
}

func TestValidateDatabaseName(t *testing.T) {
	t.Parallel()
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}

	for _, tt := range []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "phaserai"},
		{name: "underscores", input: "phaser_ai_db"},
		{name: "mixed case", input: "PhaserAI"},
		{name: "empty", input: "", wantErr: true},
		{name: "leading digit", input: "1phaserai", wantErr: true},
		{name: "too long", input: string(long), wantErr: true},
		{name: "hyphen", input: "phaser-ai", wantErr: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateDatabaseName(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q, got nil", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.input, err)
			}
		})
	}
}
