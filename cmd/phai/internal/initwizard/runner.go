package initwizard

import (
	"io"

	"github.com/charmbracelet/huh"
)

// FormRunner abstracts how the setup form is presented, so the wizard can be
// driven by a TUI, by a line-based prompt, or by a stub in tests.
type FormRunner interface {
	Run(form *huh.Form) error
}

// InteractiveRunner presents the form as a full-screen TUI. This is the
// default for `phai init` on a regular terminal.
type InteractiveRunner struct{}

func NewInteractiveRunner() *InteractiveRunner {
	return &InteractiveRunner{}
}

func (r *InteractiveRunner) Run(form *huh.Form) error {
	return form.Run()
}

// AccessibleRunner presents the form as sequential line prompts. Used with
// the --accessible flag for screen readers and for terminals without TUI
// support.
type AccessibleRunner struct {
	output io.Writer
	input  io.Reader
}

func NewAccessibleRunner(output io.Writer, input io.Reader) *AccessibleRunner {
	return &AccessibleRunner{
		output: output,
		input:  input,
	}
}

func (r *AccessibleRunner) Run(form *huh.Form) error {
	return form.
		WithAccessible(true).
		WithOutput(r.output).
		WithInput(r.input).
		Run()
}
