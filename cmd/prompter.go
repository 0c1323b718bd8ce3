package cmd

import (
	"fmt"
	"io"

	"audio-converter/domain/conversion"

	"github.com/AlecAivazis/survey/v2"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

// DialogConfirmer implements conversion.Confirmer on a terminal: notices are
// printed as titled blocks and questions go through a Prompter.
type DialogConfirmer struct {
	prompter  Prompter
	out       io.Writer
	assumeYes bool
}

// NewDialogConfirmer creates a confirmer; with assumeYes every question is accepted
func NewDialogConfirmer(prompter Prompter, out io.Writer, assumeYes bool) *DialogConfirmer {
	return &DialogConfirmer{prompter: prompter, out: out, assumeYes: assumeYes}
}

// Confirm shows the message and asks a yes/no question. A cancelled prompt counts as no.
func (d *DialogConfirmer) Confirm(title, message string) bool {
	fmt.Fprintf(d.out, "\n== %s ==\n%s\n", title, message)
	if d.assumeYes {
		fmt.Fprintln(d.out, "Proceeding (--yes).")
		return true
	}
	ok, err := d.prompter.Confirm(title+"?", false)
	if err != nil {
		return false
	}
	return ok
}

// Notify prints a titled notice
func (d *DialogConfirmer) Notify(title, message string) {
	fmt.Fprintf(d.out, "\n== %s ==\n%s\n", title, message)
}

// Ensure DialogConfirmer implements conversion.Confirmer
var _ conversion.Confirmer = (*DialogConfirmer)(nil)
