package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// FormPrompter asks through a huh input field with class-name completion.
type FormPrompter struct {
	out         io.Writer
	suggestions []string
}

// NewFormPrompter creates a form prompter that suggests the given names.
func NewFormPrompter(out io.Writer, suggestions []string) *FormPrompter {
	return &FormPrompter{
		out:         out,
		suggestions: append([]string(nil), suggestions...),
	}
}

// Prompt runs a one-field form. Aborting the form (Ctrl+C, Esc) closes input.
func (p *FormPrompter) Prompt(ctx context.Context, msg string) (string, error) {
	var value string
	input := huh.NewInput().
		Title(strings.TrimSpace(msg)).
		Description("Leave empty to detect every class. Tab completes.").
		Suggestions(p.suggestions).
		Value(&value)

	err := huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx)
	switch {
	case err == nil:
		return strings.TrimSpace(value), nil
	case errors.Is(err, huh.ErrUserAborted):
		return "", ErrInputClosed
	case ctx.Err() != nil:
		return "", ctx.Err()
	default:
		return "", fmt.Errorf("console: form: %w", err)
	}
}

// Notify prints msg on its own line.
func (p *FormPrompter) Notify(msg string) {
	fmt.Fprintln(p.out, msg)
}
