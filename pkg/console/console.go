// Package console talks to the operator on the terminal: it prompts for a
// class name and prints messages the operator needs to see.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ErrInputClosed is returned when the operator closes input (EOF, Ctrl+C
// at the form).
var ErrInputClosed = errors.New("console: input closed")

// Prompter is the text interface the class selector uses.
type Prompter interface {
	// Prompt shows msg and returns one line typed by the operator.
	Prompt(ctx context.Context, msg string) (string, error)
	// Notify shows a message to the operator.
	Notify(msg string)
}

// LinePrompter reads lines from any reader. Used for pipes and tests.
type LinePrompter struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	pending chan lineResult // In-flight read; survives a cancelled prompt
}

type lineResult struct {
	line string
	err  error
}

// NewLinePrompter creates a prompter reading r and writing w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(r), out: w}
}

// Prompt writes msg and reads up to the next newline.
// Surrounding whitespace is trimmed; an empty line is a valid answer.
// Cancelling ctx returns ctx.Err() at once; a line typed afterwards is
// handed to the next Prompt.
func (p *LinePrompter) Prompt(ctx context.Context, msg string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	fmt.Fprint(p.out, msg)
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		p.pending = ch
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}
	ch := p.pending
	p.mu.Unlock()

	var res lineResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-ch:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil

	if res.err != nil {
		if errors.Is(res.err, io.EOF) && res.line != "" {
			return strings.TrimSpace(res.line), nil
		}
		if errors.Is(res.err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("console: read: %w", res.err)
	}
	return strings.TrimSpace(res.line), nil
}

// Notify prints msg on its own line.
func (p *LinePrompter) Notify(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, msg)
}

// New picks the interactive form when stdin is a terminal and plain is false,
// otherwise a line prompter over stdin/stdout.
func New(suggestions []string, plain bool) Prompter {
	if !plain && term.IsTerminal(int(os.Stdin.Fd())) {
		return NewFormPrompter(os.Stdout, suggestions)
	}
	return NewLinePrompter(os.Stdin, os.Stdout)
}
