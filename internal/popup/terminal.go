package popup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"coingecko-exporter/internal/export"
)

// Terminal implements Dialogs and Status on a line-oriented terminal.
type Terminal struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
	mu        sync.Mutex
}

var (
	_ Dialogs = (*Terminal)(nil)
	_ Status  = (*Terminal)(nil)
)

// NewTerminal reads answers from in and writes prompts to out. With
// assumeYes every question is answered yes without reading.
func NewTerminal(in io.Reader, out io.Writer, assumeYes bool) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

func (t *Terminal) Confirm(_ context.Context, title, message, confirmText, cancelText string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\n%s\n%s\n", title, message)
	return t.ask(fmt.Sprintf("%s? [y = %s, n = %s]", confirmText, confirmText, cancelText))
}

func (t *Terminal) Preview(_ context.Context, p export.Preview, selected []string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\nPreview %s Export\n%s\n\n", p.Type, p.Summary(selected))
	if err := p.WriteText(t.out); err != nil {
		return false, err
	}
	fmt.Fprintln(t.out, "\nThis preview shows exactly what will be exported.")
	return t.ask("Continue with export? [y/n]")
}

func (t *Terminal) Progress(title, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s: %s\n", title, message)
}

func (t *Terminal) UpdateProgress(percent int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "[%3d%%] %s\n", percent, message)
}

func (t *Terminal) Hide() {}

func (t *Terminal) Alert(_ context.Context, title, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.out, "\n%s\n%s\n", title, message)
	return err
}

func (t *Terminal) Show(msg string, kind StatusKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "[%s] %s\n", kind, msg)
}

// ask must be called with mu held. End of input counts as no.
func (t *Terminal) ask(prompt string) (bool, error) {
	fmt.Fprintf(t.out, "%s ", prompt)
	if t.assumeYes {
		fmt.Fprintln(t.out, "y")
		return true, nil
	}
	line, err := t.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
