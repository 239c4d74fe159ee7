package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// InputSelectionError means the user gave no file or credential; the run stops before
// any processing.
type InputSelectionError struct {
	What string
}

func (e *InputSelectionError) Error() string {
	return fmt.Sprintf("no %s provided, exiting", e.What)
}

type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	// readSecret reads a line without echo.
	readSecret func() (string, error)
}

func newTerminalPrompter() *prompter {
	fd := int(os.Stdin.Fd())
	return &prompter{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stderr,
		interactive: term.IsTerminal(fd),
		readSecret: func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		},
	}
}

// choosePath returns value if set, otherwise asks for it. Surrounding quotes left by
// drag-and-drop are removed.
func (p *prompter) choosePath(value, what string) (string, error) {
	if value != "" {
		return value, nil
	}
	if !p.interactive {
		return "", &InputSelectionError{What: what}
	}

	fmt.Fprintf(p.out, "Path to the %s: ", what)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	path := strings.Trim(strings.TrimSpace(line), `"'`)
	if path == "" {
		return "", &InputSelectionError{What: what}
	}
	return path, nil
}

func (p *prompter) chooseSecret(value, what string) (string, error) {
	if value != "" {
		return value, nil
	}
	if !p.interactive {
		return "", &InputSelectionError{What: what}
	}

	fmt.Fprintf(p.out, "Enter your %s: ", what)
	secret, err := p.readSecret()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", &InputSelectionError{What: what}
	}
	return secret, nil
}
