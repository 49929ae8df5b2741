package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the x/term calls.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// LinePrompter reads form answers from the same scanner as the REPL.
// Secrets are read without echo when fd is a terminal.
type LinePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
	fd      int
}

func NewLinePrompter(scanner *bufio.Scanner, out io.Writer, fd int) *LinePrompter {
	return &LinePrompter{scanner: scanner, out: out, fd: fd}
}

func (p *LinePrompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *LinePrompter) Secret(label string) (string, error) {
	if !isTerminal(p.fd) {
		return p.Ask(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	pw, err := readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// RunREPL renders the active page, reads a command and dispatches it until
// EOF or "exit". Command errors are already shown as notices.
func RunREPL(ctx context.Context, c *Controller, scanner *bufio.Scanner) {
	for {
		c.Render()
		fmt.Fprintf(c.out, "reviews:%s> ", c.page)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(c.out, "Bye!")
			return
		}

		_ = c.Dispatch(ctx, line)
		if ctx.Err() != nil {
			return
		}
	}
}
