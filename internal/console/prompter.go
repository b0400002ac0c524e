// Package console reads answers to prompts from a line-oriented terminal.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks questions on w and reads answers from r.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w}
}

// Ask prints prompt and returns the next input line without its line ending.
// A final line without a newline is returned; io.EOF is returned only when
// nothing was read.
func (p *Prompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm asks a y/n question until the answer is y or n, in any case.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	for {
		answer, err := p.Ask(prompt + " [y/n] ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please enter y or n.")
	}
}

// Say prints one line.
func (p *Prompter) Say(format string, v ...any) {
	fmt.Fprintf(p.out, format+"\n", v...)
}
