package updater

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user a yes/no question
type Prompter interface {
	Confirm(question string) (bool, error)
}

// LinePrompter reads answers line by line from a reader.
// Only "y" and "n" are accepted (case-insensitive, surrounding space ignored);
// anything else re-asks. End of input counts as "n".
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter reading from in and writing to out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm prints question and waits for a valid answer
func (p *LinePrompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprint(p.out, question)

		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}

		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return false, nil
		}
		fmt.Fprintln(p.out, `Invalid input. Please, enter "y" or "n"`)
	}
}

// Ensure LinePrompter implements Prompter interface
var _ Prompter = (*LinePrompter)(nil)
