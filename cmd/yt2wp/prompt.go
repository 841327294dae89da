package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompter reads answers line by line from one reader. The question is
// printed only when the input is a terminal so piped input stays quiet.
type prompter struct {
	reader *bufio.Reader
	out    io.Writer
	show   bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		reader: bufio.NewReader(in),
		out:    out,
		show:   isTerminal(in),
	}
}

// ask returns the trimmed answer. EOF yields whatever was read, possibly "".
func (p *prompter) ask(question string) (string, error) {
	if p.show {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(question), err)
	}
	return strings.TrimSpace(line), nil
}
