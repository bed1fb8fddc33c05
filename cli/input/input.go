/*
Package input reads user input (keys and confirmations) from the terminal.
*/
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal is a terminal used for input. If `nil`, stdin is used.
var Terminal *term.Terminal

// ReadWriter combines reader and writer to create a Terminal over them.
type ReadWriter struct {
	io.Reader
	io.Writer
}

// ErrCancelled is returned from Confirm when user doesn't agree.
var ErrCancelled = errors.New("cancelled")

// ReadLine reads line from the input without trailing '\n'.
func ReadLine(prompt string) (string, error) {
	if Terminal != nil {
		if _, err := Terminal.Write([]byte(prompt)); err != nil {
			return "", err
		}
		raw, err := Terminal.ReadLine()
		return strings.TrimRight(raw, "\r\n"), err
	}
	fmt.Fprint(os.Stdout, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword reads secret data (like WIF) with prompt, the input is not
// echoed when stdin is a terminal.
func ReadPassword(prompt string) (string, error) {
	if Terminal != nil {
		return Terminal.ReadPassword(prompt)
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ReadLine(prompt)
	}
	fmt.Fprint(os.Stdout, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(string(raw), "\r\n"), nil
}

// Confirm asks the question and returns ErrCancelled unless the answer is
// "y" or "yes".
func Confirm(question string) error {
	answer, err := ReadLine(question + " (y/N) ")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return ErrCancelled
	}
}
