package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrNoTerminal means no controlling terminal could be opened, as in CI or
// a GUI git client.
var ErrNoTerminal = errors.New("no controlling terminal")

// Terminal is an open controlling terminal.
type Terminal interface {
	io.Reader
	io.Writer
	io.Closer
}

// Opener opens the controlling terminal.
type Opener func() (Terminal, error)

// Gate asks yes/no questions on the controlling terminal, never on the
// process's standard input.
type Gate struct {
	Open Opener
}

// New returns a Gate bound to the platform terminal device.
func New() *Gate {
	return &Gate{Open: openTerminal}
}

// Ask prints question and reads one line of answer. Only y or yes, in any
// case, is affirmative; empty input, EOF and anything else are not. The
// terminal is closed before Ask returns. If ctx ends first, Ask returns
// false and ctx's error.
func (g *Gate) Ask(ctx context.Context, question string) (bool, error) {
	open := g.Open
	if open == nil {
		open = openTerminal
	}
	tty, err := open()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrNoTerminal, err)
	}

	var once sync.Once
	closeTTY := func() { once.Do(func() { tty.Close() }) }
	defer closeTTY()

	if _, err := fmt.Fprintf(tty, "%s ", strings.TrimRight(question, " ")); err != nil {
		return false, fmt.Errorf("writing prompt: %w", err)
	}

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(tty).ReadString('\n')
		answers <- answer{line, err}
	}()

	select {
	case a := <-answers:
		closeTTY()
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("reading answer: %w", a.err)
		}
		return IsAffirmative(a.line), nil
	case <-ctx.Done():
		closeTTY()
		return false, ctx.Err()
	}
}

// IsAffirmative reports whether answer is y or yes, ignoring case and
// surrounding space.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
