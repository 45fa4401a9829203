package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/term"

	"pocketledger/internal/core"
	"pocketledger/internal/services"
)

// app is what every command receives through Execute.
type app struct {
	tracker *services.Tracker
	loc     *time.Location
	stdin   io.Reader
	lines   *bufio.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func newApp(tracker *services.Tracker, loc *time.Location, stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		tracker: tracker,
		loc:     loc,
		stdin:   stdin,
		lines:   bufio.NewReader(stdin),
		stdout:  stdout,
		stderr:  stderr,
	}
}

func appFrom(args []interface{}) *app {
	if len(args) == 0 {
		return nil
	}
	a, _ := args[0].(*app)
	return a
}

// prompt asks for a secret. Terminals get no echo; pipes are read one line
// at a time.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.stdout, label)
	defer fmt.Fprintln(a.stdout)

	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := a.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// fail prints err for a human and maps it to an exit status.
func (a *app) fail(err error) subcommands.ExitStatus {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]string, 0, len(verr.Fields))
		for f := range verr.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		fmt.Fprintln(a.stderr, "Please fix the following:")
		for _, f := range fields {
			fmt.Fprintf(a.stderr, "  %s %s\n", f, verr.Fields[f])
		}
	case errors.Is(err, core.ErrNotSignedIn):
		fmt.Fprintln(a.stderr, "Not signed in. Run `pocketledger signin` or `pocketledger register` first.")
	case errors.Is(err, core.ErrInvalidCredentials):
		fmt.Fprintln(a.stderr, "Invalid email or password.")
	default:
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	return subcommands.ExitFailure
}
