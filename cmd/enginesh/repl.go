package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/wippyai/enginewrap/wrap"
)

const replHelp = `Statements are evaluated as written. Shell commands:
  :call <function> [arg]...   call with converted arguments
  :doc <function>             show what the engine reports
  :who                        list the workspace
  :help                       this text
  exit, quit                  leave the shell
`

// runRepl starts the full-screen shell on a terminal and the line shell
// otherwise.
func runRepl(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, cfg, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return lineRepl(ctx, s, os.Stdin, os.Stdout)
	}
	p := tea.NewProgram(newShellModel(ctx, s, cfg.Signatures.Names()), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// lineRepl runs one line at a time from r. Errors are reported and the
// shell carries on.
func lineRepl(ctx context.Context, s *wrap.Session, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		quit, err := execLine(ctx, s, sc.Text(), w)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return sc.Err()
}

// execLine runs one shell line, writing engine output and results to w.
func execLine(ctx context.Context, s *wrap.Session, line string, w io.Writer) (quit bool, err error) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false, nil
	case "exit", "quit":
		return true, nil
	}
	if !strings.HasPrefix(line, ":") {
		return false, evalStatement(ctx, s, line, w)
	}

	fields, err := splitArgs(line[1:])
	if err != nil {
		return false, err
	}
	if len(fields) == 0 {
		return false, fmt.Errorf("empty shell command")
	}
	switch fields[0] {
	case "call":
		if len(fields) < 2 {
			return false, fmt.Errorf(":call needs a function name")
		}
		return false, callFunction(ctx, s, fields[1], fields[2:], w)
	case "doc":
		if len(fields) != 2 {
			return false, fmt.Errorf(":doc needs a function name")
		}
		c, err := s.Command(ctx, fields[1])
		if err != nil {
			return false, err
		}
		printDescriptor(w, c)
		return false, nil
	case "who":
		names, err := s.Workspace(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(w, strings.Join(names, "  "))
		return false, nil
	case "help":
		io.WriteString(w, replHelp)
		return false, nil
	}
	return false, fmt.Errorf("unknown shell command :%s", fields[0])
}
