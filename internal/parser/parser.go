// Package parser splits a command line into arguments, redirection
// targets, a background marker and a builtin classification. Quoting is
// handled by go-shellquote, so quoted arguments may contain whitespace
// and redirection characters.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Builtin identifies commands implemented inside the shell.
type Builtin int

const (
	BuiltinNone Builtin = iota
	BuiltinQuit
	BuiltinJobs
	BuiltinBG
	BuiltinFG
	BuiltinHistory
)

// Tokens is one parsed command line.
type Tokens struct {
	Argv       []string
	Infile     string
	Outfile    string
	Builtin    Builtin
	Background bool
}

var (
	ErrAmbiguousRedirect = errors.New("ambiguous I/O redirection")
	ErrMissingFilename   = errors.New("must provide file name for redirection")
)

// Parse tokenizes line. A nil error with an empty Argv means the line
// was blank and should be ignored. Parse errors (unmatched quotes,
// ambiguous or incomplete redirection) mean the whole line is ignored.
func Parse(line string) (*Tokens, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse command line: %w", err)
	}

	tok := &Tokens{}
	for i := 0; i < len(words); i++ {
		w := words[i]
		var target *string
		switch {
		case strings.HasPrefix(w, "<"):
			target = &tok.Infile
		case strings.HasPrefix(w, ">"):
			target = &tok.Outfile
		default:
			tok.Argv = append(tok.Argv, w)
			continue
		}
		if *target != "" {
			return nil, ErrAmbiguousRedirect
		}
		// Accept both "< file" and "<file".
		name := w[1:]
		if name == "" {
			i++
			if i >= len(words) {
				return nil, ErrMissingFilename
			}
			name = words[i]
		}
		if strings.HasPrefix(name, "<") || strings.HasPrefix(name, ">") {
			return nil, ErrAmbiguousRedirect
		}
		*target = name
	}

	if n := len(tok.Argv); n > 0 && tok.Argv[n-1] == "&" {
		tok.Background = true
		tok.Argv = tok.Argv[:n-1]
	}
	if len(tok.Argv) == 0 {
		return tok, nil
	}

	switch tok.Argv[0] {
	case "quit", "exit":
		tok.Builtin = BuiltinQuit
	case "jobs":
		tok.Builtin = BuiltinJobs
	case "bg":
		tok.Builtin = BuiltinBG
	case "fg":
		tok.Builtin = BuiltinFG
	case "history":
		tok.Builtin = BuiltinHistory
	}
	return tok, nil
}
