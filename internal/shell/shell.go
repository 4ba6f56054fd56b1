// Package shell implements the command loop, the builtins and the job
// control machinery: launching external commands in their own process
// groups, forwarding keyboard signals to the foreground group, and
// reaping child state changes delivered via SIGCHLD.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/sys/unix"

	"gosh/internal/config"
	"gosh/internal/history"
	"gosh/internal/job"
	"gosh/internal/parser"
)

// Shell owns the job table and the signal-event loop. The main
// goroutine runs the read/dispatch loop; a second goroutine consumes
// OS signals from sigChan and drives the forwarders and the reaper.
type Shell struct {
	cfg     *config.Config
	jobs    *job.Table
	hist    *history.Store
	plugins map[string]Plugin

	sigChan     chan os.Signal
	interactive bool

	out    io.Writer
	errOut io.Writer

	// Indirections for the OS calls the signal handlers make, so the
	// transition logic is testable with synthetic events.
	kill func(pid int, sig unix.Signal) error
	wait func(status *unix.WaitStatus) (int, error)
	exit func(code int)
}

// Plugin is a command loaded from a plugin file (see internal/plugin).
type Plugin interface {
	Name() string
	Execute(args []string) error
}

// Option adjusts a Shell at construction time.
type Option func(*Shell)

// WithHistory attaches a persistent history store.
func WithHistory(h *history.Store) Option {
	return func(s *Shell) { s.hist = h }
}

// WithPlugins registers plugin commands keyed by name.
func WithPlugins(p map[string]Plugin) Option {
	return func(s *Shell) { s.plugins = p }
}

// WithInteractive forces or suppresses the readline prompt loop.
func WithInteractive(v bool) Option {
	return func(s *Shell) { s.interactive = v }
}

// New builds a Shell from cfg.
func New(cfg *config.Config, opts ...Option) *Shell {
	s := &Shell{
		cfg:     cfg,
		jobs:    job.NewTable(cfg.MaxJobs),
		plugins: map[string]Plugin{},
		sigChan: make(chan os.Signal, 8),
		out:     os.Stdout,
		errOut:  os.Stderr,
		kill:    unix.Kill,
		wait: func(status *unix.WaitStatus) (int, error) {
			return unix.Wait4(-1, status, unix.WNOHANG|unix.WUNTRACED, nil)
		},
		exit: os.Exit,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run installs the signal handlers and executes the read/eval loop
// until EOF or termination.
func (s *Shell) Run() error {
	signal.Notify(s.sigChan, unix.SIGINT, unix.SIGTSTP, unix.SIGCHLD, unix.SIGQUIT)
	signal.Ignore(unix.SIGTTIN, unix.SIGTTOU)
	defer signal.Stop(s.sigChan)
	go s.handleSignals()

	if s.interactive {
		return s.runInteractive()
	}
	return s.runBatch()
}

func (s *Shell) runInteractive() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      s.cfg.Prompt,
		HistoryFile: s.cfg.HistoryFile,
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			fmt.Fprintln(s.out)
			return nil
		} else if err != nil {
			return fmt.Errorf("read command line: %w", err)
		}
		s.dispatchLine(line)
	}
}

func (s *Shell) runBatch() error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		s.dispatchLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read command line: %w", err)
	}
	return nil
}

func (s *Shell) dispatchLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if s.hist != nil {
		if err := s.hist.Add(line); err != nil {
			slog.Debug("history", "error", err)
		}
	}
	if err := s.Execute(line); err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
}

// Execute interprets one command line: builtins run in-process, plugin
// commands dispatch by name, anything else is launched as a job. A
// returned error means the line was ignored; it never ends the shell.
func (s *Shell) Execute(line string) error {
	tok, err := parser.Parse(line)
	if err != nil {
		return err
	}
	if len(tok.Argv) == 0 {
		return nil
	}

	switch tok.Builtin {
	case parser.BuiltinQuit:
		return s.quit()
	case parser.BuiltinJobs:
		return s.listJobs(tok)
	case parser.BuiltinBG:
		return s.resumeJob(tok.Argv, job.Background)
	case parser.BuiltinFG:
		return s.resumeJob(tok.Argv, job.Foreground)
	case parser.BuiltinHistory:
		return s.showHistory()
	}

	if p, ok := s.plugins[tok.Argv[0]]; ok {
		return p.Execute(tok.Argv[1:])
	}
	return s.runExternal(tok, line)
}

// fatalf reports an unrecoverable OS-level error and terminates the
// shell.
func (s *Shell) fatalf(format string, args ...any) {
	fmt.Fprintf(s.errOut, format+"\n", args...)
	s.exit(1)
}
